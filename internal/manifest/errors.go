package manifest

import "errors"

// ErrInvalidConfiguration indicates a request that cannot be expanded,
// such as an empty namespace or a negative agent count.
var ErrInvalidConfiguration = errors.New("invalid configuration")
