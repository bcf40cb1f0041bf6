package templates

import (
	"embed"
	"io/fs"
)

//go:embed defaults/*.yaml
var defaultFS embed.FS

// Default loads the built-in Keylime template set.
func Default() (*Set, error) {
	sub, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}
