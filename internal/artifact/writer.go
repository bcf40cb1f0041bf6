package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cameronsjo/keylimegen/internal/fileutil"
	"github.com/cameronsjo/keylimegen/internal/manifest"
)

// ErrIO indicates a write or archive failure. The message names the path.
var ErrIO = errors.New("artifact I/O")

// Permissions for generated output.
const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644
)

// Write stores each artifact as outputRoot/name, creating outputRoot if
// needed and overwriting existing files. Paths are returned in set order.
// Files written before a failure are left in place.
func Write(outputRoot string, set manifest.ArtifactSet) ([]string, error) {
	for _, a := range set {
		if err := ValidateName(a.Name); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(outputRoot, DirPerm); err != nil {
		return nil, fmt.Errorf("%w: create output directory %s: %w", ErrIO, outputRoot, err)
	}

	paths := make([]string, 0, len(set))
	for _, a := range set {
		path := filepath.Join(outputRoot, a.Name)
		if err := fileutil.WriteFileAtomic(path, a.Content, FilePerm); err != nil {
			return paths, fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// ValidateName rejects names that would escape a flat output directory.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: invalid artifact name %q", ErrIO, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: artifact name %q must be a plain file name", ErrIO, name)
	}
	return nil
}
