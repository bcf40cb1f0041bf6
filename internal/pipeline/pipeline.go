// Package pipeline runs one generation: expand, write, then archive.
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cameronsjo/keylimegen/internal/artifact"
	"github.com/cameronsjo/keylimegen/internal/identity"
	"github.com/cameronsjo/keylimegen/internal/lock"
	"github.com/cameronsjo/keylimegen/internal/logging"
	"github.com/cameronsjo/keylimegen/internal/manifest"
	"github.com/cameronsjo/keylimegen/internal/templates"
)

// LockOperation names the lock held while writing output.
const LockOperation = "generate"

// Options controls where a run writes.
type Options struct {
	// OutputRoot receives every artifact and the archive.
	OutputRoot string

	// ArchiveName is the archive file name within OutputRoot.
	// Defaults to artifact.DefaultArchiveName.
	ArchiveName string

	// LockDir is the project directory holding the run lock.
	// Empty disables locking.
	LockDir string

	// DryRun expands without touching the filesystem.
	DryRun bool
}

// Result describes a finished run.
type Result struct {
	Artifacts manifest.ArtifactSet
	Paths     []string
	Archive   string
}

// Pipeline generates and packages manifests from a template set.
type Pipeline struct {
	set     *templates.Set
	entropy io.Reader
	logger  *zap.Logger
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithEntropy sets the randomness source for agent identities.
func WithEntropy(r io.Reader) Option {
	return func(p *Pipeline) {
		p.entropy = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.OrNop(logger)
	}
}

// New creates a Pipeline over set.
func New(set *templates.Set, opts ...Option) *Pipeline {
	p := &Pipeline{
		set:    set,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run expands req and, unless DryRun is set, writes and archives the result.
// Expansion happens entirely in memory first, so a missing template or a
// render failure leaves the output root untouched.
func (p *Pipeline) Run(req manifest.Request, opts Options) (*Result, error) {
	if opts.ArchiveName == "" {
		opts.ArchiveName = artifact.DefaultArchiveName
	}
	if !opts.DryRun {
		if opts.OutputRoot == "" {
			return nil, fmt.Errorf("%w: output root must not be empty", manifest.ErrInvalidConfiguration)
		}
		if err := artifact.ValidateName(opts.ArchiveName); err != nil {
			return nil, err
		}
	}

	expander := manifest.NewExpander(p.set, identity.NewGenerator(p.entropy),
		manifest.WithLogger(p.logger))

	set, err := expander.Expand(req)
	if err != nil {
		return nil, err
	}

	result := &Result{Artifacts: set}
	if opts.DryRun {
		return result, nil
	}

	write := func() error {
		return p.write(set, opts, result)
	}
	if opts.LockDir == "" {
		err = write()
	} else {
		err = lock.WithLock(opts.LockDir, LockOperation, write)
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (p *Pipeline) write(set manifest.ArtifactSet, opts Options, result *Result) error {
	for _, name := range set.Names() {
		if name == opts.ArchiveName {
			return fmt.Errorf("%w: archive name %s collides with an artifact", artifact.ErrIO, name)
		}
	}

	paths, err := artifact.Write(opts.OutputRoot, set)
	if err != nil {
		return err
	}
	for _, path := range paths {
		p.logger.Debug("wrote artifact", zap.String(logging.FieldPath, path))
	}

	archive, err := artifact.Package(filepath.Join(opts.OutputRoot, opts.ArchiveName), paths)
	if err != nil {
		return err
	}
	p.logger.Info("packaged archive",
		zap.String(logging.FieldPath, archive),
		zap.Int(logging.FieldCount, len(paths)),
	)

	result.Paths = paths
	result.Archive = archive
	return nil
}
