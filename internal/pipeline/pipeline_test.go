package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/keylimegen/internal/artifact"
	"github.com/cameronsjo/keylimegen/internal/identity"
	"github.com/cameronsjo/keylimegen/internal/manifest"
	"github.com/cameronsjo/keylimegen/internal/templates"
)

func defaultSet(t *testing.T) *templates.Set {
	t.Helper()
	set, err := templates.Default()
	require.NoError(t, err)
	return set
}

func entryNames(t *testing.T, archive string) []string {
	t.Helper()
	entries, err := artifact.List(archive)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func TestRun_DemoScenario(t *testing.T) {
	root := filepath.Join(t.TempDir(), "artifacts")
	p := New(defaultSet(t))

	result, err := p.Run(
		manifest.Request{Namespace: "demo", AgentCount: 2, Mode: manifest.ModeSingleCluster},
		Options{OutputRoot: root},
	)
	require.NoError(t, err)

	names := result.Artifacts.Names()
	require.GreaterOrEqual(t, len(names), 4)
	assert.Equal(t, []string{
		"agent-config-1.yaml", "agent-pod-1.yaml", "agent-config-2.yaml", "agent-pod-2.yaml",
	}, names[len(names)-4:])

	assert.Equal(t, filepath.Join(root, artifact.DefaultArchiveName), result.Archive)
	assert.Equal(t, names, entryNames(t, result.Archive))
	assert.Len(t, result.Paths, len(names))

	// Archive round-trip matches what was written.
	extracted, err := artifact.Extract(result.Archive, t.TempDir())
	require.NoError(t, err)
	for i, path := range extracted {
		want, err := os.ReadFile(result.Paths[i])
		require.NoError(t, err)
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, filepath.Base(path))
	}
}

func TestRun_ZeroAgents(t *testing.T) {
	root := t.TempDir()
	p := New(defaultSet(t))

	result, err := p.Run(
		manifest.Request{Namespace: "demo", Mode: manifest.ModeRASCluster},
		Options{OutputRoot: root},
	)
	require.NoError(t, err)

	assert.Equal(t, manifest.RASClusterKeys, entryNames(t, result.Archive))
}

func TestRun_DeterministicEntropy(t *testing.T) {
	req := manifest.Request{Namespace: "demo", AgentCount: 3, Mode: manifest.ModeSingleCluster}
	seed := bytes.Repeat([]byte{0x42}, 16*3)

	run := func() []byte {
		root := t.TempDir()
		result, err := New(defaultSet(t), WithEntropy(bytes.NewReader(seed))).Run(req, Options{OutputRoot: root})
		require.NoError(t, err)
		data, err := os.ReadFile(result.Archive)
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, run(), run())
}

func TestRun_DryRun(t *testing.T) {
	root := filepath.Join(t.TempDir(), "artifacts")

	result, err := New(defaultSet(t)).Run(
		manifest.Request{Namespace: "demo", AgentCount: 1, Mode: manifest.ModeLBCluster},
		Options{OutputRoot: root, DryRun: true},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"01-namespace.yaml", "15-agent-lb-service.yaml", "agent-config-1.yaml", "agent-pod-1.yaml",
	}, result.Artifacts.Names())
	assert.Empty(t, result.Paths)
	assert.Empty(t, result.Archive)

	_, err = os.Stat(root)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_FailureBeforeWrite(t *testing.T) {
	set, err := templates.Load(fstest.MapFS{
		"01-namespace.yaml": {Data: []byte("ns: {{ .namespace }}\n")},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     manifest.Request
		wantErr error
	}{
		{
			name:    "missing agent template",
			req:     manifest.Request{Namespace: "demo", AgentCount: 1, Mode: manifest.ModeSingleCluster},
			wantErr: templates.ErrTemplateNotFound,
		},
		{
			name:    "missing mode template",
			req:     manifest.Request{Namespace: "demo", Mode: manifest.ModeLBCluster},
			wantErr: templates.ErrTemplateNotFound,
		},
		{
			name:    "invalid request",
			req:     manifest.Request{Namespace: "", Mode: manifest.ModeSingleCluster},
			wantErr: manifest.ErrInvalidConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := t.TempDir()
			root := filepath.Join(project, "artifacts")

			result, err := New(set).Run(tt.req, Options{OutputRoot: root, LockDir: project})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)

			_, statErr := os.Stat(root)
			assert.True(t, os.IsNotExist(statErr), "output root should not exist")
		})
	}
}

func TestRun_EntropyFailure(t *testing.T) {
	root := filepath.Join(t.TempDir(), "artifacts")

	_, err := New(defaultSet(t), WithEntropy(bytes.NewReader(nil))).Run(
		manifest.Request{Namespace: "demo", AgentCount: 1, Mode: manifest.ModeSingleCluster},
		Options{OutputRoot: root},
	)
	assert.ErrorIs(t, err, identity.ErrEntropy)

	_, statErr := os.Stat(root)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_Options(t *testing.T) {
	req := manifest.Request{Namespace: "demo", Mode: manifest.ModeLBCluster}

	t.Run("custom archive name", func(t *testing.T) {
		root := t.TempDir()
		result, err := New(defaultSet(t)).Run(req, Options{OutputRoot: root, ArchiveName: "bundle.zip"})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "bundle.zip"), result.Archive)
	})

	t.Run("empty output root", func(t *testing.T) {
		_, err := New(defaultSet(t)).Run(req, Options{})
		assert.ErrorIs(t, err, manifest.ErrInvalidConfiguration)
	})

	t.Run("archive name with separator", func(t *testing.T) {
		_, err := New(defaultSet(t)).Run(req, Options{OutputRoot: t.TempDir(), ArchiveName: "../out.zip"})
		assert.ErrorIs(t, err, artifact.ErrIO)
	})

	t.Run("archive name collides with artifact", func(t *testing.T) {
		_, err := New(defaultSet(t)).Run(req, Options{OutputRoot: t.TempDir(), ArchiveName: "01-namespace.yaml"})
		assert.ErrorIs(t, err, artifact.ErrIO)
	})

	t.Run("lock releases after run", func(t *testing.T) {
		project := t.TempDir()
		_, err := New(defaultSet(t)).Run(req, Options{OutputRoot: filepath.Join(project, "out"), LockDir: project})
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(project, ".keylimegen", "locks", LockOperation+".lock"))
		assert.True(t, os.IsNotExist(err))
	})
}
