package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/keylimegen/internal/artifact"
	"github.com/cameronsjo/keylimegen/internal/config"
	"github.com/cameronsjo/keylimegen/internal/templates"
)

func archiveNames(t *testing.T, path string) []string {
	t.Helper()
	entries, err := artifact.List(path)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func TestGenerateCmd_Help(t *testing.T) {
	output, err := executeCmd(t, "generate", "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "--namespace")
	assert.Contains(t, output, "--agents")
	assert.Contains(t, output, "--mode")
	assert.Contains(t, output, "--dry-run")
}

func TestGenerateCmd_Aliases(t *testing.T) {
	for _, alias := range []string{"gen", "render"} {
		t.Run(alias, func(t *testing.T) {
			assert.Equal(t, "generate", findCommand(t, alias).Name())
		})
	}
}

func TestGenerateCmd_DemoScenario(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	out := filepath.Join(dir, "out")

	output, err := executeCmd(t, "generate", "-n", "demo", "-a", "2", "-o", out)
	require.NoError(t, err)

	archive := filepath.Join(out, artifact.DefaultArchiveName)
	assert.Contains(t, output, archive)
	assert.Contains(t, output, filepath.Join(out, "agent-pod-2.yaml"))

	names := archiveNames(t, archive)
	assert.Equal(t, []string{"agent-config-1.yaml", "agent-pod-1.yaml", "agent-config-2.yaml", "agent-pod-2.yaml"},
		names[len(names)-4:])
	assert.Equal(t, "01-namespace.yaml", names[0])
	assert.Len(t, names, 12)
	assert.NotContains(t, names, "15-agent-lb-service.yaml")

	ns, err := os.ReadFile(filepath.Join(out, "01-namespace.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(ns), "demo")
}

func TestGenerateCmd_Defaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	_, err := executeCmd(t, "generate")
	require.NoError(t, err)

	names := archiveNames(t, filepath.Join(dir, config.DefaultOutput, artifact.DefaultArchiveName))
	assert.Contains(t, names, "agent-config-1.yaml")
	assert.NotContains(t, names, "agent-config-2.yaml")

	ns, err := os.ReadFile(filepath.Join(dir, config.DefaultOutput, "01-namespace.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(ns), config.DefaultNamespace)
}

func TestGenerateCmd_RASCluster(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	output, err := executeCmd(t, "generate", "-m", "ras-cluster", "-o", "out")
	require.NoError(t, err)
	assert.Contains(t, output, "No agent manifests generated")

	names := archiveNames(t, filepath.Join(dir, "out", artifact.DefaultArchiveName))
	assert.Len(t, names, 8)
	for _, name := range names {
		assert.False(t, strings.HasPrefix(name, "agent-"), name)
	}
}

func TestGenerateCmd_DryRun(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	output, err := executeCmd(t, "generate", "-m", "lb-cluster", "-a", "2", "--dry-run", "-o", "out")
	require.NoError(t, err)

	assert.Contains(t, output, "Would generate 6 artifacts")
	assert.Contains(t, output, "15-agent-lb-service.yaml")
	assert.Contains(t, output, "[6] agent-pod-2.yaml (agent 2)")
	assert.Contains(t, output, filepath.Join("out", artifact.DefaultArchiveName))

	_, err = os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateCmd_ConfigFile(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, config.FileName), []byte(`
namespace: attest
agents: 3
output: build
archive: bundle.zip
values:
  image_tag: v7.12.1
`), 0644))

	t.Run("discovered from subdirectory", func(t *testing.T) {
		sub := filepath.Join(project, "sub")
		require.NoError(t, os.MkdirAll(sub, 0755))
		chdir(t, sub)

		_, err := executeCmd(t, "generate")
		require.NoError(t, err)

		names := archiveNames(t, filepath.Join(project, "build", "bundle.zip"))
		assert.Contains(t, names, "agent-config-3.yaml")

		pod, err := os.ReadFile(filepath.Join(project, "build", "agent-pod-1.yaml"))
		require.NoError(t, err)
		assert.Contains(t, string(pod), "keylime_agent:v7.12.1")
	})

	t.Run("flags override file", func(t *testing.T) {
		chdir(t, t.TempDir())
		out := filepath.Join(t.TempDir(), "flag-out")

		_, err := executeCmd(t, "generate", "-c", filepath.Join(project, config.FileName),
			"-a", "1", "-o", out, "--set", "image_tag=v8")
		require.NoError(t, err)

		names := archiveNames(t, filepath.Join(out, "bundle.zip"))
		assert.NotContains(t, names, "agent-config-2.yaml")

		pod, err := os.ReadFile(filepath.Join(out, "agent-pod-1.yaml"))
		require.NoError(t, err)
		assert.Contains(t, string(pod), "keylime_agent:v8")
	})
}

func TestGenerateCmd_ValuesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prod.yaml"), []byte("db_password: from-values\n"), 0644))

	_, err := executeCmd(t, "generate", "-m", "ras-cluster", "-f", "prod.yaml", "-o", "out")
	require.NoError(t, err)

	db, err := os.ReadFile(filepath.Join(dir, "out", "14-pgdb-deployment.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(db), "from-values")
}

func TestGenerateCmd_CustomTemplates(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	tmplDir := filepath.Join(dir, "tmpl")
	require.NoError(t, os.MkdirAll(tmplDir, 0755))
	files := map[string]string{
		"01-namespace.yaml": "name: {{ .namespace }}\n",
		"agent-config.yaml": "uuid: {{ .agent_uuid }}\n",
		"agent-pod.yaml":    "ordinal: {{ .ordinal }}\n",
		templates.IndexFile: "templates:\n  agent-config.yaml:\n    role: agent\n  agent-pod.yaml:\n    role: agent\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmplDir, name), []byte(content), 0644))
	}

	_, err := executeCmd(t, "generate", "-t", tmplDir, "-n", "demo", "-a", "2", "-o", "out")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"01-namespace.yaml", "agent-config-1.yaml", "agent-pod-1.yaml", "agent-config-2.yaml", "agent-pod-2.yaml",
	}, archiveNames(t, filepath.Join(dir, "out", artifact.DefaultArchiveName)))
}

func TestGenerateCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown mode", args: []string{"-m", "multi-cluster"}, wantMsg: "unknown mode"},
		{name: "negative agents", args: []string{"-a", "-1"}, wantMsg: "agents must not be negative"},
		{name: "bad set", args: []string{"--set", "novalue"}, wantMsg: "parse --set"},
		{name: "missing values file", args: []string{"-f", "missing.yaml"}, wantMsg: "load values"},
		{name: "missing config", args: []string{"-c", "missing.yaml"}, wantMsg: "load config"},
		{name: "missing templates dir", args: []string{"-t", "nope"}, wantMsg: "templates directory not found"},
		{name: "positional argument", args: []string{"extra"}, wantMsg: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			chdir(t, dir)

			_, err := executeCmd(t, append([]string{"generate", "-o", "out"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			_, statErr := os.Stat(filepath.Join(dir, "out"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestGenerateCmd_MissingTemplateWritesNothing(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	tmplDir := filepath.Join(dir, "tmpl")
	require.NoError(t, os.MkdirAll(tmplDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "01-namespace.yaml"), []byte("name: x\n"), 0644))

	_, err := executeCmd(t, "generate", "-t", tmplDir, "-a", "1", "-o", "out")
	require.ErrorIs(t, err, templates.ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "agent-config.yaml")

	_, statErr := os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(statErr))
}
