package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePipeline(t *testing.T, content string) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "release.yaml")
	require.NoError(t, os.WriteFile(f, []byte(content), 0o600))
	return f
}

func TestLoadPipeline_Valid(t *testing.T) {
	t.Setenv(ToolPathEnvironment, "")

	f := writePipeline(t, `
appName: Gold
root: app
toolPaths: [/opt/toolchain/bin]
vars:
  channel: beta
steps:
  - name: build
    type: command
    failureMessage: build failed
    command:
      command: npm
      args: [run, build]
  - name: extend-tool-path
    type: path
    path: {}
  - name: package
    type: command
    onFailure: continue
    timeout: 10m
    command:
      command: npx
      args: [electron-packager, .]
`)

	p, err := LoadPipeline(f)
	require.NoError(t, err)

	require.Len(t, p.Steps, 3)
	require.Equal(t, filepath.Dir(f), p.Dir)
	require.Equal(t, f, p.FilePath)
	require.Equal(t, filepath.Join(filepath.Dir(f), "app"), p.RootDir())
	require.Equal(t, []string{"/opt/toolchain/bin"}, p.ToolPaths)
	require.Equal(t, "beta", p.Vars["channel"])

	// Defaults.
	require.Equal(t, DefaultVersionEnv, p.VersionEnv)
	require.Equal(t, DefaultStackSize, p.StackSize)
	require.Equal(t, DefaultAsarUnpack, p.AsarUnpack)

	require.Equal(t, OnFailureAbort, p.Steps[0].Policy())
	require.Equal(t, OnFailureContinue, p.Steps[2].Policy())
	require.True(t, p.Steps[0].IsEnabled())
}

func TestLoadPipeline_FileNotFound(t *testing.T) {
	_, err := LoadPipeline("/nonexistent/release.yaml")
	require.ErrorContains(t, err, "reading pipeline file")
}

func TestLoadPipeline_InvalidYAML(t *testing.T) {
	f := writePipeline(t, "{{invalid")

	_, err := LoadPipeline(f)
	require.ErrorContains(t, err, "parsing pipeline file")
}

func TestLoadPipeline_ValidationFails(t *testing.T) {
	f := writePipeline(t, `
appName: Gold
steps:
  - name: ""
    type: command
`)

	_, err := LoadPipeline(f)
	require.ErrorContains(t, err, "validating pipeline")
}

func TestParse_ToolPathOverride(t *testing.T) {
	dirs := []string{"/a/bin", "/b/bin"}
	t.Setenv(ToolPathEnvironment, dirs[0]+string(os.PathListSeparator)+dirs[1])

	p, err := Parse([]byte("appName: Gold\ntoolPaths: [/ignored]\n"))
	require.NoError(t, err)
	require.Equal(t, dirs, p.ToolPaths)
}

func TestDefaultPipeline(t *testing.T) {
	t.Setenv(ToolPathEnvironment, "")

	p, err := DefaultPipeline()
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.Equal(t, wd, p.RootDir())

	require.Equal(t, "Gold", p.AppName)
	require.Equal(t, 8000000, p.StackSize)
	require.NotEmpty(t, p.ToolPaths)

	var names []string
	for _, s := range p.Steps {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{
		"install-dependencies",
		"build",
		"extend-tool-path",
		"patch-stack-size",
		"check-app-not-running",
		"package",
		"installer",
		"verify-installer",
		"sign",
		"git-status",
	}, names)

	build, ok := p.Step("build")
	require.True(t, ok)
	require.Equal(t, OnFailureAbort, build.Policy())
	require.Equal(t, "build failed", build.FailureMessage)
	require.Equal(t, "{{ .Version }}", build.Env["{{ .VersionEnv }}"])

	for _, name := range []string{"install-dependencies", "sign"} {
		s, ok := p.Step(name)
		require.True(t, ok)
		require.False(t, s.IsEnabled(), name)
	}

	for _, name := range []string{"patch-stack-size", "package", "installer", "git-status"} {
		s, ok := p.Step(name)
		require.True(t, ok)
		require.Equal(t, OnFailureContinue, s.Policy(), name)
	}
}

func TestEffectiveTimeout(t *testing.T) {
	p := &Pipeline{Timeout: "30m"}

	d, err := p.EffectiveTimeout(&StepConfig{})
	require.NoError(t, err)
	require.Equal(t, "30m0s", d.String())

	d, err = p.EffectiveTimeout(&StepConfig{Timeout: "90s"})
	require.NoError(t, err)
	require.Equal(t, "1m30s", d.String())

	d, err = (&Pipeline{}).EffectiveTimeout(&StepConfig{})
	require.NoError(t, err)
	require.Zero(t, d)

	_, err = p.EffectiveTimeout(&StepConfig{Timeout: "soon"})
	require.ErrorContains(t, err, "invalid timeout")
}
