package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/systemstart/release-pipeline/pkg/api"
)

func TestArtifactStep_Present(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "release-builds/windows-installer/GoldSetup-1.2.3.exe", "MZ")

	step := NewArtifactStep("verify-installer", &api.ArtifactConfig{
		Patterns: []string{"{{ .Vars.installerDir }}/{{ .AppName }}Setup-{{ .Version }}.exe"},
	})
	result, err := step.Run(context.Background(), StepContext{WorkDir: dir, TemplateData: templateData()})
	require.NoError(t, err)
	require.Equal(t, []string{"release-builds/windows-installer/GoldSetup-1.2.3.exe"}, result.Output)
}

func TestArtifactStep_DoubleStar(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "Gold-win32-x64/resources/app.asar.unpacked/daemon/gold.exe", "MZ")
	writeTestFile(t, dir, "Gold-win32-x64/Gold.exe", "MZ")

	step := NewArtifactStep("verify-package", &api.ArtifactConfig{Patterns: []string{"{{ .AppName }}-win32-*/**/daemon/*.exe", "**/Gold.exe"}})
	result, err := step.Run(context.Background(), StepContext{WorkDir: dir, TemplateData: templateData()})
	require.NoError(t, err)
	require.Equal(t, []string{
		"Gold-win32-x64/Gold.exe",
		"Gold-win32-x64/resources/app.asar.unpacked/daemon/gold.exe",
	}, result.Output)
}

func TestArtifactStep_Missing(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "release-builds/windows-installer/GoldSetup-1.2.2.exe", "MZ")

	step := NewArtifactStep("verify-installer", &api.ArtifactConfig{
		Patterns: []string{"release-builds/windows-installer/{{ .AppName }}Setup-{{ .Version }}.exe"},
	})
	_, err := step.Run(context.Background(), StepContext{WorkDir: dir, TemplateData: templateData()})
	require.ErrorIs(t, err, ErrArtifactMissing)
	require.Contains(t, err.Error(), "GoldSetup-1.2.3.exe")
}

func TestArtifactStep_DryRun(t *testing.T) {
	step := NewArtifactStep("verify-installer", &api.ArtifactConfig{Patterns: []string{"missing/*.exe"}})
	_, err := step.Run(context.Background(), StepContext{WorkDir: t.TempDir(), TemplateData: templateData(), DryRun: true})
	require.NoError(t, err)
}
