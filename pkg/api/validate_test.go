package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validPipeline() *Pipeline {
	return &Pipeline{
		AppName:    "Gold",
		StackSize:  DefaultStackSize,
		AsarUnpack: DefaultAsarUnpack,
		Steps: []StepConfig{
			{
				Name:    "build",
				Type:    StepTypeCommand,
				Command: &CommandConfig{Command: "npm", Args: []string{"run", "build"}},
			},
			{
				Name: "extend-tool-path",
				Type: StepTypePath,
				Path: &PathConfig{},
			},
			{
				Name:    "check-app-not-running",
				Type:    StepTypeProcess,
				Process: &ProcessConfig{Names: []string{"Gold.exe"}},
			},
			{
				Name:      "verify-installer",
				Type:      StepTypeArtifact,
				OnFailure: OnFailureContinue,
				Artifact:  &ArtifactConfig{Patterns: []string{"release-builds/**/*.exe"}},
			},
		},
	}
}

func TestValidate_ValidPipeline(t *testing.T) {
	require.NoError(t, validPipeline().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Pipeline)
		wantErr string
	}{
		{
			name:    "missing app name",
			mutate:  func(p *Pipeline) { p.AppName = "" },
			wantErr: "appName is required",
		},
		{
			name:    "non-positive stack size",
			mutate:  func(p *Pipeline) { p.StackSize = -1 },
			wantErr: "stackSize must be positive",
		},
		{
			name:    "bad asar unpack glob",
			mutate:  func(p *Pipeline) { p.AsarUnpack = "daemon/[" },
			wantErr: "not a valid glob",
		},
		{
			name:    "bad pipeline timeout",
			mutate:  func(p *Pipeline) { p.Timeout = "forever" },
			wantErr: "invalid timeout",
		},
		{
			name:    "no steps",
			mutate:  func(p *Pipeline) { p.Steps = nil },
			wantErr: "no steps",
		},
		{
			name:    "missing step name",
			mutate:  func(p *Pipeline) { p.Steps[1].Name = "" },
			wantErr: "step 1: name is required",
		},
		{
			name:    "duplicate step name",
			mutate:  func(p *Pipeline) { p.Steps[2].Name = "build" },
			wantErr: `duplicate step name "build"`,
		},
		{
			name:    "unknown type",
			mutate:  func(p *Pipeline) { p.Steps[0].Type = "docker" },
			wantErr: `unknown type "docker"`,
		},
		{
			name:    "unknown failure policy",
			mutate:  func(p *Pipeline) { p.Steps[0].OnFailure = "ignore" },
			wantErr: `onFailure "ignore" is not valid`,
		},
		{
			name:    "negative retries",
			mutate:  func(p *Pipeline) { p.Steps[0].Retries = -2 },
			wantErr: "retries must not be negative",
		},
		{
			name:    "bad step timeout",
			mutate:  func(p *Pipeline) { p.Steps[0].Timeout = "-5s" },
			wantErr: "must not be negative",
		},
		{
			name:    "missing command config",
			mutate:  func(p *Pipeline) { p.Steps[0].Command = nil },
			wantErr: "command config is required",
		},
		{
			name:    "blank command",
			mutate:  func(p *Pipeline) { p.Steps[0].Command.Command = "  " },
			wantErr: "command.command is required",
		},
		{
			name:    "missing path config",
			mutate:  func(p *Pipeline) { p.Steps[1].Path = nil },
			wantErr: "path config is required",
		},
		{
			name:    "missing process names",
			mutate:  func(p *Pipeline) { p.Steps[2].Process = &ProcessConfig{} },
			wantErr: "process.names is required",
		},
		{
			name:    "missing artifact patterns",
			mutate:  func(p *Pipeline) { p.Steps[3].Artifact = nil },
			wantErr: "artifact.patterns is required",
		},
		{
			name:    "bad artifact glob",
			mutate:  func(p *Pipeline) { p.Steps[3].Artifact.Patterns = []string{"dist/[a-"} },
			wantErr: "not a valid glob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPipeline()
			tt.mutate(p)
			require.ErrorContains(t, p.Validate(), tt.wantErr)
		})
	}
}

func TestValidate_TemplatedArtifactPatternDeferred(t *testing.T) {
	p := validPipeline()
	p.Steps[3].Artifact.Patterns = []string{"release-builds/{{ .AppName }}Setup-{{ .Version }}.exe"}
	require.NoError(t, p.Validate())
}

func TestStepConfig_Defaults(t *testing.T) {
	disabled := false
	s := StepConfig{Enabled: &disabled, OnFailure: OnFailureContinue}
	require.False(t, s.IsEnabled())
	require.Equal(t, OnFailureContinue, s.Policy())

	var d StepConfig
	require.True(t, d.IsEnabled())
	require.Equal(t, OnFailureAbort, d.Policy())
}
