package api

const (
	DefaultRoot         = "."
	DefaultVersionEnv   = "INSTALLER_VERSION"
	DefaultStackSize    = 8000000
	DefaultAsarUnpack   = "**/daemon/**"
	ToolPathEnvironment = "RELEASE_TOOL_PATH"

	StepTypeCommand  = "command"
	StepTypePath     = "path"
	StepTypeProcess  = "process"
	StepTypeArtifact = "artifact"

	OnFailureAbort    = "abort"
	OnFailureContinue = "continue"
)

// Pipeline is the release pipeline definition.
type Pipeline struct {
	AppName      string         `yaml:"appName"`
	Root         string         `yaml:"root"`
	VersionEnv   string         `yaml:"versionEnv"`
	Icon         string         `yaml:"icon"`
	AsarUnpack   string         `yaml:"asarUnpack"`
	NativeBinary string         `yaml:"nativeBinary"`
	StackSize    int            `yaml:"stackSize"`
	ToolPaths    []string       `yaml:"toolPaths"`
	Timeout      string         `yaml:"timeout"`
	Vars         map[string]any `yaml:"vars"`
	Steps        []StepConfig   `yaml:"steps"`

	// Set by the loader, not from YAML.
	Dir      string `yaml:"-"`
	FilePath string `yaml:"-"`
}

// StepConfig defines a single step within a pipeline.
type StepConfig struct {
	Name           string            `yaml:"name"`
	Type           string            `yaml:"type"`
	Enabled        *bool             `yaml:"enabled,omitempty"` // default true
	OnFailure      string            `yaml:"onFailure"`
	FailureMessage string            `yaml:"failureMessage"`
	Timeout        string            `yaml:"timeout"`
	Retries        int               `yaml:"retries"`
	Env            map[string]string `yaml:"env"`
	Command        *CommandConfig    `yaml:"command,omitempty"`
	Path           *PathConfig       `yaml:"path,omitempty"`
	Process        *ProcessConfig    `yaml:"process,omitempty"`
	Artifact       *ArtifactConfig   `yaml:"artifact,omitempty"`
}

// CommandConfig configures an external tool invocation.
type CommandConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// PathConfig configures the tool search path extension.
type PathConfig struct {
	Dirs []string `yaml:"dirs"`
}

// ProcessConfig lists executables that must not be running.
type ProcessConfig struct {
	Names []string `yaml:"names"`
}

// ArtifactConfig lists glob patterns that must match at least one file.
type ArtifactConfig struct {
	Patterns []string `yaml:"patterns"`
}

// IsEnabled reports whether the step should run.
func (s *StepConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Policy returns the failure policy, defaulting to abort.
func (s *StepConfig) Policy() string {
	if s.OnFailure == "" {
		return OnFailureAbort
	}
	return s.OnFailure
}
