package api

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultPipeline []byte

// LoadPipeline reads a pipeline file, sets Dir/FilePath, and validates it.
func LoadPipeline(filename string) (*Pipeline, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline file: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing pipeline file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	p.FilePath = absPath
	p.Dir = filepath.Dir(absPath)

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating pipeline %s: %w", filename, err)
	}

	return p, nil
}

// DefaultPipeline returns the built-in release pipeline rooted at the current directory.
func DefaultPipeline() (*Pipeline, error) {
	p, err := Parse(defaultPipeline)
	if err != nil {
		return nil, fmt.Errorf("parsing built-in pipeline: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving current directory: %w", err)
	}
	p.Dir = wd

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating built-in pipeline: %w", err)
	}

	return p, nil
}

// Parse unmarshals a pipeline definition and fills in defaults.
// The RELEASE_TOOL_PATH environment variable replaces toolPaths when set.
func Parse(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	p.applyDefaults()

	if v := os.Getenv(ToolPathEnvironment); v != "" {
		p.ToolPaths = filepath.SplitList(v)
	}

	return &p, nil
}

func (p *Pipeline) applyDefaults() {
	if p.Root == "" {
		p.Root = DefaultRoot
	}
	if p.VersionEnv == "" {
		p.VersionEnv = DefaultVersionEnv
	}
	if p.StackSize == 0 {
		p.StackSize = DefaultStackSize
	}
	if p.AsarUnpack == "" {
		p.AsarUnpack = DefaultAsarUnpack
	}
}

// RootDir returns the absolute application root.
func (p *Pipeline) RootDir() string {
	if filepath.IsAbs(p.Root) {
		return filepath.Clean(p.Root)
	}
	return filepath.Join(p.Dir, p.Root)
}

// Step returns the step with the given name.
func (p *Pipeline) Step(name string) (*StepConfig, bool) {
	for i := range p.Steps {
		if p.Steps[i].Name == name {
			return &p.Steps[i], true
		}
	}
	return nil, false
}
