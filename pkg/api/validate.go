package api

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var validStepTypes = map[string]bool{
	StepTypeCommand:  true,
	StepTypePath:     true,
	StepTypeProcess:  true,
	StepTypeArtifact: true,
}

var validFailurePolicies = map[string]bool{
	OnFailureAbort:    true,
	OnFailureContinue: true,
}

// Validate checks the pipeline configuration for errors.
func (p *Pipeline) Validate() error {
	if p.AppName == "" {
		return fmt.Errorf("appName is required")
	}
	if p.StackSize <= 0 {
		return fmt.Errorf("stackSize must be positive, got %d", p.StackSize)
	}
	if !doublestar.ValidatePattern(p.AsarUnpack) {
		return fmt.Errorf("asarUnpack %q is not a valid glob", p.AsarUnpack)
	}
	if _, err := p.DefaultTimeout(); err != nil {
		return err
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("pipeline has no steps")
	}

	names := make(map[string]int)

	for i, step := range p.Steps {
		if step.Name == "" {
			return fmt.Errorf("step %d: name is required", i)
		}
		if prev, exists := names[step.Name]; exists {
			return fmt.Errorf("step %d: duplicate step name %q (first defined at step %d)", i, step.Name, prev)
		}
		names[step.Name] = i

		if !validStepTypes[step.Type] {
			return fmt.Errorf("step %q: unknown type %q", step.Name, step.Type)
		}

		if err := validateStepConfig(step); err != nil {
			return fmt.Errorf("step %q: %w", step.Name, err)
		}
	}

	return nil
}

func validateStepConfig(step StepConfig) error {
	if step.OnFailure != "" && !validFailurePolicies[step.OnFailure] {
		return fmt.Errorf("onFailure %q is not valid (valid: %s, %s)", step.OnFailure, OnFailureAbort, OnFailureContinue)
	}
	if step.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if _, err := parseTimeout(step.Timeout); err != nil {
		return err
	}

	switch step.Type {
	case StepTypeCommand:
		return validateCommandConfig(step)
	case StepTypePath:
		if step.Path == nil {
			return fmt.Errorf("path config is required")
		}
	case StepTypeProcess:
		if step.Process == nil || len(step.Process.Names) == 0 {
			return fmt.Errorf("process.names is required")
		}
	case StepTypeArtifact:
		return validateArtifactConfig(step)
	}
	return nil
}

func validateCommandConfig(step StepConfig) error {
	if step.Command == nil {
		return fmt.Errorf("command config is required")
	}
	if strings.TrimSpace(step.Command.Command) == "" {
		return fmt.Errorf("command.command is required")
	}
	return nil
}

func validateArtifactConfig(step StepConfig) error {
	if step.Artifact == nil || len(step.Artifact.Patterns) == 0 {
		return fmt.Errorf("artifact.patterns is required")
	}
	for _, pattern := range step.Artifact.Patterns {
		// Templated patterns are checked after rendering.
		if strings.Contains(pattern, "{{") {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("artifact pattern %q is not a valid glob", pattern)
		}
	}
	return nil
}
