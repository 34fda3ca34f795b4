package steps

import (
	"fmt"

	"github.com/systemstart/release-pipeline/pkg/api"
)

// NewStep creates a Step implementation from a StepConfig.
func NewStep(cfg api.StepConfig) (Step, error) {
	switch cfg.Type {
	case api.StepTypeCommand:
		if cfg.Command == nil {
			return nil, missingConfig(cfg)
		}
		return NewCommandStep(cfg.Name, cfg.Command, cfg.Env), nil
	case api.StepTypePath:
		return NewPathStep(cfg.Name, cfg.Path), nil
	case api.StepTypeProcess:
		if cfg.Process == nil {
			return nil, missingConfig(cfg)
		}
		return NewProcessStep(cfg.Name, cfg.Process), nil
	case api.StepTypeArtifact:
		if cfg.Artifact == nil {
			return nil, missingConfig(cfg)
		}
		return NewArtifactStep(cfg.Name, cfg.Artifact), nil
	default:
		return nil, fmt.Errorf("unknown step type: %s", cfg.Type)
	}
}

func missingConfig(cfg api.StepConfig) error {
	return fmt.Errorf("step %q: %s config is required", cfg.Name, cfg.Type)
}
