package api

import (
	"fmt"
	"time"
)

// DefaultTimeout returns the pipeline-wide step timeout; zero means none.
func (p *Pipeline) DefaultTimeout() (time.Duration, error) {
	return parseTimeout(p.Timeout)
}

// EffectiveTimeout returns the step timeout, falling back to the pipeline default.
func (p *Pipeline) EffectiveTimeout(step *StepConfig) (time.Duration, error) {
	if step.Timeout != "" {
		return parseTimeout(step.Timeout)
	}
	return p.DefaultTimeout()
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", s)
	}
	return d, nil
}
