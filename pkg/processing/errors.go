package processing

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingVersion is returned when no release version was supplied.
var ErrMissingVersion = errors.New("version is required")

// UsageError reports invalid invocation input. It is returned before any
// step runs or the working directory changes.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return "usage: " + e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// ConfigError reports a pipeline definition that cannot run. Like
// UsageError it is returned before any step runs.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "invalid pipeline: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// StepError reports a step whose failure aborted the release.
type StepError struct {
	Step     string
	ExitCode int
	Message  string
	Err      error
}

func (e *StepError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (step %s): %v", e.Message, strconv.Quote(e.Step), e.Err)
	}
	return fmt.Sprintf("step %s failed: %v", strconv.Quote(e.Step), e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
