package processing

import (
	"log/slog"
	"time"

	"github.com/systemstart/release-pipeline/pkg/api"
)

// Status is the outcome of a single step.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// StepOutcome records what happened to one step.
type StepOutcome struct {
	Name     string
	Type     string
	Policy   string
	Status   Status
	ExitCode int
	Attempts int
	Duration time.Duration
	Output   []string
	Err      error
}

// Report is the ordered record of a release run.
type Report struct {
	Version     string
	PackageName string
	Steps       []StepOutcome

	// LastExitCode is the exit code of the most recent abort-policy step
	// that ran an external process.
	LastExitCode int
}

func (r *Report) add(o StepOutcome) {
	r.Steps = append(r.Steps, o)
}

// Outcome returns the outcome of the named step.
func (r *Report) Outcome(name string) (StepOutcome, bool) {
	for _, o := range r.Steps {
		if o.Name == name {
			return o, true
		}
	}
	return StepOutcome{}, false
}

// Ran returns the names of the steps that were executed, in order.
func (r *Report) Ran() []string {
	var names []string
	for _, o := range r.Steps {
		if o.Status != StatusSkipped {
			names = append(names, o.Name)
		}
	}
	return names
}

// Warnings returns best-effort steps that failed.
func (r *Report) Warnings() []StepOutcome {
	var out []StepOutcome
	for _, o := range r.Steps {
		if o.Status == StatusFailed && o.Policy != api.OnFailureAbort {
			out = append(out, o)
		}
	}
	return out
}

// Log writes a summary line per step.
func (r *Report) Log() {
	for _, o := range r.Steps {
		attrs := []any{"step", o.Name, "status", o.Status, "duration", o.Duration.Round(time.Millisecond)}
		if o.Status == StatusFailed {
			slog.Warn("step summary", append(attrs, "exitCode", o.ExitCode, "error", o.Err)...)
			continue
		}
		slog.Info("step summary", attrs...)
	}

	if w := r.Warnings(); len(w) > 0 {
		slog.Warn("release finished with failed best-effort steps", "count", len(w))
	}
}
