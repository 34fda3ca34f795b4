package steps

import (
	"context"
	"io"
)

// NoExitCode is reported by steps that did not run an external process.
const NoExitCode = -1

// StepContext provides the runtime context for a step.
type StepContext struct {
	WorkDir      string
	TemplateData map[string]any
	SearchPath   *SearchPath
	ToolPaths    []string // pipeline toolPaths, used by path steps without dirs
	Stdout       io.Writer
	Stderr       io.Writer
	DryRun       bool
}

// StepResult holds the outcome of a step.
type StepResult struct {
	ExitCode int
	Output   []string // human-readable notes (added dirs, matched artifacts)
}

// Step is the interface all pipeline steps implement.
type Step interface {
	Name() string
	Run(ctx context.Context, sctx StepContext) (*StepResult, error)
}
