package steps

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/systemstart/release-pipeline/pkg/api"
)

// listProcesses is swapped in tests.
var listProcesses = ps.Processes

type processStep struct {
	name string
	cfg  *api.ProcessConfig
}

// NewProcessStep creates a step that fails while any of the named
// executables is running. A running app keeps its files locked and
// makes the packager fail half way.
func NewProcessStep(name string, cfg *api.ProcessConfig) Step {
	return &processStep{name: name, cfg: cfg}
}

func (s *processStep) Name() string { return s.name }

func (s *processStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	names, err := RenderAll(s.cfg.Names, sctx.TemplateData)
	if err != nil {
		return nil, fmt.Errorf("rendering process names: %w", err)
	}

	processes, err := listProcesses()
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	var running []string
	for _, p := range processes {
		for _, name := range names {
			if strings.EqualFold(p.Executable(), name) {
				running = append(running, fmt.Sprintf("%s (pid %d)", p.Executable(), p.Pid()))
			}
		}
	}

	if len(running) > 0 {
		return &StepResult{ExitCode: NoExitCode, Output: running},
			fmt.Errorf("%w: %s", ErrProcessRunning, strings.Join(running, ", "))
	}

	slog.Debug("no conflicting processes", "step", s.name, "names", names)
	return &StepResult{ExitCode: NoExitCode}, nil
}
