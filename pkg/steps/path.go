package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/systemstart/release-pipeline/pkg/api"
)

type pathStep struct {
	name string
	cfg  *api.PathConfig
}

// NewPathStep creates a step that extends the tool search path.
func NewPathStep(name string, cfg *api.PathConfig) Step {
	return &pathStep{name: name, cfg: cfg}
}

func (s *pathStep) Name() string { return s.name }

func (s *pathStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	var dirs []string
	if s.cfg != nil {
		rendered, err := RenderAll(s.cfg.Dirs, sctx.TemplateData)
		if err != nil {
			return nil, fmt.Errorf("rendering directories: %w", err)
		}
		dirs = rendered
	}
	if len(dirs) == 0 {
		dirs = sctx.ToolPaths
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no tool directories configured")
	}
	if sctx.SearchPath == nil {
		return nil, fmt.Errorf("no search path to extend")
	}

	resolved := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(sctx.WorkDir, dir)
		}

		st, err := os.Stat(dir)
		if err != nil || !st.IsDir() {
			if sctx.DryRun {
				slog.Warn("dry run: tool directory not found", "step", s.name, "dir", dir)
				continue
			}
			return nil, fmt.Errorf("%w: %s", ErrToolDirNotFound, dir)
		}
		resolved = append(resolved, dir)
	}

	added := sctx.SearchPath.Append(resolved...)
	slog.Info("extended tool search path", "step", s.name, "added", added)

	return &StepResult{ExitCode: NoExitCode, Output: added}, nil
}
