package steps

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/systemstart/release-pipeline/pkg/api"
)

type artifactStep struct {
	name string
	cfg  *api.ArtifactConfig
}

// NewArtifactStep creates a step that checks that earlier steps produced
// their outputs.
func NewArtifactStep(name string, cfg *api.ArtifactConfig) Step {
	return &artifactStep{name: name, cfg: cfg}
}

func (s *artifactStep) Name() string { return s.name }

func (s *artifactStep) Run(_ context.Context, sctx StepContext) (*StepResult, error) {
	patterns, err := RenderAll(s.cfg.Patterns, sctx.TemplateData)
	if err != nil {
		return nil, fmt.Errorf("rendering patterns: %w", err)
	}

	if sctx.DryRun {
		slog.Info("dry run: would check artifacts", "step", s.name, "patterns", patterns)
		return &StepResult{ExitCode: NoExitCode}, nil
	}

	fsys := os.DirFS(sctx.WorkDir)

	var found []string
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("artifact pattern %q is not a valid glob", pattern)
		}

		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return &StepResult{ExitCode: NoExitCode, Output: found}, fmt.Errorf("%w: %s", ErrArtifactMissing, pattern)
		}
		found = append(found, matches...)
	}

	slices.Sort(found)
	found = slices.Compact(found)

	slog.Info("artifacts present", "step", s.name, "files", found)
	return &StepResult{ExitCode: NoExitCode, Output: found}, nil
}
