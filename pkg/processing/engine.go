package processing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/systemstart/release-pipeline/pkg/api"
	"github.com/systemstart/release-pipeline/pkg/steps"
)

// Options are the per-invocation inputs of a release run.
type Options struct {
	Version string
	DryRun  bool
	Vars    map[string]any // override pipeline vars
	Stdout  io.Writer
	Stderr  io.Writer
}

type runState struct {
	searchPath *steps.SearchPath
}

// RunPipeline executes the pipeline's enabled steps in order from inside
// the build root. The version and the pipeline definition are checked
// before anything runs. The previous working directory is restored on every
// exit path. A failing step with the abort policy stops the run with a
// *StepError; failing best-effort steps are recorded in the report.
func RunPipeline(ctx context.Context, pipeline *api.Pipeline, opts Options) (report *Report, err error) {
	rctx, err := NewContext(pipeline, opts.Version, opts.Vars)
	if err != nil {
		return nil, &UsageError{Err: err}
	}
	if err := pipeline.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if !opts.DryRun {
		if err := checkToolPaths(pipeline, rctx.Root); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}

	slog.Info("starting release",
		"app", rctx.AppName,
		"version", rctx.Version,
		"packageName", rctx.PackageName,
		"root", rctx.Root,
		"dryRun", opts.DryRun)

	restore, err := enterDir(rctx.Root)
	if err != nil {
		return nil, fmt.Errorf("entering build root: %w", err)
	}
	defer func() {
		if rErr := restore(); rErr != nil {
			err = errors.Join(err, rErr)
		}
	}()

	report = &Report{Version: rctx.Version, PackageName: rctx.PackageName}
	state := &runState{searchPath: steps.SystemSearchPath()}
	data := rctx.TemplateData()

	for i := range pipeline.Steps {
		stepCfg := &pipeline.Steps[i]

		if !stepCfg.IsEnabled() {
			slog.Info("skipping disabled step", "step", stepCfg.Name)
			report.add(StepOutcome{
				Name:     stepCfg.Name,
				Type:     stepCfg.Type,
				Policy:   stepCfg.Policy(),
				Status:   StatusSkipped,
				ExitCode: steps.NoExitCode,
			})
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			report.Log()
			return report, fmt.Errorf("release interrupted before step %q: %w", stepCfg.Name, ctxErr)
		}

		outcome := runStep(ctx, pipeline, stepCfg, rctx, data, state, opts)
		report.add(outcome)

		if stepCfg.Policy() == api.OnFailureAbort && outcome.ExitCode != steps.NoExitCode {
			report.LastExitCode = outcome.ExitCode
		}

		if outcome.Err == nil {
			continue
		}

		if stepCfg.Policy() == api.OnFailureAbort {
			slog.Error("required step failed, aborting release", "step", stepCfg.Name, "exitCode", outcome.ExitCode, "error", outcome.Err)
			report.Log()
			return report, &StepError{
				Step:     stepCfg.Name,
				ExitCode: outcome.ExitCode,
				Message:  stepCfg.FailureMessage,
				Err:      outcome.Err,
			}
		}

		slog.Warn("best-effort step failed, continuing", "step", stepCfg.Name, "exitCode", outcome.ExitCode, "error", outcome.Err)
	}

	report.Log()
	slog.Info("release finished", "packageName", rctx.PackageName, "warnings", len(report.Warnings()))
	return report, nil
}

func runStep(
	ctx context.Context,
	pipeline *api.Pipeline,
	stepCfg *api.StepConfig,
	rctx *Context,
	data map[string]any,
	state *runState,
	opts Options,
) (outcome StepOutcome) {
	outcome = StepOutcome{
		Name:     stepCfg.Name,
		Type:     stepCfg.Type,
		Policy:   stepCfg.Policy(),
		Status:   StatusSucceeded,
		ExitCode: steps.NoExitCode,
	}

	slog.Info("running step", "step", stepCfg.Name, "type", stepCfg.Type, "onFailure", stepCfg.Policy())
	start := time.Now()
	defer func() {
		outcome.Duration = time.Since(start)
		slog.Info("step finished", "step", stepCfg.Name, "status", outcome.Status, "duration", outcome.Duration.Round(time.Millisecond))
	}()

	step, err := steps.NewStep(*stepCfg)
	if err != nil {
		outcome.Status, outcome.Err = StatusFailed, fmt.Errorf("creating step: %w", err)
		return outcome
	}

	timeout, err := pipeline.EffectiveTimeout(stepCfg)
	if err != nil {
		outcome.Status, outcome.Err = StatusFailed, err
		return outcome
	}

	sctx := steps.StepContext{
		WorkDir:      rctx.Root,
		TemplateData: data,
		SearchPath:   state.searchPath,
		ToolPaths:    rctx.ToolPaths,
		Stdout:       writerOr(opts.Stdout, os.Stdout),
		Stderr:       writerOr(opts.Stderr, os.Stderr),
		DryRun:       opts.DryRun,
	}

	attempts := stepCfg.Retries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		outcome.Attempts = attempt

		result, runErr := runAttempt(ctx, step, sctx, timeout)
		if result != nil {
			outcome.ExitCode = result.ExitCode
			outcome.Output = result.Output
		}
		outcome.Err = runErr

		if runErr == nil || ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			slog.Warn("step failed, retrying", "step", stepCfg.Name, "attempt", attempt, "attempts", attempts, "error", runErr)
		}
	}

	if outcome.Err != nil {
		outcome.Status = StatusFailed
	}
	return outcome
}

func runAttempt(ctx context.Context, step steps.Step, sctx steps.StepContext, timeout time.Duration) (*steps.StepResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return step.Run(ctx, sctx)
}

// checkToolPaths verifies the pipeline's toolPaths when an enabled path
// step relies on them, so a missing toolchain fails before the build.
func checkToolPaths(pipeline *api.Pipeline, root string) error {
	uses := slices.ContainsFunc(pipeline.Steps, func(s api.StepConfig) bool {
		return s.IsEnabled() && s.Type == api.StepTypePath && (s.Path == nil || len(s.Path.Dirs) == 0)
	})
	if !uses {
		return nil
	}

	for _, dir := range pipeline.ToolPaths {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		st, err := os.Stat(dir)
		if err != nil || !st.IsDir() {
			return fmt.Errorf("toolPaths: %w: %s", steps.ErrToolDirNotFound, dir)
		}
	}
	return nil
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
