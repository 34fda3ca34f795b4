package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/systemstart/release-pipeline/pkg/api"
)

const (
	stderrTailSize = 4096
	waitDelay      = 5 * time.Second
)

type commandStep struct {
	name string
	cfg  *api.CommandConfig
	env  map[string]string
}

// NewCommandStep creates a step that runs an external tool. Env entries are
// templated and visible to that single invocation only.
func NewCommandStep(name string, cfg *api.CommandConfig, env map[string]string) Step {
	return &commandStep{name: name, cfg: cfg, env: env}
}

func (s *commandStep) Name() string { return s.name }

func (s *commandStep) Run(ctx context.Context, sctx StepContext) (*StepResult, error) {
	tool, err := Render(s.cfg.Command, sctx.TemplateData)
	if err != nil {
		return nil, fmt.Errorf("rendering command: %w", err)
	}
	args, err := RenderAll(s.cfg.Args, sctx.TemplateData)
	if err != nil {
		return nil, fmt.Errorf("rendering arguments: %w", err)
	}
	env, err := RenderMap(s.env, sctx.TemplateData)
	if err != nil {
		return nil, fmt.Errorf("rendering environment: %w", err)
	}

	if sctx.DryRun {
		slog.Info("dry run: would run command", "step", s.name, "command", tool, "args", args, "env", envKeys(env))
		return &StepResult{ExitCode: NoExitCode}, nil
	}

	searchPath := sctx.SearchPath
	if searchPath == nil {
		searchPath = SystemSearchPath()
	}

	path, err := searchPath.LookPath(tool)
	if err != nil {
		return nil, err
	}

	slog.Info("running command", "step", s.name, "command", path, "args", args)

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = sctx.WorkDir
	cmd.Env = searchPath.Environ(os.Environ(), env)
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stdout = writerOr(sctx.Stdout, os.Stdout)
	cmd.Stderr = io.MultiWriter(writerOr(sctx.Stderr, os.Stderr), &stderr)

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &StepResult{ExitCode: cmd.ProcessState.ExitCode()}, fmt.Errorf("%s interrupted: %w", tool, ctxErr)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			return &StepResult{ExitCode: code}, &ExitError{
				Tool:   tool,
				Code:   code,
				Stderr: tail(stderr.String(), stderrTailSize),
				Err:    err,
			}
		}
		return nil, fmt.Errorf("running %s: %w", tool, err)
	}

	return &StepResult{ExitCode: 0}, nil
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}

func envKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
