package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/systemstart/release-pipeline/pkg/api"
	"github.com/systemstart/release-pipeline/pkg/logging"
	"github.com/systemstart/release-pipeline/pkg/processing"
)

var version = "dev"

const (
	_ = iota
	exitStepFailed
	exitUsage
	exitConfig
	exitDotenvError
)

// configError marks failures to load or validate the pipeline definition.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// dotenvError marks an unreadable .env file.
type dotenvError struct{ err error }

func (e *dotenvError) Error() string { return "failed to load .env: " + e.err.Error() }
func (e *dotenvError) Unwrap() error { return e.err }

type options struct {
	configFile   string
	rootOverride string
	varsFile     string
	vars         map[string]string
	dryRun       bool
	loggingType  string
	logLevel     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	code := execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	slog.Error("release failed", "error", err)
	return exitCode(err)
}

func exitCode(err error) int {
	var (
		usageErr    *processing.UsageError
		cfgErr      *configError
		pipelineErr *processing.ConfigError
		dotenvErr   *dotenvError
	)
	switch {
	case errors.As(err, &usageErr):
		return exitUsage
	case errors.As(err, &cfgErr), errors.As(err, &pipelineErr):
		return exitConfig
	case errors.As(err, &dotenvErr):
		return exitDotenvError
	default:
		return exitStepFailed
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "release <version>",
		Short:         "Build, patch, package and wrap the desktop app into a versioned Windows installer",
		Version:       version,
		Args:          usageArgs(cobra.MaximumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logging.Initialize(cmd.ErrOrStderr(), opts.loggingType, opts.logLevel); err != nil {
				return &processing.UsageError{Err: err}
			}
			return includeEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var releaseVersion string
			if len(args) > 0 {
				releaseVersion = args[0]
			}
			return runRelease(cmd, opts, releaseVersion)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "pipeline definition YAML (default: built-in pipeline)")
	flags.StringVar(&opts.rootOverride, "root", "", "application root directory (overrides the pipeline root)")
	flags.StringVar(&opts.loggingType, "logging-type", logging.Tint, "logging type: json, text or tint")
	flags.StringVar(&opts.logLevel, "log-level", "info", "logging level: debug, info, warn, error")

	cmd.Flags().StringVar(&opts.varsFile, "vars-file", "", "YAML file with extra template variables")
	cmd.Flags().StringToStringVar(&opts.vars, "var", nil, "template variable override, key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "log the rendered commands without running them")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &processing.UsageError{Err: err}
	})
	cmd.AddCommand(newStepsCmd(opts))

	return cmd
}

// usageArgs reports positional argument errors as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &processing.UsageError{Err: err}
		}
		return nil
	}
}

func runRelease(cmd *cobra.Command, opts *options, releaseVersion string) error {
	if releaseVersion == "" {
		_ = cmd.Usage()
		return &processing.UsageError{Err: processing.ErrMissingVersion}
	}

	pipeline, err := loadPipeline(opts)
	if err != nil {
		return err
	}

	vars, err := loadVars(opts)
	if err != nil {
		return err
	}

	report, err := processing.RunPipeline(cmd.Context(), pipeline, processing.Options{
		Version: releaseVersion,
		DryRun:  opts.dryRun,
		Vars:    vars,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	slog.Info("release packaged", "packageName", report.PackageName, "ran", len(report.Ran()), "warnings", len(report.Warnings()))
	return nil
}

func loadPipeline(opts *options) (*api.Pipeline, error) {
	var (
		pipeline *api.Pipeline
		err      error
	)
	if opts.configFile == "" {
		slog.Info("using built-in pipeline")
		pipeline, err = api.DefaultPipeline()
	} else {
		slog.Info("loading pipeline", "filename", opts.configFile)
		pipeline, err = api.LoadPipeline(opts.configFile)
	}
	if err != nil {
		return nil, &configError{err: err}
	}

	if opts.rootOverride != "" {
		root, err := filepath.Abs(opts.rootOverride)
		if err != nil {
			return nil, &configError{err: fmt.Errorf("resolving root: %w", err)}
		}
		pipeline.Root = root
	}

	return pipeline, nil
}

func loadVars(opts *options) (map[string]any, error) {
	fileVars := map[string]any{}
	if opts.varsFile != "" {
		v, err := processing.LoadVarsFile(opts.varsFile)
		if err != nil {
			return nil, &configError{err: err}
		}
		fileVars = v
	}

	flagVars := make(map[string]any, len(opts.vars))
	for k, v := range opts.vars {
		flagVars[k] = v
	}

	return processing.MergeVars(fileVars, flagVars), nil
}

func includeEnv() error {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			return &dotenvError{err: err}
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
	return nil
}
