package processing

import (
	"fmt"
	"log/slog"
	"os"
)

// enterDir changes the process working directory to dir. The returned
// function changes it back and must be called on every exit path.
func enterDir(dir string) (func() error, error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("checking build root: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("build root %s is not a directory", dir)
	}

	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("changing to build root: %w", err)
	}
	slog.Info("entered build root", "dir", dir)

	return func() error {
		if err := os.Chdir(prev); err != nil {
			return fmt.Errorf("restoring working directory %s: %w", prev, err)
		}
		slog.Info("restored working directory", "dir", prev)
		return nil
	}, nil
}
