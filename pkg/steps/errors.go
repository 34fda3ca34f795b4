package steps

import (
	"errors"
	"fmt"
)

var (
	ErrToolNotFound    = errors.New("tool not found")
	ErrToolDirNotFound = errors.New("tool directory not found")
	ErrProcessRunning  = errors.New("process is running")
	ErrArtifactMissing = errors.New("artifact missing")
)

// ExitError reports a tool that exited with a non-zero status.
type ExitError struct {
	Tool   string
	Code   int
	Stderr string // tail of the tool's stderr
	Err    error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }
