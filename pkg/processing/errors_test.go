package processing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepError(t *testing.T) {
	cause := errors.New("npm exited with code 1")

	err := &StepError{Step: "build", ExitCode: 1, Message: "build failed", Err: cause}
	require.Equal(t, `build failed (step "build"): npm exited with code 1`, err.Error())
	require.ErrorIs(t, err, cause)

	err = &StepError{Step: "package", ExitCode: 2, Err: cause}
	require.Equal(t, `step "package" failed: npm exited with code 1`, err.Error())
}

func TestUsageError(t *testing.T) {
	err := &UsageError{Err: ErrMissingVersion}
	require.Equal(t, "usage: version is required", err.Error())
	require.ErrorIs(t, err, ErrMissingVersion)
}
