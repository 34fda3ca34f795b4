package steps

import (
	"context"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"

	"github.com/systemstart/release-pipeline/pkg/api"
)

type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

func withProcesses(t *testing.T, procs ...ps.Process) {
	t.Helper()
	orig := listProcesses
	listProcesses = func() ([]ps.Process, error) { return procs, nil }
	t.Cleanup(func() { listProcesses = orig })
}

func TestProcessStep_NotRunning(t *testing.T) {
	withProcesses(t, fakeProcess{10, "explorer.exe"}, fakeProcess{11, "node.exe"})

	step := NewProcessStep("check-app-not-running", &api.ProcessConfig{Names: []string{"{{ .AppName }}.exe"}})
	_, err := step.Run(context.Background(), StepContext{TemplateData: templateData()})
	require.NoError(t, err)
}

func TestProcessStep_Running(t *testing.T) {
	withProcesses(t, fakeProcess{10, "explorer.exe"}, fakeProcess{42, "gold.EXE"})

	step := NewProcessStep("check-app-not-running", &api.ProcessConfig{Names: []string{"{{ .AppName }}.exe"}})
	result, err := step.Run(context.Background(), StepContext{TemplateData: templateData()})
	require.ErrorIs(t, err, ErrProcessRunning)
	require.Equal(t, []string{"gold.EXE (pid 42)"}, result.Output)
}

func TestProcessStep_RealProcessList(t *testing.T) {
	step := NewProcessStep("check-app-not-running", &api.ProcessConfig{Names: []string{"no-such-release-app.exe"}})
	_, err := step.Run(context.Background(), StepContext{TemplateData: templateData()})
	require.NoError(t, err)
}
