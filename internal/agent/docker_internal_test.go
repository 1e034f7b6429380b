package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/skilleval/internal/docker"
)

func TestDockerRunnerMapsContainerResult(t *testing.T) {
	work := t.TempDir()
	var got *docker.RunOpts
	r := NewDockerRunner("agent:latest")
	r.Env = map[string]string{"ANTHROPIC_API_KEY": "k"}
	r.run = func(_ context.Context, opts *docker.RunOpts) (*docker.RunResult, error) {
		got = opts
		require.NoError(t, os.WriteFile(filepath.Join(work, "out.txt"), []byte("x"), 0o644))
		return &docker.RunResult{ExitCode: 0, Duration: 2 * time.Second, Logs: "$ auth0 login\nok\n"}, nil
	}

	out, err := r.Run(context.Background(), Request{Prompt: "p", WorkDir: work, Skill: "auth0-quickstart"})
	require.NoError(t, err)
	assert.Equal(t, "agent:latest", got.Image)
	assert.Equal(t, DefaultTimeout, got.Timeout)
	assert.Equal(t, ComposePrompt("p", "auth0-quickstart"), got.Env["TASK_PROMPT"])
	assert.Equal(t, "k", got.Env["ANTHROPIC_API_KEY"])
	assert.Equal(t, []string{"out.txt"}, out.FilesCreated)
	assert.Equal(t, []string{"auth0 login"}, out.CommandsExecuted)
	assert.Equal(t, 2.0, out.DurationSeconds)
}

func TestDockerRunnerTimeout(t *testing.T) {
	r := NewDockerRunner("agent:latest")
	r.run = func(context.Context, *docker.RunOpts) (*docker.RunResult, error) {
		return &docker.RunResult{ExitCode: -1, TimedOut: true, Duration: 3 * time.Second}, nil
	}
	out, err := r.Run(context.Background(), Request{Prompt: "p", WorkDir: t.TempDir(), Skill: "s", Timeout: 3 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, TimeoutExitCode, out.ExitCode)
	assert.Equal(t, "Timeout after 3s", out.RawOutput)
}
