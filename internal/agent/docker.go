package agent

import (
	"context"
	"fmt"
	"os"

	"github.com/signalnine/skilleval/internal/docker"
	"github.com/signalnine/skilleval/internal/log"
	"github.com/signalnine/skilleval/internal/result"
)

// DockerRunner runs the agent inside a container image. The image receives
// the composed prompt in TASK_PROMPT and the project at /workspace.
type DockerRunner struct {
	Image       string
	Command     []string
	Env         map[string]string
	CPULimit    float64
	MemoryLimit int64

	run func(context.Context, *docker.RunOpts) (*docker.RunResult, error)
}

func NewDockerRunner(image string) *DockerRunner {
	return &DockerRunner{Image: image, run: docker.RunContainer}
}

func (r *DockerRunner) Name() string { return "docker" }

func (r *DockerRunner) Run(ctx context.Context, req Request) (*result.AgentOutput, error) {
	timeout := req.timeout()
	before, err := TakeSnapshot(req.WorkDir)
	if err != nil {
		return nil, err
	}

	env := map[string]string{
		"TASK_DIR":    docker.WorkspaceTarget,
		"TASK_PROMPT": ComposePrompt(req.Prompt, req.Skill),
		"TASK_SKILL":  req.Skill,
	}
	for k, v := range r.Env {
		env[k] = v
	}

	run := r.run
	if run == nil {
		run = docker.RunContainer
	}
	res, err := run(ctx, &docker.RunOpts{
		Image:       r.Image,
		Command:     r.Command,
		WorkDir:     req.WorkDir,
		Env:         env,
		Timeout:     timeout,
		CPULimit:    r.CPULimit,
		MemoryLimit: r.MemoryLimit,
		UserID:      fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
	})
	if err != nil {
		return nil, fmt.Errorf("running agent container: %w", err)
	}
	if res.TimedOut {
		log.Warnf("agent container timed out after %s", timeout)
		return timeoutOutput(timeout, res.Duration), nil
	}

	after, err := TakeSnapshot(req.WorkDir)
	if err != nil {
		return nil, err
	}
	created, modified := Diff(before, after)
	return &result.AgentOutput{
		RawOutput:        res.Logs,
		ExitCode:         res.ExitCode,
		DurationSeconds:  res.Duration.Seconds(),
		FilesModified:    modified,
		FilesCreated:     created,
		CommandsExecuted: ExtractCommands(res.Logs),
	}, nil
}
