package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"

	"github.com/signalnine/skilleval/internal/log"
	"github.com/signalnine/skilleval/internal/result"
)

// CLIRunner runs a locally installed agent CLI as a subprocess.
type CLIRunner struct {
	Binary string
	// Args go between the binary and "-p <prompt>".
	Args []string
}

func NewCLIRunner() *CLIRunner {
	return &CLIRunner{
		Binary: "claude",
		Args:   []string{"--print", "--dangerously-skip-permissions"},
	}
}

func (r *CLIRunner) Name() string { return "claude-code" }

func (r *CLIRunner) BuildCommandArgs(prompt string) []string {
	args := append([]string(nil), r.Args...)
	return append(args, "-p", prompt)
}

func (r *CLIRunner) Run(ctx context.Context, req Request) (*result.AgentOutput, error) {
	timeout := req.timeout()
	before, err := TakeSnapshot(req.WorkDir)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.Binary, r.BuildCommandArgs(ComposePrompt(req.Prompt, req.Skill))...)
	cmd.Dir = req.WorkDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	log.Debugf("running %s in %s (timeout %s)", r.Binary, req.WorkDir, timeout)
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, fs.ErrNotExist) {
		return &result.AgentOutput{
			RawOutput:        fmt.Sprintf("Error: '%s' command not found. Install Claude Code CLI.", r.Binary),
			ExitCode:         TimeoutExitCode,
			DurationSeconds:  elapsed.Seconds(),
			FilesModified:    []string{},
			FilesCreated:     []string{},
			CommandsExecuted: []string{},
		}, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("agent run interrupted: %w", ctx.Err())
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		log.Warnf("agent timed out after %s", timeout)
		return timeoutOutput(timeout, elapsed), nil
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("running %s: %w", r.Binary, runErr)
		}
		exitCode = exitErr.ExitCode()
	}

	after, err := TakeSnapshot(req.WorkDir)
	if err != nil {
		return nil, err
	}
	created, modified := Diff(before, after)

	return &result.AgentOutput{
		RawOutput:        stdout.String() + stderr.String(),
		ExitCode:         exitCode,
		DurationSeconds:  elapsed.Seconds(),
		FilesModified:    modified,
		FilesCreated:     created,
		CommandsExecuted: ExtractCommands(stdout.String()),
	}, nil
}
