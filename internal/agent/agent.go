// Package agent drives an external coding agent inside a working directory
// and reports what it did.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/signalnine/skilleval/internal/result"
)

const DefaultTimeout = 300 * time.Second

// TimeoutExitCode marks runs that did not produce a process exit status.
const TimeoutExitCode = -1

// Runner executes one agent invocation. The returned error is reserved for
// harness failures; agent-side problems are reported through AgentOutput.
type Runner interface {
	Name() string
	Run(ctx context.Context, req Request) (*result.AgentOutput, error)
}

type Request struct {
	Prompt  string
	WorkDir string
	Skill   string
	Timeout time.Duration
}

func (r Request) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// ComposePrompt appends the skill hint to the user prompt.
func ComposePrompt(prompt, skill string) string {
	return fmt.Sprintf("%s\n\nUse the %s skill to complete this task.", prompt, skill)
}

func timeoutOutput(timeout, elapsed time.Duration) *result.AgentOutput {
	return &result.AgentOutput{
		RawOutput:        fmt.Sprintf("Timeout after %ds", int(timeout.Seconds())),
		ExitCode:         TimeoutExitCode,
		DurationSeconds:  elapsed.Seconds(),
		FilesModified:    []string{},
		FilesCreated:     []string{},
		CommandsExecuted: []string{},
	}
}
