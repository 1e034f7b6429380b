package grader

import (
	"encoding/json"
	"fmt"

	"github.com/signalnine/skilleval/internal/result"
)

type Command struct {
	Command string `json:"command"`
	Output  string `json:"output,omitempty"`
}

// ExecutionTrace records what an agent observably did. It is not modified
// after construction.
type ExecutionTrace struct {
	Commands      []Command         `json:"commands"`
	FilesModified []string          `json:"files_modified"`
	FilesCreated  []string          `json:"files_created"`
	EnvVarsSet    map[string]string `json:"env_vars_set"`
	Outputs       []string          `json:"outputs"`
}

// UnmarshalJSON accepts each command either as a bare string or as an
// object with a "command" key.
func (c *Command) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Command = s
		return nil
	}
	type plain Command
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding command: %w", err)
	}
	*c = Command(p)
	return nil
}

// ParseTrace decodes a hand-written trace document.
func ParseTrace(data []byte) (*ExecutionTrace, error) {
	var tr ExecutionTrace
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("parsing trace: %w", err)
	}
	return &tr, nil
}

// TraceFromAgentOutput builds a trace from an agent run. Env vars are not
// observable from the outside so the map stays empty.
func TraceFromAgentOutput(out *result.AgentOutput) *ExecutionTrace {
	tr := &ExecutionTrace{EnvVarsSet: map[string]string{}}
	if out == nil {
		return tr
	}
	for _, c := range out.CommandsExecuted {
		tr.Commands = append(tr.Commands, Command{Command: c})
	}
	tr.FilesModified = append([]string(nil), out.FilesModified...)
	tr.FilesCreated = append([]string(nil), out.FilesCreated...)
	tr.Outputs = []string{out.RawOutput}
	return tr
}
