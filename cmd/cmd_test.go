package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/skilleval/internal/config"
	"github.com/signalnine/skilleval/internal/grader"
	"github.com/signalnine/skilleval/internal/judge"
	"github.com/signalnine/skilleval/internal/result"
)

type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T, extraConfig string) workspace {
	t.Helper()
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "scaffolds", "react-empty", "package.json"), `{"name": "app", "dependencies": {"react": "^18.2.0"}}`)
	mustWrite(t, filepath.Join(dir, "skills", "auth0-react", "SKILL.md"), "---\nname: auth0-react\ndescription: Add Auth0 to React apps\n---\n# Auth0 React\n")
	mustWrite(t, filepath.Join(dir, "dataset.csv"), strings.Join([]string{
		"id,prompt,scaffold,expected_checks,should_trigger,notes",
		"pos,Add Auth0 login,react-empty,sdk_installed,true,",
		"neg,Add a todo list,react-empty,,false,negative",
		"",
	}, "\n"))

	cfgPath := filepath.Join(dir, "skilleval.yaml")
	mustWrite(t, cfgPath, strings.Join([]string{
		"paths:",
		"  scaffolds: " + filepath.Join(dir, "scaffolds"),
		"  reports: " + filepath.Join(dir, "reports"),
		"  debug: " + filepath.Join(dir, "debug"),
		"  skills: " + filepath.Join(dir, "skills"),
		"log:",
		"  level: error",
		extraConfig,
	}, "\n"))
	return workspace{dir: dir, config: cfgPath}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestEvalDryRunWritesReport(t *testing.T) {
	ws := newWorkspace(t, "")
	out, err := execute(t, "eval", "--config", ws.config, "--skill", "auth0-react", "--dataset", filepath.Join(ws.dir, "dataset.csv"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "EVALUATION REPORT: auth0-react")
	assert.Contains(t, out, "Total tests: 2")
	assert.Contains(t, out, "[pos]")

	matches, err := filepath.Glob(filepath.Join(ws.dir, "reports", "scores-auth0-react-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	doc, err := result.ReadReport(filepath.Join(ws.dir, "reports", result.LatestLinkName(result.ModeDryRun, "auth0-react")))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.TotalTests)
	assert.Equal(t, 1, doc.Passed)

	out, err = execute(t, "report", "--config", ws.config, "--skill", "auth0-react")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Mode: dry-run")

	out, err = execute(t, "compare", "--config", ws.config, matches[0], matches[0])
	require.NoError(t, err, out)
	var cmp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cmp))
	assert.Equal(t, false, cmp["improved"])

	board := filepath.Join(ws.dir, "leaderboard.json")
	out, err = execute(t, "merge", "--config", ws.config, "-o", board, "--format", "markdown", matches[0])
	require.NoError(t, err, out)
	assert.Contains(t, out, "Merged 1 files into "+board)
	assert.Contains(t, out, "| 1 | auth0-react | dry-run | 2 |")
	assert.FileExists(t, board)
}

func TestEvalNoSaveWithTestIDs(t *testing.T) {
	ws := newWorkspace(t, "")
	out, err := execute(t, "eval", "--config", ws.config, "--skill", "auth0-react",
		"--dataset", filepath.Join(ws.dir, "dataset.csv"), "--no-save", "--test-id", "neg")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Total tests: 1")
	assert.NoDirExists(t, filepath.Join(ws.dir, "reports"))
}

func TestAgentCommandWithFakeCLI(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-claude")
	mustWrite(t, script, "#!/bin/sh\necho 'Running: npm install @auth0/auth0-react'\necho 'export {}' > auth.js\n")
	metricsPath := filepath.Join(dir, "metrics", "skilleval.prom")

	ws := newWorkspace(t, strings.Join([]string{
		"agent:",
		"  binary: " + script,
		"  args: []",
		"metrics:",
		"  textfile: " + metricsPath,
	}, "\n"))
	out, err := execute(t, "agent", "--config", ws.config, "--skill", "auth0-react",
		"--dataset", filepath.Join(ws.dir, "dataset.csv"), "--timeout", "30", "--debug")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Mode: agent")

	matches, err := filepath.Glob(filepath.Join(ws.dir, "reports", "agent-scores-auth0-react-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	doc, err := result.ReadReport(matches[0])
	require.NoError(t, err)
	require.NotNil(t, doc.Results[0].AgentOutput)
	assert.Contains(t, doc.Results[0].AgentOutput.FilesCreated, "auth.js")
	assert.Equal(t, "claude-code", doc.Metadata["agent_type"])

	assert.FileExists(t, metricsPath)
	runs, err := os.ReadDir(filepath.Join(ws.dir, "debug"))
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestEvalRequiresFlags(t *testing.T) {
	ws := newWorkspace(t, "")
	_, err := execute(t, "eval", "--config", ws.config, "--skill", "auth0-react")
	assert.Error(t, err)
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := execute(t, "list", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGradersCommand(t *testing.T) {
	ws := newWorkspace(t, "")
	trace := filepath.Join(ws.dir, "trace.json")
	mustWrite(t, trace, `{"commands": ["auth0 --version", {"command": "auth0 login"}], "outputs": []}`)

	out, err := execute(t, "graders", "--config", ws.config, "--skill", "auth0-quickstart", "--trace", trace)
	require.NoError(t, err, out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(grader.Auth0QuickstartChecks))

	out, err = execute(t, "graders", "--config", ws.config, "--skill", "auth0-react",
		"--project", filepath.Join(ws.dir, "scaffolds", "react-empty"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "[FAIL] ")

	_, err = execute(t, "graders", "--config", ws.config, "--skill", "nope")
	assert.ErrorIs(t, err, grader.ErrUnknownSkill)
}

func TestValidateCommand(t *testing.T) {
	ws := newWorkspace(t, "")
	out, err := execute(t, "validate", "--config", ws.config, "--skill", "auth0-react", "--dataset", filepath.Join(ws.dir, "dataset.csv"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 test cases OK")

	bad := filepath.Join(ws.dir, "bad.csv")
	mustWrite(t, bad, "id,prompt,scaffold,expected_checks\nx,y,missing-scaffold,made_up_check\n")
	_, err = execute(t, "validate", "--config", ws.config, "--skill", "auth0-react", "--dataset", bad)
	assert.ErrorContains(t, err, "1 of 1 test cases reference missing scaffolds")
}

func TestListCommand(t *testing.T) {
	ws := newWorkspace(t, "")
	out, err := execute(t, "list", "--config", ws.config)
	require.NoError(t, err, out)
	assert.Contains(t, out, "auth0-react [static]")
	assert.Contains(t, out, "auth0-quickstart [trace]")
	assert.Contains(t, out, "  - react-empty\n")
	assert.Contains(t, out, "  - auth0-react: Add Auth0 to React apps")
}

func TestNewAgentRunner(t *testing.T) {
	r, err := newAgentRunner(config.Agent{Type: config.AgentClaudeCode, Binary: "/opt/claude"})
	require.NoError(t, err)
	assert.Equal(t, "claude-code", r.Name())

	r, err = newAgentRunner(config.Agent{Type: config.AgentDocker, Image: "agent:latest"})
	require.NoError(t, err)
	assert.Equal(t, "docker", r.Name())

	_, err = newAgentRunner(config.Agent{Type: config.AgentDocker})
	assert.Error(t, err)
	_, err = newAgentRunner(config.Agent{Type: "cursor"})
	assert.ErrorContains(t, err, "unknown agent type")
}

func TestNewJudge(t *testing.T) {
	jc := config.Default().Judge
	jc.APIKeyEnv = "SKILLEVAL_TEST_NO_SUCH_KEY"
	_, err := newJudge(jc, "")
	assert.True(t, errors.Is(err, judge.ErrUnavailable))

	t.Setenv("SKILLEVAL_TEST_KEY", "sk-test")
	jc.APIKeyEnv = "SKILLEVAL_TEST_KEY"
	jc.Provider = config.ProviderOpenAI
	j, err := newJudge(jc, "")
	require.NoError(t, err)
	assert.NotNil(t, j)

	_, err = newJudge(jc, filepath.Join(t.TempDir(), "missing-rubric.yaml"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, judge.ErrUnavailable))
}
