package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/signalnine/skilleval/internal/agent"
	"github.com/signalnine/skilleval/internal/log"
	"github.com/signalnine/skilleval/internal/result"
	"github.com/signalnine/skilleval/internal/scaffold"
)

// DebugWriter keeps per-case artifacts of a run for later inspection.
// Failures to write are logged and otherwise ignored.
type DebugWriter struct {
	Root string
	dir  string
}

func NewDebugWriter(root string) *DebugWriter {
	return &DebugWriter{Root: root}
}

// Begin selects <root>/<skill>-<timestamp> as the run directory.
func (d *DebugWriter) Begin(skill, timestamp string) string {
	d.dir = filepath.Join(d.Root, fmt.Sprintf("%s-%s", skill, timestamp))
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		log.Warnf("creating debug dir: %v", err)
	}
	return d.dir
}

func (d *DebugWriter) Dir() string {
	return d.dir
}

// CaseDir is where artifacts for test case id land.
func (d *DebugWriter) CaseDir(id string) string {
	return filepath.Join(d.dir, "case-"+id)
}

// SaveCase writes the case definition, grader results, agent output, rubric
// score and a copy of projectDir without VCS or dependency directories.
func (d *DebugWriter) SaveCase(res *result.EvalResult, projectDir string) {
	if d.dir == "" {
		d.dir = d.Root
	}
	caseDir := d.CaseDir(res.TestCase.ID)
	if err := os.MkdirAll(caseDir, 0o755); err != nil {
		log.Warnf("creating debug case dir: %v", err)
		return
	}

	d.writeJSON(caseDir, "test_case.json", testCaseDoc(res.TestCase))
	checks := res.CheckResults
	if checks == nil {
		checks = []result.CheckResult{}
	}
	d.writeJSON(caseDir, "grader_results.json", checks)

	if res.AgentOutput != nil {
		if err := os.WriteFile(filepath.Join(caseDir, "agent_output.txt"), []byte(res.AgentOutput.RawOutput), 0o644); err != nil {
			log.Warnf("writing debug agent_output.txt: %v", err)
		}
		d.writeJSON(caseDir, "agent_output.json", res.AgentOutput)
	}
	if res.RubricScore != nil {
		d.writeJSON(caseDir, "rubric_score.json", res.RubricScore)
	}

	if projectDir == "" {
		return
	}
	if _, err := os.Stat(projectDir); err != nil {
		return
	}
	projectCopy := filepath.Join(caseDir, "project")
	os.RemoveAll(projectCopy)
	if err := scaffold.CopyTree(projectDir, projectCopy, agent.SkipDirs); err != nil {
		log.Warnf("copying project into debug dir: %v", err)
	}
}

func (d *DebugWriter) writeJSON(dir, name string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warnf("encoding debug %s: %v", name, err)
		return
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		log.Warnf("writing debug %s: %v", name, err)
	}
}

func testCaseDoc(tc result.TestCase) result.TestCase {
	if tc.ExpectedChecks == nil {
		tc.ExpectedChecks = []string{}
	}
	return tc
}
