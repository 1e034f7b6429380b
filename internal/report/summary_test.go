package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signalnine/skilleval/internal/report"
	"github.com/signalnine/skilleval/internal/result"
)

func TestPrintSummary(t *testing.T) {
	errMsg := "copying scaffold: scaffold not found: nope"
	doc := &result.ReportDocument{
		Skill: "auth0-react", Mode: "agent", Dataset: "ds.csv", Timestamp: "20250101-000000",
		TotalTests: 3, Passed: 1, Failed: 2, PassRate: 1.0 / 3.0, AvgScore: 0.5,
		Results: []result.CaseRecord{
			{TestCaseID: "ok", Passed: true, RubricScore: &result.RubricScore{WeightedScore: 4}},
			{
				TestCaseID:     "bad",
				Prompt:         "Add Auth0 login to this React application please, with logout",
				ExpectedChecks: []string{"sdk_installed", "provider_configured"},
				ShouldTrigger:  true,
				GraderResults: []result.CheckResult{
					{Name: "sdk_installed", Passed: false},
					{Name: "provider_configured", Passed: true},
					{Name: "no_hardcoded_secrets", Passed: false},
				},
				RubricScore: &result.RubricScore{WeightedScore: 3},
			},
			{TestCaseID: "err", Prompt: "short", Error: &errMsg},
		},
	}

	var buf bytes.Buffer
	report.PrintSummary(&buf, doc, false)
	out := buf.String()

	assert.Contains(t, out, "EVALUATION REPORT: auth0-react")
	assert.Contains(t, out, "Pass rate: 33.3%")
	assert.Contains(t, out, "Average weighted score: 3.50/5.0")
	assert.Contains(t, out, "  - [bad] Add Auth0 login to this React applicatio...")
	assert.Contains(t, out, "    Failed checks: sdk_installed\n")
	assert.Contains(t, out, "  - [err] short\n    Error: "+errMsg)
	assert.NotContains(t, out, "\x1b[")
}

func TestPrintSummaryNoRubricNoFailures(t *testing.T) {
	doc := &result.ReportDocument{Skill: "s", TotalTests: 1, Passed: 1, PassRate: 1,
		Results: []result.CaseRecord{{TestCaseID: "a", Passed: true}}}
	var buf bytes.Buffer
	report.PrintSummary(&buf, doc, false)
	assert.NotContains(t, buf.String(), "Rubric Scores")
	assert.NotContains(t, buf.String(), "Failed tests")
}

func TestPrintChecks(t *testing.T) {
	var buf bytes.Buffer
	report.PrintChecks(&buf, []result.CheckResult{
		{Name: "sdk_installed", Passed: true, Message: "ok"},
		{Name: "env_configured", Passed: false, Message: "missing"},
	}, false)
	assert.Equal(t, "[PASS] sdk_installed: ok\n[FAIL] env_configured: missing\n", buf.String())
}
