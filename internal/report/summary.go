package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/signalnine/skilleval/internal/result"
)

const rule = "============================================================"

// PrintSummary writes the human-readable run summary: totals, the average
// judge score when any case was scored, and why each failed case failed.
func PrintSummary(w io.Writer, doc *result.ReportDocument, colorize bool) {
	green := palette(color.FgGreen, colorize)
	red := palette(color.FgRed, colorize)
	bold := palette(color.Bold, colorize)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "EVALUATION REPORT: %s\n", bold.Sprint(doc.Skill))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Mode: %s\n", doc.Mode)
	fmt.Fprintf(w, "Dataset: %s\n", doc.Dataset)
	fmt.Fprintf(w, "Timestamp: %s\n", doc.Timestamp)
	fmt.Fprintf(w, "Total tests: %d\n", doc.TotalTests)
	fmt.Fprintf(w, "Passed: %s\n", green.Sprint(doc.Passed))
	fmt.Fprintf(w, "Failed: %s\n", red.Sprint(doc.Failed))
	fmt.Fprintf(w, "Pass rate: %.1f%%\n", doc.PassRate*100)
	fmt.Fprintf(w, "Avg score: %.2f\n", doc.AvgScore)
	fmt.Fprintf(w, "Total duration: %.1fs\n", doc.TotalDurationSeconds)
	fmt.Fprintln(w, rule)

	if avg, ok := AvgRubricScore(doc); ok {
		fmt.Fprintln(w, "\nRubric Scores (LLM-as-judge):")
		fmt.Fprintf(w, "  Average weighted score: %.2f/5.0\n", avg)
	}

	var failed []result.CaseRecord
	for _, r := range doc.Results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return
	}
	fmt.Fprintln(w, "\n"+red.Sprint("Failed tests:"))
	for _, r := range failed {
		fmt.Fprintf(w, "  - [%s] %s\n", r.TestCaseID, preview(r.Prompt, 40))
		if r.Error != nil {
			fmt.Fprintf(w, "    Error: %s\n", *r.Error)
			continue
		}
		if names := r.Result().FailedExpectedChecks(); len(names) > 0 {
			fmt.Fprintf(w, "    Failed checks: %s\n", strings.Join(names, ", "))
		}
	}
}

// AvgRubricScore averages the weighted judge score over scored cases.
func AvgRubricScore(doc *result.ReportDocument) (float64, bool) {
	var sum float64
	n := 0
	for _, r := range doc.Results {
		if r.RubricScore != nil {
			sum += r.RubricScore.WeightedScore
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// PrintChecks lists grader results one per line.
func PrintChecks(w io.Writer, checks []result.CheckResult, colorize bool) {
	green := palette(color.FgGreen, colorize)
	red := palette(color.FgRed, colorize)
	for _, c := range checks {
		status := green.Sprint("PASS")
		if !c.Passed {
			status = red.Sprint("FAIL")
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", status, c.Name, c.Message)
	}
}

func palette(attr color.Attribute, enabled bool) *color.Color {
	c := color.New(attr)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
