// Package report reads persisted evaluation reports back and derives
// comparisons, leaderboards and console summaries from them.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/skilleval/internal/result"
)

// ScoreChangeThreshold is the score delta above which a case whose
// pass/fail state did not move is still reported.
const ScoreChangeThreshold = 0.1

const (
	ChangeImproved    = "improved"
	ChangeRegressed   = "regressed"
	ChangeScoreChange = "score_change"

	PresenceAdded   = "added"
	PresenceRemoved = "removed"
)

type Side struct {
	Path      string  `json:"path"`
	Timestamp string  `json:"timestamp"`
	Mode      string  `json:"mode"`
	PassRate  float64 `json:"pass_rate"`
	AvgScore  float64 `json:"avg_score"`
}

type Change struct {
	TestCaseID string  `json:"test_case_id"`
	WasPassing bool    `json:"was_passing"`
	NowPassing bool    `json:"now_passing"`
	ScoreDelta float64 `json:"score_delta"`
	Change     string  `json:"change"`
	// Presence is set when the case exists in only one of the reports.
	Presence string `json:"presence,omitempty"`
}

type Comparison struct {
	ReportA       Side     `json:"report_a"`
	ReportB       Side     `json:"report_b"`
	PassRateDelta float64  `json:"pass_rate_delta"`
	AvgScoreDelta float64  `json:"avg_score_delta"`
	Improved      bool     `json:"improved"`
	Regressed     bool     `json:"regressed"`
	Changes       []Change `json:"changes"`
}

// Compare loads two reports from disk; B is treated as the newer one.
func Compare(pathA, pathB string) (*Comparison, error) {
	a, err := result.ReadReport(pathA)
	if err != nil {
		return nil, err
	}
	b, err := result.ReadReport(pathB)
	if err != nil {
		return nil, err
	}
	return CompareDocuments(pathA, a, pathB, b), nil
}

// CompareDocuments diffs two loaded reports. Cases are visited in A's
// order followed by cases only B has. A case missing on one side counts
// as not passed with score 0 there.
func CompareDocuments(pathA string, a *result.ReportDocument, pathB string, b *result.ReportDocument) *Comparison {
	c := &Comparison{
		ReportA:       side(pathA, a),
		ReportB:       side(pathB, b),
		PassRateDelta: b.PassRate - a.PassRate,
		AvgScoreDelta: b.AvgScore - a.AvgScore,
		Improved:      b.PassRate > a.PassRate,
		Regressed:     b.PassRate < a.PassRate,
		Changes:       []Change{},
	}

	byA, orderA := index(a.Results)
	byB, orderB := index(b.Results)
	ids := orderA
	for _, id := range orderB {
		if _, ok := byA[id]; !ok {
			ids = append(ids, id)
		}
	}

	for _, id := range ids {
		ra, inA := byA[id]
		rb, inB := byB[id]
		delta := rb.Score - ra.Score
		if ra.Passed == rb.Passed && math.Abs(delta) <= ScoreChangeThreshold {
			continue
		}
		ch := Change{
			TestCaseID: id,
			WasPassing: ra.Passed,
			NowPassing: rb.Passed,
			ScoreDelta: delta,
			Change:     ChangeScoreChange,
		}
		switch {
		case rb.Passed && !ra.Passed:
			ch.Change = ChangeImproved
		case ra.Passed && !rb.Passed:
			ch.Change = ChangeRegressed
		}
		switch {
		case !inA:
			ch.Presence = PresenceAdded
		case !inB:
			ch.Presence = PresenceRemoved
		}
		c.Changes = append(c.Changes, ch)
	}
	return c
}

func side(path string, d *result.ReportDocument) Side {
	mode := d.Mode
	if mode == "" {
		mode = "unknown"
	}
	return Side{Path: path, Timestamp: d.Timestamp, Mode: mode, PassRate: d.PassRate, AvgScore: d.AvgScore}
}

// index keeps the last record per id and the order ids first appear in.
func index(records []result.CaseRecord) (map[string]result.CaseRecord, []string) {
	by := make(map[string]result.CaseRecord, len(records))
	var order []string
	for _, r := range records {
		if _, seen := by[r.TestCaseID]; !seen {
			order = append(order, r.TestCaseID)
		}
		by[r.TestCaseID] = r
	}
	return by, order
}

// WriteComparison renders c as "json" (default) or "table".
func WriteComparison(w io.Writer, c *Comparison, format string) error {
	if format != "table" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REPORT\tTIMESTAMP\tMODE\tPASS RATE\tAVG SCORE")
	fmt.Fprintf(tw, "A\t%s\t%s\t%.1f%%\t%.2f\n", c.ReportA.Timestamp, c.ReportA.Mode, c.ReportA.PassRate*100, c.ReportA.AvgScore)
	fmt.Fprintf(tw, "B\t%s\t%s\t%.1f%%\t%.2f\n", c.ReportB.Timestamp, c.ReportB.Mode, c.ReportB.PassRate*100, c.ReportB.AvgScore)
	fmt.Fprintf(tw, "DELTA\t\t\t%+.1f%%\t%+.2f\n", c.PassRateDelta*100, c.AvgScoreDelta)
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(c.Changes) == 0 {
		fmt.Fprintln(w, "\nNo per-case changes.")
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST CASE\tCHANGE\tWAS\tNOW\tSCORE DELTA\tPRESENCE")
	fmt.Fprintln(tw, strings.Repeat("-", 64))
	for _, ch := range c.Changes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%+.2f\t%s\n",
			ch.TestCaseID, ch.Change, passFail(ch.WasPassing), passFail(ch.NowPassing), ch.ScoreDelta, ch.Presence)
	}
	return tw.Flush()
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
