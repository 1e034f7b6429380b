package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/skilleval/internal/result"
)

type LeaderboardEntry struct {
	Skill      string  `json:"skill"`
	Mode       string  `json:"mode"`
	PassRate   float64 `json:"pass_rate"`
	AvgScore   float64 `json:"avg_score"`
	TotalTests int     `json:"total_tests"`
	Timestamp  string  `json:"timestamp"`
	Source     string  `json:"source"`
}

type Leaderboard struct {
	Entries []LeaderboardEntry `json:"leaderboard"`
}

// Merge keeps one entry per (skill, mode), the first one seen in paths,
// and orders the result by average score, highest first. Ties keep input
// order.
func Merge(paths []string) ([]LeaderboardEntry, error) {
	seen := map[string]bool{}
	entries := []LeaderboardEntry{}
	for _, p := range paths {
		doc, err := result.ReadReport(p)
		if err != nil {
			return nil, err
		}
		skill, mode := orUnknown(doc.Skill), orUnknown(doc.Mode)
		key := skill + "\x00" + mode
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, LeaderboardEntry{
			Skill:      skill,
			Mode:       mode,
			PassRate:   doc.PassRate,
			AvgScore:   doc.AvgScore,
			TotalTests: doc.TotalTests,
			Timestamp:  doc.Timestamp,
			Source:     p,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AvgScore > entries[j].AvgScore
	})
	return entries, nil
}

// WriteLeaderboard persists entries as {"leaderboard": [...]}.
func WriteLeaderboard(path string, entries []LeaderboardEntry) error {
	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	return result.WriteJSON(path, Leaderboard{Entries: entries})
}

// RenderLeaderboard writes entries as "table" (default), "markdown" or
// "json".
func RenderLeaderboard(w io.Writer, entries []LeaderboardEntry, format string) error {
	switch format {
	case "markdown":
		return writeMarkdown(entries, w)
	case "json":
		return writeJSON(entries, w)
	default:
		return writeTable(entries, w)
	}
}

func writeTable(entries []LeaderboardEntry, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSKILL\tMODE\tTESTS\tPASS RATE\tAVG SCORE\tTIMESTAMP")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.0f%%\t%.2f\t%s\n",
			i+1, e.Skill, e.Mode, e.TotalTests, e.PassRate*100, e.AvgScore, e.Timestamp)
	}
	return tw.Flush()
}

func writeMarkdown(entries []LeaderboardEntry, w io.Writer) error {
	fmt.Fprintln(w, "| Rank | Skill | Mode | Tests | Pass Rate | Avg Score | Timestamp |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|")
	for i, e := range entries {
		fmt.Fprintf(w, "| %d | %s | %s | %d | %.0f%% | %.2f | %s |\n",
			i+1, e.Skill, e.Mode, e.TotalTests, e.PassRate*100, e.AvgScore, e.Timestamp)
	}
	return nil
}

func writeJSON(entries []LeaderboardEntry, w io.Writer) error {
	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Leaderboard{Entries: entries})
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
