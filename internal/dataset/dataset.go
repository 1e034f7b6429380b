// Package dataset reads test cases from CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/signalnine/skilleval/internal/result"
)

var requiredColumns = []string{"id", "prompt", "scaffold"}

var validate = validator.New()

type row struct {
	ID       string `validate:"required"`
	Prompt   string `validate:"required"`
	Scaffold string `validate:"required"`
}

func Load(path string) ([]result.TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()
	cases, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return cases, nil
}

// Parse reads a CSV with a header row. Columns may appear in any order;
// unknown columns are ignored.
func Parse(r io.Reader) ([]result.TestCase, error) {
	cr := csv.NewReader(r)
	// Trailing optional cells may be omitted.
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty dataset")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	get := func(rec []string, name string) (string, bool) {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return "", false
		}
		return rec[i], true
	}

	var cases []result.TestCase
	seen := map[string]int{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		id, _ := get(rec, "id")
		prompt, _ := get(rec, "prompt")
		scaffold, _ := get(rec, "scaffold")
		rw := row{ID: strings.TrimSpace(id), Prompt: prompt, Scaffold: strings.TrimSpace(scaffold)}
		if err := validate.Struct(rw); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if prev, dup := seen[rw.ID]; dup {
			return nil, fmt.Errorf("line %d: duplicate id %q (first on line %d)", line, rw.ID, prev)
		}
		seen[rw.ID] = line

		tc := result.TestCase{
			ID:             rw.ID,
			Prompt:         rw.Prompt,
			Scaffold:       rw.Scaffold,
			ExpectedChecks: []string{},
			ShouldTrigger:  true,
		}
		if v, ok := get(rec, "expected_checks"); ok {
			tc.ExpectedChecks = SplitChecks(v)
		}
		if v, ok := get(rec, "should_trigger"); ok {
			tc.ShouldTrigger = strings.EqualFold(strings.TrimSpace(v), "true")
		}
		if v, ok := get(rec, "notes"); ok {
			tc.Notes = v
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// SplitChecks splits a comma list, trimming and dropping empty names.
func SplitChecks(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Filter keeps cases whose id is in ids, in dataset order. An empty ids
// keeps everything. Ids that matched nothing are returned as missing.
func Filter(cases []result.TestCase, ids []string) (kept []result.TestCase, missing []string) {
	if len(ids) == 0 {
		return cases, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	found := map[string]bool{}
	for _, tc := range cases {
		if want[tc.ID] {
			kept = append(kept, tc)
			found[tc.ID] = true
		}
	}
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return kept, missing
}
