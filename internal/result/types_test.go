package result_test

import (
	"testing"

	"github.com/signalnine/skilleval/internal/result"
)

func checks(pairs ...any) []result.CheckResult {
	var out []result.CheckResult
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, result.CheckResult{Name: pairs[i].(string), Passed: pairs[i+1].(bool)})
	}
	return out
}

func TestEvalResultPassed(t *testing.T) {
	tests := []struct {
		name string
		res  result.EvalResult
		want bool
	}{
		{
			name: "error always fails",
			res: result.EvalResult{
				TestCase: result.TestCase{ShouldTrigger: false},
				Error:    "boom",
			},
			want: false,
		},
		{
			name: "negative case passes regardless of checks",
			res: result.EvalResult{
				TestCase:     result.TestCase{ShouldTrigger: false, ExpectedChecks: []string{"a"}},
				CheckResults: checks("a", false),
			},
			want: true,
		},
		{
			name: "failed unexpected check ignored",
			res: result.EvalResult{
				TestCase:     result.TestCase{ShouldTrigger: true, ExpectedChecks: []string{"a"}},
				CheckResults: checks("a", true, "b", false),
			},
			want: true,
		},
		{
			name: "failed expected check fails",
			res: result.EvalResult{
				TestCase:     result.TestCase{ShouldTrigger: true, ExpectedChecks: []string{"a", "b"}},
				CheckResults: checks("a", true, "b", false),
			},
			want: false,
		},
		{
			name: "expected check never produced does not fail",
			res: result.EvalResult{
				TestCase:     result.TestCase{ShouldTrigger: true, ExpectedChecks: []string{"zzz"}},
				CheckResults: checks("a", true),
			},
			want: true,
		},
		{
			name: "no checks at all passes",
			res:  result.EvalResult{TestCase: result.TestCase{ShouldTrigger: true}},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.res.Passed(); got != tt.want {
				t.Errorf("Passed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvalResultScore(t *testing.T) {
	r := result.EvalResult{CheckResults: checks("a", true, "b", false, "c", true, "d", true)}
	if got := r.Score(); got != 0.75 {
		t.Errorf("Score() = %f, want 0.75", got)
	}
	empty := result.EvalResult{}
	if got := empty.Score(); got != 0 {
		t.Errorf("empty Score() = %f, want 0", got)
	}
}

func TestFailedExpectedChecks(t *testing.T) {
	r := result.EvalResult{
		TestCase:     result.TestCase{ExpectedChecks: []string{"b", "c"}},
		CheckResults: checks("a", false, "b", false, "c", true),
	}
	got := r.FailedExpectedChecks()
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("FailedExpectedChecks() = %v, want [b]", got)
	}
}

func TestEvalReportAggregates(t *testing.T) {
	empty := &result.EvalReport{}
	if empty.PassRate() != 0 || empty.AvgScore() != 0 {
		t.Errorf("empty report should report zero rates")
	}

	rep := &result.EvalReport{Results: []*result.EvalResult{
		{TestCase: result.TestCase{ShouldTrigger: true, ExpectedChecks: []string{"a"}}, CheckResults: checks("a", true)},
		{TestCase: result.TestCase{ShouldTrigger: true, ExpectedChecks: []string{"a"}}, CheckResults: checks("a", false)},
		{Error: "x"},
		{TestCase: result.TestCase{ShouldTrigger: false}, CheckResults: checks("a", true, "b", false)},
	}}
	if rep.PassedCount() != 2 || rep.FailedCount() != 2 {
		t.Errorf("counts: passed=%d failed=%d", rep.PassedCount(), rep.FailedCount())
	}
	if rep.PassRate() != 0.5 {
		t.Errorf("PassRate() = %f, want 0.5", rep.PassRate())
	}
	if rep.AvgScore() != 0.375 {
		t.Errorf("AvgScore() = %f, want 0.375", rep.AvgScore())
	}
}
