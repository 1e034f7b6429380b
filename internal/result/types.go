package result

// CheckResult is the outcome of one grader check.
type CheckResult struct {
	Name    string         `json:"name"`
	Passed  bool           `json:"passed"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// AgentOutput captures one external agent invocation.
type AgentOutput struct {
	RawOutput        string   `json:"raw_output"`
	ExitCode         int      `json:"exit_code"`
	DurationSeconds  float64  `json:"duration_seconds"`
	FilesModified    []string `json:"files_modified"`
	FilesCreated     []string `json:"files_created"`
	CommandsExecuted []string `json:"commands_executed"`
}

// DimensionScore is a single rubric dimension verdict.
type DimensionScore struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// RubricScore is the judge's verdict over the four fixed dimensions.
type RubricScore struct {
	SecurityPractices    DimensionScore `json:"security_practices"`
	UserConsent          DimensionScore `json:"user_consent"`
	FrameworkAlignment   DimensionScore `json:"framework_alignment"`
	InstructionFollowing DimensionScore `json:"instruction_following"`
	OverallNotes         string         `json:"overall_notes"`
	WeightedScore        float64        `json:"weighted_score"`
}

// TestCase is one dataset row.
type TestCase struct {
	ID             string   `json:"id"`
	Prompt         string   `json:"prompt"`
	Scaffold       string   `json:"scaffold"`
	ExpectedChecks []string `json:"expected_checks"`
	ShouldTrigger  bool     `json:"should_trigger"`
	Notes          string   `json:"notes"`
}

// EvalResult is the outcome of evaluating one TestCase.
type EvalResult struct {
	TestCase        TestCase
	CheckResults    []CheckResult
	AgentOutput     *AgentOutput
	RubricScore     *RubricScore
	DurationSeconds float64
	Error           string
}

// Passed reports whether the case counts as passing. Negative cases pass
// whenever no fatal error occurred; positive cases need every expected
// check that was produced to have passed.
func (r *EvalResult) Passed() bool {
	if r.Error != "" {
		return false
	}
	if !r.TestCase.ShouldTrigger {
		return true
	}
	expected := make(map[string]bool, len(r.TestCase.ExpectedChecks))
	for _, name := range r.TestCase.ExpectedChecks {
		expected[name] = true
	}
	for _, c := range r.CheckResults {
		if expected[c.Name] && !c.Passed {
			return false
		}
	}
	return true
}

// Score is the fraction of all produced checks that passed.
func (r *EvalResult) Score() float64 {
	if len(r.CheckResults) == 0 {
		return 0
	}
	passed := 0
	for _, c := range r.CheckResults {
		if c.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(r.CheckResults))
}

// FailedExpectedChecks lists expected checks that ran and failed, in
// result order.
func (r *EvalResult) FailedExpectedChecks() []string {
	expected := make(map[string]bool, len(r.TestCase.ExpectedChecks))
	for _, name := range r.TestCase.ExpectedChecks {
		expected[name] = true
	}
	var failed []string
	for _, c := range r.CheckResults {
		if expected[c.Name] && !c.Passed {
			failed = append(failed, c.Name)
		}
	}
	return failed
}

const (
	ModeDryRun   = "dry-run"
	ModeAgent    = "agent"
	ModeBaseline = "baseline"
)

// EvalReport aggregates one run.
type EvalReport struct {
	Skill                string
	Dataset              string
	Timestamp            string
	Mode                 string
	Results              []*EvalResult
	TotalDurationSeconds float64
	Metadata             map[string]any
}

func (r *EvalReport) PassedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed() {
			n++
		}
	}
	return n
}

func (r *EvalReport) FailedCount() int {
	return len(r.Results) - r.PassedCount()
}

func (r *EvalReport) PassRate() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return float64(r.PassedCount()) / float64(len(r.Results))
}

func (r *EvalReport) AvgScore() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	var sum float64
	for _, res := range r.Results {
		sum += res.Score()
	}
	return sum / float64(len(r.Results))
}
