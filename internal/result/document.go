package result

// ReportDocument is the persisted form of an EvalReport. Comparison and
// merge only ever read this shape back from disk.
type ReportDocument struct {
	Skill                string         `json:"skill"`
	Dataset              string         `json:"dataset"`
	Timestamp            string         `json:"timestamp"`
	Mode                 string         `json:"mode"`
	TotalTests           int            `json:"total_tests"`
	Passed               int            `json:"passed"`
	Failed               int            `json:"failed"`
	PassRate             float64        `json:"pass_rate"`
	AvgScore             float64        `json:"avg_score"`
	TotalDurationSeconds float64        `json:"total_duration_seconds"`
	Results              []CaseRecord   `json:"results"`
	Metadata             map[string]any `json:"metadata"`
}

// CaseRecord is the persisted form of an EvalResult. Passed and Score are
// stored as computed at run time.
type CaseRecord struct {
	TestCaseID      string        `json:"test_case_id"`
	Prompt          string        `json:"prompt"`
	Scaffold        string        `json:"scaffold"`
	ExpectedChecks  []string      `json:"expected_checks"`
	ShouldTrigger   bool          `json:"should_trigger"`
	Notes           string        `json:"notes"`
	Passed          bool          `json:"passed"`
	Score           float64       `json:"score"`
	GraderResults   []CheckResult `json:"grader_results"`
	AgentOutput     *AgentOutput  `json:"agent_output"`
	RubricScore     *RubricScore  `json:"rubric_score"`
	DurationSeconds float64       `json:"duration_seconds"`
	Error           *string       `json:"error"`
}

// Record converts a result into its persisted form.
func (r *EvalResult) Record() CaseRecord {
	rec := CaseRecord{
		TestCaseID:      r.TestCase.ID,
		Prompt:          r.TestCase.Prompt,
		Scaffold:        r.TestCase.Scaffold,
		ExpectedChecks:  nonNil(r.TestCase.ExpectedChecks),
		ShouldTrigger:   r.TestCase.ShouldTrigger,
		Notes:           r.TestCase.Notes,
		Passed:          r.Passed(),
		Score:           r.Score(),
		GraderResults:   r.CheckResults,
		AgentOutput:     r.AgentOutput,
		RubricScore:     r.RubricScore,
		DurationSeconds: r.DurationSeconds,
	}
	if rec.GraderResults == nil {
		rec.GraderResults = []CheckResult{}
	}
	if r.Error != "" {
		e := r.Error
		rec.Error = &e
	}
	return rec
}

// Result rebuilds the in-memory result from a persisted record.
func (c CaseRecord) Result() *EvalResult {
	res := &EvalResult{
		TestCase: TestCase{
			ID:             c.TestCaseID,
			Prompt:         c.Prompt,
			Scaffold:       c.Scaffold,
			ExpectedChecks: c.ExpectedChecks,
			ShouldTrigger:  c.ShouldTrigger,
			Notes:          c.Notes,
		},
		CheckResults:    c.GraderResults,
		AgentOutput:     c.AgentOutput,
		RubricScore:     c.RubricScore,
		DurationSeconds: c.DurationSeconds,
	}
	if c.Error != nil {
		res.Error = *c.Error
	}
	return res
}

// Document converts the report into its persisted form.
func (r *EvalReport) Document() *ReportDocument {
	doc := &ReportDocument{
		Skill:                r.Skill,
		Dataset:              r.Dataset,
		Timestamp:            r.Timestamp,
		Mode:                 r.Mode,
		TotalTests:           len(r.Results),
		Passed:               r.PassedCount(),
		Failed:               r.FailedCount(),
		PassRate:             r.PassRate(),
		AvgScore:             r.AvgScore(),
		TotalDurationSeconds: r.TotalDurationSeconds,
		Results:              make([]CaseRecord, 0, len(r.Results)),
		Metadata:             r.Metadata,
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	for _, res := range r.Results {
		doc.Results = append(doc.Results, res.Record())
	}
	return doc
}

// Report rebuilds an EvalReport from a persisted document.
func (d *ReportDocument) Report() *EvalReport {
	rep := &EvalReport{
		Skill:                d.Skill,
		Dataset:              d.Dataset,
		Timestamp:            d.Timestamp,
		Mode:                 d.Mode,
		TotalDurationSeconds: d.TotalDurationSeconds,
		Metadata:             d.Metadata,
	}
	for _, rec := range d.Results {
		rep.Results = append(rep.Results, rec.Result())
	}
	return rep
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
