// Package runner drives an evaluation: for every test case it provisions
// a scaffold copy, grades it (running the agent first in agent mode),
// optionally asks the judge, and folds everything into a report.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/signalnine/skilleval/internal/agent"
	"github.com/signalnine/skilleval/internal/dataset"
	"github.com/signalnine/skilleval/internal/grader"
	"github.com/signalnine/skilleval/internal/judge"
	"github.com/signalnine/skilleval/internal/log"
	"github.com/signalnine/skilleval/internal/metrics"
	"github.com/signalnine/skilleval/internal/result"
	"github.com/signalnine/skilleval/internal/scaffold"
)

type Options struct {
	Skill       string
	Mode        string
	DatasetPath string
	// OutputDir receives the report. Empty means the report is not persisted.
	OutputDir string

	Graders   *grader.Registry
	Scaffolds *scaffold.Store

	Agent        agent.Runner
	AgentTimeout time.Duration

	// Judge is optional; without one rubric scoring is skipped for the
	// whole run.
	Judge        *judge.Judge
	WithRubric   bool
	SkillContent string

	Debug   *DebugWriter
	TestIDs []string
	Metrics *metrics.Recorder
	Now     func() time.Time
}

type Evaluator struct {
	opts          Options
	rubricEnabled bool
}

func New(opts Options) (*Evaluator, error) {
	if opts.Skill == "" {
		return nil, errors.New("skill is required")
	}
	switch opts.Mode {
	case result.ModeDryRun, result.ModeAgent, result.ModeBaseline:
	case "":
		opts.Mode = result.ModeDryRun
	default:
		return nil, fmt.Errorf("unknown mode %q", opts.Mode)
	}
	if opts.Graders == nil {
		opts.Graders = grader.DefaultRegistry()
	}
	if opts.Scaffolds == nil {
		return nil, errors.New("scaffold store is required")
	}
	if opts.Mode == result.ModeAgent && opts.Agent == nil {
		return nil, errors.New("agent mode requires an agent runner")
	}
	if opts.AgentTimeout <= 0 {
		opts.AgentTimeout = agent.DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &Evaluator{opts: opts}
	if opts.WithRubric {
		if opts.Judge == nil {
			log.Warnf("rubric scoring requested but no judge is available; skipping rubric scores")
		} else {
			e.rubricEnabled = true
		}
	}
	return e, nil
}

// RubricEnabled reports whether cases in agent mode will be scored.
func (e *Evaluator) RubricEnabled() bool {
	return e.rubricEnabled
}

// Run evaluates every selected case in dataset order and returns the
// report plus the path it was written to ("" when not persisted).
func (e *Evaluator) Run(ctx context.Context) (*result.EvalReport, string, error) {
	start := e.opts.Now()
	timestamp := start.Format(result.TimestampLayout)

	cases, err := dataset.Load(e.opts.DatasetPath)
	if err != nil {
		return nil, "", err
	}
	if len(e.opts.TestIDs) > 0 {
		var missing []string
		cases, missing = dataset.Filter(cases, e.opts.TestIDs)
		if len(missing) > 0 {
			log.Warnf("test ids not in dataset: %s", strings.Join(missing, ", "))
		}
	}
	log.Infof("loaded %d test cases from %s (mode %s)", len(cases), e.opts.DatasetPath, e.opts.Mode)

	if e.opts.Debug != nil {
		dir := e.opts.Debug.Begin(e.opts.Skill, timestamp)
		log.Infof("debug output will be saved to %s", dir)
	}

	results := make([]*result.EvalResult, 0, len(cases))
	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			return nil, "", fmt.Errorf("run interrupted: %w", err)
		}
		log.Infof("[%d/%d] evaluating %s: %s", i+1, len(cases), tc.ID, preview(tc.Prompt, 50))

		res := e.EvaluateCase(ctx, tc)
		results = append(results, res)

		status := "PASS"
		if !res.Passed() {
			status = "FAIL"
		}
		log.Infof("  result: %s (score: %.2f)", status, res.Score())
		if res.Error != "" {
			log.Warnf("  case %s error: %s", tc.ID, res.Error)
		}
	}

	var agentType any
	if e.opts.Mode == result.ModeAgent {
		agentType = e.opts.Agent.Name()
	}
	report := &result.EvalReport{
		Skill:                e.opts.Skill,
		Dataset:              e.opts.DatasetPath,
		Timestamp:            timestamp,
		Mode:                 e.opts.Mode,
		Results:              results,
		TotalDurationSeconds: e.opts.Now().Sub(start).Seconds(),
		Metadata: map[string]any{
			"agent_type":     agentType,
			"with_rubric":    e.opts.WithRubric,
			"rubric_enabled": e.rubricEnabled,
			"debug":          e.opts.Debug != nil,
			"go_version":     runtime.Version(),
			"run_id":         uuid.NewString(),
		},
	}
	if e.opts.Metrics != nil {
		e.opts.Metrics.SetPassRate(report.Skill, report.Mode, report.PassRate())
	}

	if e.opts.OutputDir == "" {
		return report, "", nil
	}
	path, err := result.WriteReport(e.opts.OutputDir, report.Document())
	if err != nil {
		if path == "" {
			return report, "", fmt.Errorf("saving report: %w", err)
		}
		log.Warnf("report saved but %v", err)
	}
	log.Infof("report saved to %s", path)
	return report, path, nil
}

// EvaluateCase never fails: errors and panics become the result's Error.
func (e *Evaluator) EvaluateCase(ctx context.Context, tc result.TestCase) (res *result.EvalResult) {
	start := e.opts.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("panic in case %s: %v\n%s", tc.ID, r, debug.Stack())
			res = &result.EvalResult{TestCase: tc, Error: fmt.Sprintf("panic: %v", r)}
		}
		res.DurationSeconds = e.opts.Now().Sub(start).Seconds()
		e.observe(res)
	}()

	res, err := e.evaluate(ctx, tc)
	if err != nil {
		return &result.EvalResult{TestCase: tc, Error: err.Error()}
	}
	return res
}

func (e *Evaluator) evaluate(ctx context.Context, tc result.TestCase) (*result.EvalResult, error) {
	if _, err := e.opts.Graders.Lookup(e.opts.Skill); err != nil {
		return nil, err
	}
	workDir, err := os.MkdirTemp("", "eval-"+e.opts.Skill+"-")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := e.opts.Scaffolds.CopyTo(tc.Scaffold, workDir); err != nil {
		return nil, fmt.Errorf("copying scaffold: %w", err)
	}

	res := &result.EvalResult{TestCase: tc}
	switch e.opts.Mode {
	case result.ModeAgent:
		if err := e.runAgent(ctx, tc, workDir, res); err != nil {
			return nil, err
		}
	default:
		checks, err := e.opts.Graders.Grade(e.opts.Skill, grader.Evidence{ProjectDir: workDir})
		if err != nil {
			return nil, err
		}
		res.CheckResults = checks
	}

	if e.opts.Debug != nil {
		e.opts.Debug.SaveCase(res, workDir)
	}
	return res, nil
}

func (e *Evaluator) runAgent(ctx context.Context, tc result.TestCase, workDir string, res *result.EvalResult) error {
	log.Debugf("    running agent %s", e.opts.Agent.Name())
	out, err := e.opts.Agent.Run(ctx, agent.Request{
		Prompt:  tc.Prompt,
		WorkDir: workDir,
		Skill:   e.opts.Skill,
		Timeout: e.opts.AgentTimeout,
	})
	if err != nil {
		return fmt.Errorf("running agent: %w", err)
	}
	res.AgentOutput = out
	log.Debugf("    agent completed in %.1fs (exit %d)", out.DurationSeconds, out.ExitCode)
	if out.ExitCode == agent.TimeoutExitCode && strings.HasPrefix(out.RawOutput, "Timeout after") && e.opts.Metrics != nil {
		e.opts.Metrics.AgentTimeout(e.opts.Skill, e.opts.Agent.Name())
	}

	checks, err := e.opts.Graders.Grade(e.opts.Skill, grader.Evidence{
		ProjectDir: workDir,
		Trace:      grader.TraceFromAgentOutput(out),
	})
	if err != nil {
		return err
	}
	res.CheckResults = checks

	if !e.rubricEnabled {
		return nil
	}
	log.Debugf("    running judge")
	score, err := e.opts.Judge.Score(ctx, out, e.opts.SkillContent)
	if err != nil {
		log.Warnf("judge failed for case %s: %v", tc.ID, err)
		if e.opts.Metrics != nil {
			e.opts.Metrics.JudgeFailure(e.opts.Skill)
		}
		return nil
	}
	res.RubricScore = score
	log.Debugf("    rubric score: %.2f", score.WeightedScore)
	if e.opts.Metrics != nil {
		e.opts.Metrics.RubricScore(e.opts.Skill, score.WeightedScore)
	}
	return nil
}

func (e *Evaluator) observe(res *result.EvalResult) {
	m := e.opts.Metrics
	if m == nil {
		return
	}
	for _, c := range res.CheckResults {
		m.ObserveCheck(e.opts.Skill, c.Name, c.Passed)
	}
	m.ObserveCase(e.opts.Skill, e.opts.Mode, res.Passed(), res.Error, res.DurationSeconds)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
