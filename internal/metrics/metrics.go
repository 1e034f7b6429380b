// Package metrics counts what an evaluation run did. The registry is
// private to each Recorder and exported as a node_exporter textfile when
// the run ends.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "skilleval"

const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusError  = "error"
)

type Recorder struct {
	registry *prometheus.Registry

	cases         *prometheus.CounterVec
	checks        *prometheus.CounterVec
	agentTimeouts *prometheus.CounterVec
	judgeFailures *prometheus.CounterVec
	caseDuration  *prometheus.HistogramVec
	passRate      *prometheus.GaugeVec
	rubricScore   *prometheus.GaugeVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cases_total",
				Help:      "Evaluated test cases by skill, mode and outcome",
			},
			[]string{"skill", "mode", "status"},
		),
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checks_total",
				Help:      "Grader check results by skill, check and outcome",
			},
			[]string{"skill", "check", "status"},
		),
		agentTimeouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_timeouts_total",
				Help:      "Agent invocations that hit the timeout",
			},
			[]string{"skill", "agent"},
		),
		judgeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "judge_failures_total",
				Help:      "Judge calls that returned a transport error",
			},
			[]string{"skill"},
		),
		caseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "case_duration_seconds",
				Help:      "Wall time per test case",
				Buckets:   []float64{0.1, 1, 5, 30, 60, 120, 300, 600},
			},
			[]string{"skill", "mode"},
		),
		passRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pass_rate",
				Help:      "Pass rate of the last completed run",
			},
			[]string{"skill", "mode"},
		),
		rubricScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rubric_weighted_score",
				Help:      "Weighted judge score of the last scored case",
			},
			[]string{"skill"},
		),
	}
	r.registry.MustRegister(
		r.cases, r.checks, r.agentTimeouts, r.judgeFailures,
		r.caseDuration, r.passRate, r.rubricScore,
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveCase records one finished case. A non-empty caseErr wins over
// passed.
func (r *Recorder) ObserveCase(skill, mode string, passed bool, caseErr string, seconds float64) {
	status := StatusFailed
	switch {
	case caseErr != "":
		status = StatusError
	case passed:
		status = StatusPassed
	}
	r.cases.WithLabelValues(skill, mode, status).Inc()
	r.caseDuration.WithLabelValues(skill, mode).Observe(seconds)
}

func (r *Recorder) ObserveCheck(skill, check string, passed bool) {
	status := StatusFailed
	if passed {
		status = StatusPassed
	}
	r.checks.WithLabelValues(skill, check, status).Inc()
}

func (r *Recorder) AgentTimeout(skill, agent string) {
	r.agentTimeouts.WithLabelValues(skill, agent).Inc()
}

func (r *Recorder) JudgeFailure(skill string) {
	r.judgeFailures.WithLabelValues(skill).Inc()
}

func (r *Recorder) RubricScore(skill string, weighted float64) {
	r.rubricScore.WithLabelValues(skill).Set(weighted)
}

func (r *Recorder) SetPassRate(skill, mode string, rate float64) {
	r.passRate.WithLabelValues(skill, mode).Set(rate)
}

// WriteTextfile dumps the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
