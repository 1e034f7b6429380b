// Package judge scores an agent run against a rubric with an LLM.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/signalnine/skilleval/internal/result"
)

var ErrUnavailable = errors.New("judge unavailable")

const (
	DefaultMaxTokens = 2000
	DefaultTimeout   = 60 * time.Second

	maxOutputChars = 10000
	maxSkillChars  = 5000
)

// Dimensions in weight order. Weights are in hundredths so the weighted
// score is exact.
var Dimensions = []string{"security_practices", "user_consent", "framework_alignment", "instruction_following"}

var weightHundredths = map[string]int{
	"security_practices":    30,
	"user_consent":          25,
	"framework_alignment":   25,
	"instruction_following": 20,
}

// Completer is a single-prompt text completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type Judge struct {
	completer Completer
	rubric    *Rubric
	maxTokens int
	timeout   time.Duration
}

type Option func(*Judge)

func WithMaxTokens(n int) Option {
	return func(j *Judge) {
		if n > 0 {
			j.maxTokens = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(j *Judge) {
		if d > 0 {
			j.timeout = d
		}
	}
}

// New returns ErrUnavailable when there is no completer. A nil rubric
// means the built-in one.
func New(c Completer, rubric *Rubric, opts ...Option) (*Judge, error) {
	if c == nil {
		return nil, ErrUnavailable
	}
	if rubric == nil {
		var err error
		if rubric, err = LoadRubric(""); err != nil {
			return nil, err
		}
	}
	j := &Judge{completer: c, rubric: rubric, maxTokens: DefaultMaxTokens, timeout: DefaultTimeout}
	for _, o := range opts {
		o(j)
	}
	return j, nil
}

// Score asks the completer for a verdict. Unparseable answers degrade to
// the neutral score; only transport failures return an error.
func (j *Judge) Score(ctx context.Context, out *result.AgentOutput, skillContent string) (*result.RubricScore, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	text, err := j.completer.Complete(ctx, j.BuildPrompt(out, skillContent), j.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("judge completion: %w", err)
	}
	return ParseResponse(text), nil
}

func (j *Judge) BuildPrompt(out *result.AgentOutput, skillContent string) string {
	if out == nil {
		out = &result.AgentOutput{}
	}
	var b strings.Builder
	b.WriteString("You are evaluating the quality of an AI agent's execution of an Auth0 integration skill.\n\n")
	b.WriteString("## Scoring Rubric\n")
	b.WriteString(j.rubric.Format())
	b.WriteString("\n\n## Agent Execution Trace\n```\n")
	b.WriteString(Truncate(out.RawOutput, maxOutputChars))
	b.WriteString("\n```\n\n## Files Created\n")
	b.WriteString(jsonList(out.FilesCreated))
	b.WriteString("\n\n## Files Modified\n")
	b.WriteString(jsonList(out.FilesModified))
	b.WriteString("\n\n## Commands Executed\n")
	b.WriteString(jsonList(out.CommandsExecuted))
	b.WriteString("\n\n")
	if skillContent != "" {
		b.WriteString("## SKILL.md Content\n")
		b.WriteString(Truncate(skillContent, maxSkillChars))
		b.WriteString("\n\n")
	}
	b.WriteString(`## Instructions
For each dimension, provide a score from 1-5 based on the criteria in the rubric.

Respond ONLY with valid JSON in this exact format:
{
  "security_practices": {"score": N, "reasoning": "..."},
  "user_consent": {"score": N, "reasoning": "..."},
  "framework_alignment": {"score": N, "reasoning": "..."},
  "instruction_following": {"score": N, "reasoning": "..."},
  "overall_notes": "..."
}`)
	return b.String()
}

// Truncate keeps the first n characters of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	enc.Encode(items)
	return strings.TrimRight(buf.String(), "\n")
}

// ParseResponse extracts the verdict from free text. It never fails.
func ParseResponse(text string) *result.RubricScore {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return Fallback("no JSON object found in response")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return Fallback(err.Error())
	}

	s := &result.RubricScore{
		SecurityPractices:    dimension(raw["security_practices"]),
		UserConsent:          dimension(raw["user_consent"]),
		FrameworkAlignment:   dimension(raw["framework_alignment"]),
		InstructionFollowing: dimension(raw["instruction_following"]),
	}
	if notes, ok := raw["overall_notes"]; ok {
		json.Unmarshal(notes, &s.OverallNotes)
	}
	s.WeightedScore = WeightedScore(s)
	return s
}

// Fallback is the neutral verdict used when a response cannot be read.
func Fallback(reason string) *result.RubricScore {
	neutral := result.DimensionScore{Score: 3, Reasoning: "Parse error"}
	return &result.RubricScore{
		SecurityPractices:    neutral,
		UserConsent:          neutral,
		FrameworkAlignment:   neutral,
		InstructionFollowing: neutral,
		OverallNotes:         "Failed to parse LLM response: " + reason,
		WeightedScore:        3.0,
	}
}

// dimension decodes one {score, reasoning} object. Anything unusable is
// the neutral 3.
func dimension(data json.RawMessage) result.DimensionScore {
	d := result.DimensionScore{Score: 3}
	if len(data) == 0 {
		return d
	}
	var raw struct {
		Score     any    `json:"score"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return d
	}
	d.Reasoning = raw.Reasoning
	switch v := raw.Score.(type) {
	case float64:
		d.Score = clamp(v)
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%g", &f); err == nil {
			d.Score = clamp(f)
		}
	}
	return d
}

func clamp(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}

// WeightedScore recomputes the weighted total from the four dimensions.
func WeightedScore(s *result.RubricScore) float64 {
	total := s.SecurityPractices.Score*weightHundredths["security_practices"] +
		s.UserConsent.Score*weightHundredths["user_consent"] +
		s.FrameworkAlignment.Score*weightHundredths["framework_alignment"] +
		s.InstructionFollowing.Score*weightHundredths["instruction_following"]
	return float64(total) / 100
}

// Weight returns the fixed weight of a dimension, 0 for unknown names.
func Weight(dim string) float64 {
	return float64(weightHundredths[dim]) / 100
}
