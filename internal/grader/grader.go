// Package grader turns evidence from a run into check results. A grader owns
// a fixed catalogue of checks for one skill and produces exactly one result
// per check, in catalogue order.
package grader

import (
	"errors"
	"fmt"
	"sort"

	"github.com/signalnine/skilleval/internal/result"
)

var ErrUnknownSkill = errors.New("unknown skill")

// Kind says which evidence a grader reads.
type Kind string

const (
	KindStatic Kind = "static"
	KindTrace  Kind = "trace"
)

// Grader must be deterministic: same evidence, same results.
type Grader interface {
	Skill() string
	Checks() []string
	Grade() []result.CheckResult
}

// Evidence is what a grader may look at. Static graders read ProjectDir,
// trace graders read Trace. Either may be zero.
type Evidence struct {
	ProjectDir string
	Trace      *ExecutionTrace
}

type Factory func(Evidence) Grader

type Entry struct {
	Skill       string
	Kind        Kind
	Description string
	Checks      []string
	Factory     Factory
}

type Registry struct {
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds or replaces the grader for e.Skill.
func (r *Registry) Register(e Entry) {
	r.entries[e.Skill] = e
}

func (r *Registry) Lookup(skill string) (Entry, error) {
	e, ok := r.entries[skill]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownSkill, skill)
	}
	return e, nil
}

func (r *Registry) Skills() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Grade looks up skill and runs its grader over ev. A trace grader given no
// trace sees an empty one.
func (r *Registry) Grade(skill string, ev Evidence) ([]result.CheckResult, error) {
	e, err := r.Lookup(skill)
	if err != nil {
		return nil, err
	}
	if e.Kind == KindTrace && ev.Trace == nil {
		ev.Trace = &ExecutionTrace{}
	}
	return e.Factory(ev).Grade(), nil
}

// DefaultRegistry knows the built-in graders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Entry{
		Skill:       Auth0ReactSkill,
		Kind:        KindStatic,
		Description: "Inspects a React project for a working @auth0/auth0-react integration",
		Checks:      Auth0ReactChecks,
		Factory: func(ev Evidence) Grader {
			return NewAuth0React(ev.ProjectDir)
		},
	})
	r.Register(Entry{
		Skill:       Auth0QuickstartSkill,
		Kind:        KindTrace,
		Description: "Inspects an execution trace for the Auth0 CLI quickstart flow",
		Checks:      Auth0QuickstartChecks,
		Factory: func(ev Evidence) Grader {
			tr := ev.Trace
			if tr == nil {
				tr = &ExecutionTrace{}
			}
			return NewAuth0Quickstart(tr)
		},
	})
	return r
}

func pass(name, msg string, details map[string]any) result.CheckResult {
	return check(name, true, msg, details)
}

func fail(name, msg string, details map[string]any) result.CheckResult {
	return check(name, false, msg, details)
}

func check(name string, passed bool, msg string, details map[string]any) result.CheckResult {
	if details == nil {
		details = map[string]any{}
	}
	return result.CheckResult{Name: name, Passed: passed, Message: msg, Details: details}
}
