// Package project defines the required external "project evaluator"
// contract (spec §6) this core builds against — a fully evaluated
// ProjectInstance exposing target definitions and a property/item scope —
// plus an in-memory StaticProject fixture standing in for the real XML
// loader and evaluator, which spec §1 places out of scope.
package project

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/internal/taskhost"
)

// Instance is the evaluated project the Target Builder walks (spec §6).
type Instance interface {
	Path() string
	Target(name string) (*buildmodel.ProjectTarget, bool)
	TargetNames() []string
	Scope() taskhost.Scope
	SetProperty(name, value string)
	AddItems(name string, items []buildmodel.TaskItem)
	EvaluateCondition(condition string) (bool, error)
	IsUpToDate(inputs, outputs []string) (bool, error)
}

// Evaluator is the required external contract producing Instance values
// idempotently (spec §6: "Exposes CreateProjectInstance() idempotently").
type Evaluator interface {
	CreateProjectInstance() (Instance, error)
}

// FileTimes resolves a file path to a modification time, the seam
// IsUpToDate uses instead of touching the filesystem directly so tests can
// supply fixed timestamps.
type FileTimes interface {
	ModTime(path string) (time.Time, bool)
}

// StaticFileTimes is a FileTimes backed by a fixed map, used by tests.
type StaticFileTimes map[string]time.Time

// ModTime implements FileTimes.
func (m StaticFileTimes) ModTime(path string) (time.Time, bool) {
	t, ok := m[path]
	return t, ok
}

var conditionPattern = regexp.MustCompile(`^\s*'([^']*)'\s*(==|!=)\s*'([^']*)'\s*$`)

// StaticProject is an in-memory ProjectInstance fixture: declared targets
// plus a property/item scope, with no file I/O, used by tests and the demo
// CLI in place of a real XML project evaluator.
type StaticProject struct {
	ProjectPath  string
	Order        []string
	TargetDefs   map[string]*buildmodel.ProjectTarget
	ScopeValue   *taskhost.StaticScope
	Times        FileTimes
}

// NewStaticProject builds a StaticProject from targets in declaration
// order. scope may be nil, in which case an empty one is created.
func NewStaticProject(path string, targets []*buildmodel.ProjectTarget, scope *taskhost.StaticScope, times FileTimes) *StaticProject {
	if scope == nil {
		scope = &taskhost.StaticScope{}
	}
	if scope.Properties == nil {
		scope.Properties = make(map[string]string)
	}
	if scope.Items == nil {
		scope.Items = make(map[string][]buildmodel.TaskItem)
	}
	if times == nil {
		times = StaticFileTimes{}
	}

	p := &StaticProject{
		ProjectPath: path,
		TargetDefs:  make(map[string]*buildmodel.ProjectTarget, len(targets)),
		ScopeValue:  scope,
		Times:       times,
	}
	for _, t := range targets {
		p.Order = append(p.Order, t.Name)
		p.TargetDefs[t.Name] = t
	}
	return p
}

// Path implements Instance.
func (p *StaticProject) Path() string { return p.ProjectPath }

// Target implements Instance.
func (p *StaticProject) Target(name string) (*buildmodel.ProjectTarget, bool) {
	t, ok := p.TargetDefs[name]
	return t, ok
}

// TargetNames implements Instance, in declaration order.
func (p *StaticProject) TargetNames() []string { return p.Order }

// Scope implements Instance.
func (p *StaticProject) Scope() taskhost.Scope { return p.ScopeValue }

// SetProperty implements Instance, using "$(Name)" as the property's
// reference form so task parameters can evaluate it back out.
func (p *StaticProject) SetProperty(name, value string) {
	p.ScopeValue.Properties["$("+name+")"] = value
}

// AddItems implements Instance, using "@(Name)" as the item list's
// reference form.
func (p *StaticProject) AddItems(name string, items []buildmodel.TaskItem) {
	ref := "@(" + name + ")"
	p.ScopeValue.Items[ref] = append(p.ScopeValue.Items[ref], items...)
}

// EvaluateCondition implements Instance with the narrow literal/property
// equality language spec §4.5's "condition" examples exercise; a full
// expression evaluator is out of this core's scope (spec §1).
func (p *StaticProject) EvaluateCondition(condition string) (bool, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return true, nil
	}
	m := conditionPattern.FindStringSubmatch(condition)
	if m == nil {
		return false, fmt.Errorf("unsupported condition expression %q", condition)
	}
	left, right := p.expand(m[1]), p.expand(m[3])
	if m[2] == "==" {
		return left == right, nil
	}
	return left != right, nil
}

func (p *StaticProject) expand(s string) string {
	if v, ok := p.ScopeValue.Properties[s]; ok {
		return v
	}
	return s
}

// IsUpToDate implements Instance's inputs/outputs timestamp check (spec
// §4.5 "Inputs/outputs up-to-date check"). A missing input or output file is
// conservatively treated as "not up to date" so the target still runs.
func (p *StaticProject) IsUpToDate(inputs, outputs []string) (bool, error) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return false, nil
	}

	var newestInput time.Time
	for _, in := range inputs {
		t, ok := p.Times.ModTime(in)
		if !ok {
			return false, nil
		}
		if t.After(newestInput) {
			newestInput = t
		}
	}

	var oldestOutput time.Time
	for i, out := range outputs {
		t, ok := p.Times.ModTime(out)
		if !ok {
			return false, nil
		}
		if i == 0 || t.Before(oldestOutput) {
			oldestOutput = t
		}
	}

	return !oldestOutput.Before(newestInput), nil
}

// CreateProjectInstance implements Evaluator idempotently by returning p
// itself: a StaticProject is already a fully evaluated instance.
func (p *StaticProject) CreateProjectInstance() (Instance, error) { return p, nil }

var (
	_ Instance  = (*StaticProject)(nil)
	_ Evaluator = (*StaticProject)(nil)
)
