package taskhost

import "github.com/alexisbeaulieu97/buildcore/internal/buildmodel"

// EvaluatedValue is the result of expanding a raw parameter string in a
// property/item scope (spec §4.4 step 1). Text is the fully-expanded
// string form, used for scalar conversions and for array splitting. Items
// is non-nil when the raw expression was item-valued (an item list
// reference), letting the binder apply the ITaskItem "more than one item is
// an error" rule (spec §4.4 step 2) instead of guessing from the string
// form alone.
type EvaluatedValue struct {
	Text  string
	Items []buildmodel.TaskItem
}

// Empty reports whether the evaluated value is the empty string with no
// items, the condition spec §4.4 step 1 uses to decide a parameter is left
// unset on the task.
func (v EvaluatedValue) Empty() bool {
	return v.Text == "" && len(v.Items) == 0
}

// Scope evaluates a task parameter's raw source text against the current
// property/item bucket. The evaluator itself (expression parsing, property
// and item reference expansion) is the project evaluator's job and out of
// this core's scope (spec §1); Scope is the seam the host calls through.
type Scope interface {
	Evaluate(raw string) (EvaluatedValue, error)
}

// StaticScope is a Scope backed by a fixed map, used by tests and the demo
// CLI in place of a real expression evaluator.
type StaticScope struct {
	Properties map[string]string
	Items      map[string][]buildmodel.TaskItem
}

// Evaluate looks up raw first as an item reference, then as a property,
// then falls back to treating raw as already-literal text (spec §4.4 step 1
// leaves the expansion algorithm itself to the evaluator; this fixture
// implements the narrowest useful version of it).
func (s StaticScope) Evaluate(raw string) (EvaluatedValue, error) {
	if items, ok := s.Items[raw]; ok {
		return EvaluatedValue{Items: buildmodel.CloneTaskItems(items)}, nil
	}
	if text, ok := s.Properties[raw]; ok {
		return EvaluatedValue{Text: text}, nil
	}
	return EvaluatedValue{Text: raw}, nil
}
