package taskhost

import (
	"fmt"
	"strconv"

	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
)

// BindResult is the outcome of Bind: values ready to set on the task,
// supplied names the schema does not recognize (spec §4.4 step 4 — tracked,
// not fatal), and project-file errors (step 2 and step 3 violations).
type BindResult struct {
	Values       map[string]any
	UnknownNames []string
	Errors       []error
}

// Bind is the pure function spec §9 calls for: (schema, inputs, scope) ->
// {boundValues | errors}. It never touches a task object; callers apply
// Values themselves, which keeps the binding rules unit-testable without a
// task double.
func Bind(schema Schema, inputs map[string]buildmodel.RawParameter, scope Scope) BindResult {
	result := BindResult{Values: make(map[string]any)}

	for name, raw := range inputs {
		paramSchema, known := schema[name]
		if !known {
			result.UnknownNames = append(result.UnknownNames, name)
			continue
		}

		evaluated, err := scope.Evaluate(raw.RawValue)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("parameter %q (%s): %w", name, raw.SourceLocation, err))
			continue
		}

		// spec §4.4 step 1: empty evaluation means "not set", for every kind.
		if evaluated.Empty() {
			continue
		}

		value, err := convert(paramSchema, evaluated)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("parameter %q (%s): %w", name, raw.SourceLocation, err))
			continue
		}
		result.Values[name] = value
	}

	for name, paramSchema := range schema {
		if !paramSchema.Required {
			continue
		}
		if _, supplied := inputs[name]; !supplied {
			result.Errors = append(result.Errors, fmt.Errorf("required parameter %q was not supplied", name))
		}
	}

	return result
}

func convert(schema ParameterSchema, evaluated EvaluatedValue) (any, error) {
	if schema.Kind.IsArray() {
		return convertArray(schema, evaluated)
	}
	return convertScalar(schema.Kind, evaluated)
}

func convertScalar(kind ParameterKind, evaluated EvaluatedValue) (any, error) {
	switch kind {
	case KindBool:
		v, err := strconv.ParseBool(evaluated.Text)
		if err != nil {
			return nil, fmt.Errorf("invalid bool value %q", evaluated.Text)
		}
		return v, nil
	case KindInt:
		v, err := strconv.Atoi(evaluated.Text)
		if err != nil {
			return nil, fmt.Errorf("invalid int value %q", evaluated.Text)
		}
		return v, nil
	case KindString:
		return evaluated.Text, nil
	case KindItem:
		items := evaluated.Items
		if items == nil {
			items = []buildmodel.TaskItem{{ItemSpec: evaluated.Text}}
		}
		if len(items) > 1 {
			return nil, fmt.Errorf("expression yielded %d items, expected exactly one", len(items))
		}
		return items[0], nil
	default:
		return nil, fmt.Errorf("unsupported parameter kind %v", kind)
	}
}

func convertArray(schema ParameterSchema, evaluated EvaluatedValue) (any, error) {
	if schema.Kind == KindItemArray {
		items := evaluated.Items
		if items == nil {
			for _, part := range buildmodel.SplitEscapedList(evaluated.Text) {
				items = append(items, buildmodel.TaskItem{ItemSpec: part})
			}
		}
		return items, nil
	}

	parts := buildmodel.SplitEscapedList(evaluated.Text)
	switch schema.Kind {
	case KindBoolArray:
		out := make([]bool, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseBool(p)
			if err != nil {
				return nil, fmt.Errorf("invalid bool array element %q", p)
			}
			out[i] = v
		}
		return out, nil
	case KindIntArray:
		out := make([]int, len(parts))
		for i, p := range parts {
			v, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("invalid int array element %q", p)
			}
			out[i] = v
		}
		return out, nil
	case KindStringArray:
		return parts, nil
	default:
		return nil, fmt.Errorf("unsupported array parameter kind %v", schema.Kind)
	}
}
