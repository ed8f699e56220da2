package taskhost

import (
	"testing"

	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
)

func schemaFixture() Schema {
	return Schema{
		"Name":     {Name: "Name", Kind: KindString, Required: true},
		"Count":    {Name: "Count", Kind: KindInt},
		"Force":    {Name: "Force", Kind: KindBool},
		"Sources":  {Name: "Sources", Kind: KindStringArray},
		"Item":     {Name: "Item", Kind: KindItem},
	}
}

// TestEmptyEvaluationSkipsAssignment is property P7.
func TestEmptyEvaluationSkipsAssignment(t *testing.T) {
	inputs := map[string]buildmodel.RawParameter{
		"Name":  {RawValue: "$(Undefined)"},
		"Count": {RawValue: "3"},
	}
	scope := StaticScope{Properties: map[string]string{"$(Undefined)": ""}}

	result := Bind(schemaFixture(), inputs, scope)
	if _, set := result.Values["Name"]; set {
		t.Fatalf("expected empty evaluation to leave Name unset")
	}
	if result.Values["Count"] != 3 {
		t.Fatalf("expected Count bound to 3, got %v", result.Values["Count"])
	}
}

func TestRequiredParameterMissingIsError(t *testing.T) {
	result := Bind(schemaFixture(), map[string]buildmodel.RawParameter{}, StaticScope{})
	if len(result.Errors) == 0 {
		t.Fatalf("expected an error for a missing required parameter")
	}
}

func TestUnknownParameterNameTracked(t *testing.T) {
	inputs := map[string]buildmodel.RawParameter{
		"Name":    {RawValue: "x"},
		"Bogus":   {RawValue: "y"},
	}
	result := Bind(schemaFixture(), inputs, StaticScope{})
	if len(result.Errors) != 0 {
		t.Fatalf("unknown parameter must not be fatal, got errors: %v", result.Errors)
	}
	if len(result.UnknownNames) != 1 || result.UnknownNames[0] != "Bogus" {
		t.Fatalf("expected Bogus tracked as unknown, got %v", result.UnknownNames)
	}
}

func TestItemScalarWithMultipleItemsIsError(t *testing.T) {
	inputs := map[string]buildmodel.RawParameter{
		"Name": {RawValue: "x"},
		"Item": {RawValue: "@(Many)"},
	}
	scope := StaticScope{Items: map[string][]buildmodel.TaskItem{
		"@(Many)": {{ItemSpec: "a"}, {ItemSpec: "b"}},
	}}
	result := Bind(schemaFixture(), inputs, scope)
	if len(result.Errors) == 0 {
		t.Fatalf("expected an error for a multi-item scalar ITaskItem parameter")
	}
}

func TestArraySplitRespectsEscapedSeparator(t *testing.T) {
	inputs := map[string]buildmodel.RawParameter{
		"Name":    {RawValue: "x"},
		"Sources": {RawValue: "a%3Bb;c"},
	}
	result := Bind(schemaFixture(), inputs, StaticScope{})
	sources, ok := result.Values["Sources"].([]string)
	if !ok || len(sources) != 2 || sources[0] != "a;b" || sources[1] != "c" {
		t.Fatalf("expected [\"a;b\", \"c\"], got %v", result.Values["Sources"])
	}
}
