package taskhost

import (
	"context"
	"testing"

	"github.com/alexisbeaulieu97/buildcore/internal/buildlogger"
	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
)

func TestRunTaskNotFoundLogsMSB4036(t *testing.T) {
	factory := NewStaticTaskFactory(nil)
	host := New(factory)
	sink := buildlogger.NewRecordingSink()

	instance := buildmodel.TaskInstance{Name: "Missing"}
	outcome, err := host.Run(context.Background(), instance, StaticScope{}, buildlogger.EventContext{}, sink)
	if err != nil {
		t.Fatalf("expected task-not-found to be reported, not thrown: %v", err)
	}
	if outcome.Succeeded {
		t.Fatalf("expected an unsuccessful outcome")
	}

	events := sink.Snapshot()
	if len(events) != 1 || events[0].Kind != "Error" || events[0].Code != "MSB4036" {
		t.Fatalf("expected exactly one MSB4036 error event, got %+v", events)
	}
}

func TestRunEchoTaskHarvestsOutput(t *testing.T) {
	factory := NewStaticTaskFactory(map[string]func() Task{"Echo": NewEchoTask})
	host := New(factory)
	sink := buildlogger.NewRecordingSink()

	instance := buildmodel.TaskInstance{
		Name: "Echo",
		Parameters: map[string]buildmodel.RawParameter{
			"Message": {RawValue: "hello"},
		},
		Outputs: []buildmodel.OutputBinding{
			{ParameterName: "Message", TargetName: "Greeting"},
		},
	}
	outcome, err := host.Run(context.Background(), instance, StaticScope{}, buildlogger.EventContext{}, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Succeeded {
		t.Fatalf("expected success")
	}
	if outcome.PropertyUpdates["Greeting"] != "hello" {
		t.Fatalf("expected Greeting=hello, got %v", outcome.PropertyUpdates)
	}
}

// TestNullOutputDoesNotOverwrite is property P8.
func TestNullOutputDoesNotOverwrite(t *testing.T) {
	factory := NewStaticTaskFactory(map[string]func() Task{"SetProperty": NewSetPropertyTask})
	host := New(factory)

	instance := buildmodel.TaskInstance{
		Name: "SetProperty",
		Parameters: map[string]buildmodel.RawParameter{
			"Clear": {RawValue: "true"},
		},
		Outputs: []buildmodel.OutputBinding{
			{ParameterName: "Result", TargetName: "Out"},
		},
	}
	outcome, err := host.Run(context.Background(), instance, StaticScope{}, buildlogger.EventContext{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, present := outcome.PropertyUpdates["Out"]; present {
		t.Fatalf("expected a null output to leave the property unset, got %v", outcome.PropertyUpdates)
	}
}

func TestEmptyStringOutputOverwrites(t *testing.T) {
	factory := NewStaticTaskFactory(map[string]func() Task{"SetProperty": NewSetPropertyTask})
	host := New(factory)

	instance := buildmodel.TaskInstance{
		Name: "SetProperty",
		Parameters: map[string]buildmodel.RawParameter{
			"PropertyValue": {RawValue: ""},
		},
		Outputs: []buildmodel.OutputBinding{
			{ParameterName: "Result", TargetName: "Out"},
		},
	}
	outcome, err := host.Run(context.Background(), instance, StaticScope{}, buildlogger.EventContext{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, present := outcome.PropertyUpdates["Out"]
	if !present || value != "" {
		t.Fatalf("expected Out to be overwritten with empty string, got %q present=%v", value, present)
	}
}

func TestExecuteFalseIsFailureNotError(t *testing.T) {
	factory := NewStaticTaskFactory(map[string]func() Task{"Echo": NewEchoTask})
	host := New(factory)

	instance := buildmodel.TaskInstance{
		Name: "Echo",
		Parameters: map[string]buildmodel.RawParameter{
			"Fail": {RawValue: "true"},
		},
	}
	outcome, err := host.Run(context.Background(), instance, StaticScope{}, buildlogger.EventContext{}, nil)
	if err != nil {
		t.Fatalf("EchoTask reports failure via its success bit, not an error: %v", err)
	}
	if outcome.Succeeded {
		t.Fatalf("expected Fail=true to produce an unsuccessful outcome")
	}
}
