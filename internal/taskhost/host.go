package taskhost

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexisbeaulieu97/buildcore/internal/buildlogger"
	"github.com/alexisbeaulieu97/buildcore/internal/buildmodel"
	"github.com/alexisbeaulieu97/buildcore/pkg/builderrors"
)

// Outcome is the harvested result of running one TaskInstance (spec §4.4).
type Outcome struct {
	Succeeded        bool
	PropertyUpdates  map[string]string
	ItemUpdates      map[string][]buildmodel.TaskItem
	UnknownParameter []string
}

// Host is the Task Execution Host (spec §4.4): it looks tasks up in a
// Factory, binds parameters through Bind, drives the task lifecycle, and
// harvests outputs.
type Host struct {
	factory Factory
}

// New constructs a Host backed by factory.
func New(factory Factory) *Host {
	return &Host{factory: factory}
}

// Run executes instance against scope, emitting TaskStarted/TaskFinished on
// sink, and returns the harvested outcome. The lifecycle followed is
// FindTask -> SetTaskParameters -> Execute -> GatherTaskOutputs ->
// CleanupForTask (spec §4.4 "Lifecycle"; InitializeForTask/InitializeForBatch
// are no-ops here since this core does not batch tasks across items).
func (h *Host) Run(ctx context.Context, instance buildmodel.TaskInstance, scope Scope, evCtx buildlogger.EventContext, sink buildlogger.EventSink) (Outcome, error) {
	if sink == nil {
		sink = buildlogger.NullSink{}
	}

	task, found, err := h.factory.Create(instance.Name)
	if err != nil {
		return Outcome{}, builderrors.NewProjectFileError(builderrors.CodeEngineFailure, instance.Name, "task assembly failed to load", err)
	}
	if !found {
		sink.Error(evCtx, builderrors.CodeTaskNotFound, fmt.Sprintf("task %q is not registered", instance.Name))
		return Outcome{}, nil
	}

	bound := Bind(task.Schema(), instance.Parameters, scope)
	if len(bound.Errors) > 0 {
		return Outcome{}, builderrors.NewProjectFileError(builderrors.CodeEngineFailure, instance.Name, bound.Errors[0].Error(), bound.Errors[0])
	}
	for name, value := range bound.Values {
		task.SetParameter(name, value)
	}

	sink.TaskStarted(evCtx, instance.Name)
	succeeded, execErr := task.Execute(ctx)
	sink.TaskFinished(evCtx, instance.Name, succeeded && execErr == nil)
	if execErr != nil {
		return Outcome{UnknownParameter: bound.UnknownNames}, execErr
	}
	if !succeeded {
		return Outcome{UnknownParameter: bound.UnknownNames}, nil
	}

	outcome := Outcome{
		Succeeded:        true,
		PropertyUpdates:  make(map[string]string),
		ItemUpdates:      make(map[string][]buildmodel.TaskItem),
		UnknownParameter: bound.UnknownNames,
	}
	if err := harvest(task, instance.Outputs, &outcome); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// harvest implements spec §4.4 "Output harvesting", including property P8
// (a null scalar never overwrites; an empty string does).
func harvest(task Task, bindings []buildmodel.OutputBinding, outcome *Outcome) error {
	for _, binding := range bindings {
		value, declared := task.Output(binding.ParameterName)
		if !declared {
			return builderrors.NewProjectFileError(builderrors.CodeEngineFailure, binding.ParameterName, "output references a parameter the task did not declare", nil)
		}

		if binding.IsItem {
			items, err := toItems(value)
			if err != nil {
				return builderrors.NewProjectFileError(builderrors.CodeEngineFailure, binding.ParameterName, err.Error(), err)
			}
			if len(items) > 0 {
				outcome.ItemUpdates[binding.TargetName] = append(outcome.ItemUpdates[binding.TargetName], items...)
			}
			continue
		}

		text, isNull, err := toPropertyText(value)
		if err != nil {
			return builderrors.NewProjectFileError(builderrors.CodeEngineFailure, binding.ParameterName, err.Error(), err)
		}
		if isNull {
			continue // P8: null scalar output never overwrites the property
		}
		outcome.PropertyUpdates[binding.TargetName] = text // empty string does overwrite
	}
	return nil
}

func toItems(value any) ([]buildmodel.TaskItem, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case buildmodel.TaskItem:
		return []buildmodel.TaskItem{v}, nil
	case []buildmodel.TaskItem:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return []buildmodel.TaskItem{{ItemSpec: v}}, nil
	case []string:
		items := make([]buildmodel.TaskItem, len(v))
		for i, s := range v {
			items[i] = buildmodel.TaskItem{ItemSpec: s}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported output item type %T", value)
	}
}

func toPropertyText(value any) (text string, isNull bool, err error) {
	switch v := value.(type) {
	case nil:
		return "", true, nil
	case string:
		return v, false, nil
	case bool:
		return strconv.FormatBool(v), false, nil
	case int:
		return strconv.Itoa(v), false, nil
	case []string:
		return strings.Join(v, ";"), false, nil
	case []bool:
		parts := make([]string, len(v))
		for i, b := range v {
			parts[i] = strconv.FormatBool(b)
		}
		return strings.Join(parts, ";"), false, nil
	case []int:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ";"), false, nil
	case buildmodel.TaskItem:
		return v.ItemSpec, false, nil
	default:
		return "", false, fmt.Errorf("unsupported output property type %T", value)
	}
}
