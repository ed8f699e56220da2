package taskhost

import "context"

// StaticTaskFactory resolves task names from a fixed map, standing in for
// the UsingTask/assembly-load machinery spec §4.4 leaves to the host (spec
// §1 explicit non-goal: "all concrete task implementations"). It exists for
// tests and the demo CLI, not as a production task catalogue.
type StaticTaskFactory struct {
	builders map[string]func() Task
}

// NewStaticTaskFactory builds a factory from name -> constructor pairs.
func NewStaticTaskFactory(builders map[string]func() Task) *StaticTaskFactory {
	return &StaticTaskFactory{builders: builders}
}

// Create implements Factory.
func (f *StaticTaskFactory) Create(taskName string) (Task, bool, error) {
	builder, ok := f.builders[taskName]
	if !ok {
		return nil, false, nil
	}
	return builder(), true, nil
}

var _ Factory = (*StaticTaskFactory)(nil)

// EchoTask is a demo task that succeeds unless its Fail parameter is true
// and exposes its Message parameter back out unchanged, used to exercise the
// output-harvesting and task-failure paths in tests without a production
// task implementation.
type EchoTask struct {
	Message string
	Fail    bool
}

// NewEchoTask returns an EchoTask ready for parameter binding.
func NewEchoTask() Task { return &EchoTask{} }

func (t *EchoTask) Schema() Schema {
	return Schema{
		"Message": {Name: "Message", Kind: KindString},
		"Fail":    {Name: "Fail", Kind: KindBool},
	}
}

func (t *EchoTask) SetParameter(name string, value any) {
	switch name {
	case "Message":
		t.Message, _ = value.(string)
	case "Fail":
		t.Fail, _ = value.(bool)
	}
}

func (t *EchoTask) Execute(ctx context.Context) (bool, error) {
	return !t.Fail, nil
}

func (t *EchoTask) Output(name string) (any, bool) {
	if name != "Message" {
		return nil, false
	}
	return t.Message, true
}

// SetPropertyTask is a demo task that assigns PropertyValue to whatever
// property an OutputBinding names; Clear demonstrates the P8 null-vs-empty
// distinction by outputting nil instead of "" when set.
type SetPropertyTask struct {
	PropertyValue string
	Clear         bool
}

// NewSetPropertyTask returns a SetPropertyTask ready for parameter binding.
func NewSetPropertyTask() Task { return &SetPropertyTask{} }

func (t *SetPropertyTask) Schema() Schema {
	return Schema{
		"PropertyValue": {Name: "PropertyValue", Kind: KindString},
		"Clear":         {Name: "Clear", Kind: KindBool},
	}
}

func (t *SetPropertyTask) SetParameter(name string, value any) {
	switch name {
	case "PropertyValue":
		t.PropertyValue, _ = value.(string)
	case "Clear":
		t.Clear, _ = value.(bool)
	}
}

func (t *SetPropertyTask) Execute(ctx context.Context) (bool, error) {
	return true, nil
}

func (t *SetPropertyTask) Output(name string) (any, bool) {
	if name != "Result" {
		return nil, false
	}
	if t.Clear {
		return nil, true
	}
	return t.PropertyValue, true
}
