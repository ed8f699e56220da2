package taskhost

import "context"

// Task is a single factory-produced invocation object (spec §3 Glossary
// "Task"). Hosts implement this for their concrete task types; the engine
// core never knows what a task actually does.
type Task interface {
	// Schema returns the parameter names and kinds this task recognizes.
	Schema() Schema
	// SetParameter assigns a bound value for a recognized parameter name.
	SetParameter(name string, value any)
	// Execute runs the task. A returned error propagates verbatim to the
	// engine (spec §4.4 "Execution"); a false success bit with a nil error
	// is an ordinary task failure subject to continueOnError.
	Execute(ctx context.Context) (bool, error)
	// Output returns the current value of a declared output-capable
	// parameter. declared is false when name names no such parameter,
	// which is a project-file error at harvest time (spec §4.4 "Output
	// harvesting"); declared true with value nil represents an explicit
	// null, which harvesting must not let overwrite a property (spec P8).
	Output(name string) (value any, declared bool)
}

// Factory produces a fresh Task instance for a task name, or reports the
// name is unregistered (spec §4.4 "Task lookup"). A UsingTask-bound
// assembly path that cannot be loaded is surfaced as an error rather than a
// bool, distinguishing "not registered" (MSB4036, non-fatal — logged) from
// "registered but broken" (fatal project-file error).
type Factory interface {
	Create(taskName string) (task Task, found bool, err error)
}
