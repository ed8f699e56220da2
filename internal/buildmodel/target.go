package buildmodel

// ContinueOnErrorMode controls whether a target keeps running its remaining
// tasks, or invokes OnError handlers, after a task failure (spec §3, §4.5).
type ContinueOnErrorMode int

const (
	ContinueNever ContinueOnErrorMode = iota
	ContinueWarnAndContinue
	ContinueErrorAndContinue
)

// RawParameter is a task parameter's unevaluated source text plus its
// location in the project file, used for error reporting (spec §3).
type RawParameter struct {
	RawValue       string
	SourceLocation string
}

// OutputBinding declares that a task's output parameter should be harvested
// into a property or an item list (spec §3, §4.4).
type OutputBinding struct {
	ParameterName string
	TargetName    string
	IsItem        bool // true: item list; false: property
}

// TaskInstance is one declared task invocation inside a target (spec §3).
type TaskInstance struct {
	Name            string
	Parameters      map[string]RawParameter
	ContinueOnError ContinueOnErrorMode
	Outputs         []OutputBinding
}

// OnErrorHandler names a target list to run when a target's tasks fail
// without ContinueOnError (spec §3, §4.5).
type OnErrorHandler struct {
	Targets []string
}

// ProjectTarget is one named unit in a project's target graph (spec §3).
type ProjectTarget struct {
	Name            string
	Condition       string
	Inputs          []string
	Outputs         []string
	DependsOn       []string
	BeforeTargets   []string
	AfterTargets    []string
	Tasks           []TaskInstance
	OnErrorHandlers []OnErrorHandler
}
