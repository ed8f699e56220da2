package buildlogger

// EventSink is the external logger contract (spec §6): it receives the
// structured events the engine, target builder, and task host raise. Hosts
// supply their own implementation (a transport to another process, a file,
// a UI); this package ships reference sinks only: ConsoleSink and JSONSink
// for the demo CLI, RecordingSink for tests, NullSink, and the
// CriticalOnlySink wrapper.
type EventSink interface {
	BuildStarted(ctx EventContext)
	BuildFinished(ctx EventContext, succeeded bool)
	ProjectStarted(ctx EventContext, projectPath string)
	ProjectFinished(ctx EventContext, succeeded bool)
	TargetStarted(ctx EventContext, targetName string)
	TargetFinished(ctx EventContext, targetName string, succeeded bool)
	TaskStarted(ctx EventContext, taskName string)
	TaskFinished(ctx EventContext, taskName string, succeeded bool)
	Message(ctx EventContext, importance Importance, message string)
	Warning(ctx EventContext, code, message string)
	Error(ctx EventContext, code, message string)
	Telemetry(ctx EventContext, eventName string, properties map[string]string)
}

// NullSink discards every event. Useful as a zero-value default so callers
// never need a nil check.
type NullSink struct{}

func (NullSink) BuildStarted(EventContext)                                 {}
func (NullSink) BuildFinished(EventContext, bool)                          {}
func (NullSink) ProjectStarted(EventContext, string)                       {}
func (NullSink) ProjectFinished(EventContext, bool)                        {}
func (NullSink) TargetStarted(EventContext, string)                        {}
func (NullSink) TargetFinished(EventContext, string, bool)                 {}
func (NullSink) TaskStarted(EventContext, string)                          {}
func (NullSink) TaskFinished(EventContext, string, bool)                   {}
func (NullSink) Message(EventContext, Importance, string)                  {}
func (NullSink) Warning(EventContext, string, string)                      {}
func (NullSink) Error(EventContext, string, string)                        {}
func (NullSink) Telemetry(EventContext, string, map[string]string)         {}

var _ EventSink = NullSink{}
