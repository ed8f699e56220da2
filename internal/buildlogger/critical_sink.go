package buildlogger

// CriticalOnlySink wraps another sink and suppresses everything but
// warnings, errors, high-importance messages, and Build/Project/Target/Task
// finished events that report failure, implementing spec §2's "suppression
// under critical-only mode".
type CriticalOnlySink struct {
	Inner EventSink
}

// NewCriticalOnlySink wraps inner. A nil inner is replaced with NullSink.
func NewCriticalOnlySink(inner EventSink) *CriticalOnlySink {
	if inner == nil {
		inner = NullSink{}
	}
	return &CriticalOnlySink{Inner: inner}
}

func (s *CriticalOnlySink) BuildStarted(ctx EventContext)         {}
func (s *CriticalOnlySink) BuildFinished(ctx EventContext, ok bool) {
	if !ok {
		s.Inner.BuildFinished(ctx, ok)
	}
}
func (s *CriticalOnlySink) ProjectStarted(ctx EventContext, path string)  {}
func (s *CriticalOnlySink) ProjectFinished(ctx EventContext, ok bool) {
	if !ok {
		s.Inner.ProjectFinished(ctx, ok)
	}
}
func (s *CriticalOnlySink) TargetStarted(ctx EventContext, name string) {}
func (s *CriticalOnlySink) TargetFinished(ctx EventContext, name string, ok bool) {
	if !ok {
		s.Inner.TargetFinished(ctx, name, ok)
	}
}
func (s *CriticalOnlySink) TaskStarted(ctx EventContext, name string) {}
func (s *CriticalOnlySink) TaskFinished(ctx EventContext, name string, ok bool) {
	if !ok {
		s.Inner.TaskFinished(ctx, name, ok)
	}
}

func (s *CriticalOnlySink) Message(ctx EventContext, importance Importance, message string) {
	if importance == ImportanceHigh {
		s.Inner.Message(ctx, importance, message)
	}
}

func (s *CriticalOnlySink) Warning(ctx EventContext, code, message string) {
	s.Inner.Warning(ctx, code, message)
}

func (s *CriticalOnlySink) Error(ctx EventContext, code, message string) {
	s.Inner.Error(ctx, code, message)
}

func (s *CriticalOnlySink) Telemetry(ctx EventContext, eventName string, properties map[string]string) {
}

var _ EventSink = (*CriticalOnlySink)(nil)
