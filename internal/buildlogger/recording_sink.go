package buildlogger

import "sync"

// RecordedEvent captures one call made against a RecordingSink, used by
// tests asserting on ordering (spec P3) and content (spec P6, P9).
type RecordedEvent struct {
	Kind    string
	Ctx     EventContext
	Name    string
	Code    string
	Message string
	OK      bool
}

// RecordingSink accumulates every call in order. Safe for concurrent use so
// it can observe a parallel target level (spec §5).
type RecordingSink struct {
	mu     sync.Mutex
	Events []RecordedEvent
}

// NewRecordingSink returns an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) append(e RecordedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, e)
}

// Snapshot returns a copy of the events recorded so far.
func (s *RecordingSink) Snapshot() []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedEvent, len(s.Events))
	copy(out, s.Events)
	return out
}

func (s *RecordingSink) BuildStarted(ctx EventContext) {
	s.append(RecordedEvent{Kind: "BuildStarted", Ctx: ctx})
}

func (s *RecordingSink) BuildFinished(ctx EventContext, ok bool) {
	s.append(RecordedEvent{Kind: "BuildFinished", Ctx: ctx, OK: ok})
}

func (s *RecordingSink) ProjectStarted(ctx EventContext, path string) {
	s.append(RecordedEvent{Kind: "ProjectStarted", Ctx: ctx, Name: path})
}

func (s *RecordingSink) ProjectFinished(ctx EventContext, ok bool) {
	s.append(RecordedEvent{Kind: "ProjectFinished", Ctx: ctx, OK: ok})
}

func (s *RecordingSink) TargetStarted(ctx EventContext, name string) {
	s.append(RecordedEvent{Kind: "TargetStarted", Ctx: ctx, Name: name})
}

func (s *RecordingSink) TargetFinished(ctx EventContext, name string, ok bool) {
	s.append(RecordedEvent{Kind: "TargetFinished", Ctx: ctx, Name: name, OK: ok})
}

func (s *RecordingSink) TaskStarted(ctx EventContext, name string) {
	s.append(RecordedEvent{Kind: "TaskStarted", Ctx: ctx, Name: name})
}

func (s *RecordingSink) TaskFinished(ctx EventContext, name string, ok bool) {
	s.append(RecordedEvent{Kind: "TaskFinished", Ctx: ctx, Name: name, OK: ok})
}

func (s *RecordingSink) Message(ctx EventContext, importance Importance, message string) {
	s.append(RecordedEvent{Kind: "Message", Ctx: ctx, Message: message})
}

func (s *RecordingSink) Warning(ctx EventContext, code, message string) {
	s.append(RecordedEvent{Kind: "Warning", Ctx: ctx, Code: code, Message: message})
}

func (s *RecordingSink) Error(ctx EventContext, code, message string) {
	s.append(RecordedEvent{Kind: "Error", Ctx: ctx, Code: code, Message: message})
}

func (s *RecordingSink) Telemetry(ctx EventContext, eventName string, properties map[string]string) {
	s.append(RecordedEvent{Kind: "Telemetry", Ctx: ctx, Name: eventName})
}

var _ EventSink = (*RecordingSink)(nil)
