package buildlogger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// JSONSink renders build events as structured JSON lines using
// github.com/rs/zerolog. The teacher repo carries zerolog as a direct
// dependency without exercising it anywhere in the retrieved sources; the
// core gives it a real home as the machine-readable event sink used for
// headless/CI builds, alongside ConsoleSink's human-readable rendering of
// the same spec §6 contract.
type JSONSink struct {
	log zerolog.Logger
}

// NewJSONSink creates a JSONSink writing newline-delimited JSON to w
// (os.Stdout if nil).
func NewJSONSink(w io.Writer) *JSONSink {
	if w == nil {
		w = os.Stdout
	}
	return &JSONSink{log: zerolog.New(w).With().Timestamp().Logger()}
}

func (s *JSONSink) event(ctx EventContext) *zerolog.Event {
	return s.log.Info().
		Int("submission", ctx.SubmissionID).
		Int("node", ctx.NodeID).
		Int("project_instance", ctx.ProjectInstanceID).
		Int("project_context", ctx.ProjectContextID).
		Int("target", ctx.TargetID).
		Int("task", ctx.TaskID)
}

func (s *JSONSink) BuildStarted(ctx EventContext) {
	s.event(ctx).Str("event", "BuildStarted").Send()
}

func (s *JSONSink) BuildFinished(ctx EventContext, succeeded bool) {
	s.event(ctx).Str("event", "BuildFinished").Bool("succeeded", succeeded).Send()
}

func (s *JSONSink) ProjectStarted(ctx EventContext, projectPath string) {
	s.event(ctx).Str("event", "ProjectStarted").Str("path", projectPath).Send()
}

func (s *JSONSink) ProjectFinished(ctx EventContext, succeeded bool) {
	s.event(ctx).Str("event", "ProjectFinished").Bool("succeeded", succeeded).Send()
}

func (s *JSONSink) TargetStarted(ctx EventContext, targetName string) {
	s.event(ctx).Str("event", "TargetStarted").Str("name", targetName).Send()
}

func (s *JSONSink) TargetFinished(ctx EventContext, targetName string, succeeded bool) {
	s.event(ctx).Str("event", "TargetFinished").Str("name", targetName).Bool("succeeded", succeeded).Send()
}

func (s *JSONSink) TaskStarted(ctx EventContext, taskName string) {
	s.event(ctx).Str("event", "TaskStarted").Str("name", taskName).Send()
}

func (s *JSONSink) TaskFinished(ctx EventContext, taskName string, succeeded bool) {
	s.event(ctx).Str("event", "TaskFinished").Str("name", taskName).Bool("succeeded", succeeded).Send()
}

func (s *JSONSink) Message(ctx EventContext, importance Importance, message string) {
	s.event(ctx).Str("event", "Message").Int("importance", int(importance)).Str("message", message).Send()
}

func (s *JSONSink) Warning(ctx EventContext, code, message string) {
	s.event(ctx).Str("event", "Warning").Str("code", code).Str("message", message).Send()
}

func (s *JSONSink) Error(ctx EventContext, code, message string) {
	s.event(ctx).Str("event", "Error").Str("code", code).Str("message", message).Send()
}

func (s *JSONSink) Telemetry(ctx EventContext, eventName string, properties map[string]string) {
	evt := s.event(ctx).Str("event", "Telemetry").Str("name", eventName)
	for k, v := range properties {
		evt = evt.Str(k, v)
	}
	evt.Send()
}

var _ EventSink = (*JSONSink)(nil)
