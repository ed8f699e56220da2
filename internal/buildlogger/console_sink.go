package buildlogger

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// ConsoleSink renders build events as human-readable console lines using
// charmbracelet/log, the same backend the teacher's internal/logger package
// wraps.
type ConsoleSink struct {
	log *charmlog.Logger
}

// NewConsoleSink creates a ConsoleSink writing to w (os.Stdout if nil).
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{log: charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Level:           charmlog.InfoLevel,
	})}
}

func (s *ConsoleSink) with(ctx EventContext) *charmlog.Logger {
	return s.log.With(
		"submission", ctx.SubmissionID,
		"node", ctx.NodeID,
		"target", ctx.TargetID,
		"task", ctx.TaskID,
	)
}

func (s *ConsoleSink) BuildStarted(ctx EventContext) {
	s.with(ctx).Info("build started")
}

func (s *ConsoleSink) BuildFinished(ctx EventContext, succeeded bool) {
	s.with(ctx).Info("build finished", "succeeded", succeeded)
}

func (s *ConsoleSink) ProjectStarted(ctx EventContext, projectPath string) {
	s.with(ctx).Info("project started", "path", projectPath)
}

func (s *ConsoleSink) ProjectFinished(ctx EventContext, succeeded bool) {
	s.with(ctx).Info("project finished", "succeeded", succeeded)
}

func (s *ConsoleSink) TargetStarted(ctx EventContext, targetName string) {
	s.with(ctx).Info("target started", "name", targetName)
}

func (s *ConsoleSink) TargetFinished(ctx EventContext, targetName string, succeeded bool) {
	s.with(ctx).Info("target finished", "name", targetName, "succeeded", succeeded)
}

func (s *ConsoleSink) TaskStarted(ctx EventContext, taskName string) {
	s.with(ctx).Debug("task started", "name", taskName)
}

func (s *ConsoleSink) TaskFinished(ctx EventContext, taskName string, succeeded bool) {
	s.with(ctx).Debug("task finished", "name", taskName, "succeeded", succeeded)
}

func (s *ConsoleSink) Message(ctx EventContext, importance Importance, message string) {
	logger := s.with(ctx)
	if importance == ImportanceHigh {
		logger.Info(message)
		return
	}
	logger.Debug(message)
}

func (s *ConsoleSink) Warning(ctx EventContext, code, message string) {
	s.with(ctx).Warn(message, "code", code)
}

func (s *ConsoleSink) Error(ctx EventContext, code, message string) {
	s.with(ctx).Error(message, "code", code)
}

func (s *ConsoleSink) Telemetry(ctx EventContext, eventName string, properties map[string]string) {
	args := make([]any, 0, len(properties)*2)
	for k, v := range properties {
		args = append(args, k, v)
	}
	s.with(ctx).Debug("telemetry: "+eventName, args...)
}

var _ EventSink = (*ConsoleSink)(nil)
