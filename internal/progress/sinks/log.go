// Package sinks provides Sink implementations for the progress hub.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/frontier-crawler/internal/progress"
)

// LogSink emits structured logs for progress streams. It is the default sink
// during development and doubles as an audit trail in production.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.logger.Info("crawl event",
			zap.String("type", string(evt.Type)),
			zap.String("task_id", evt.TaskID),
			zap.Time("ts", evt.TS),
			zap.Any("payload", evt.Payload),
		)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
