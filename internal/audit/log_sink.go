package audit

import (
	"context"

	"go.uber.org/zap"

	"go-pos-ledger/internal/model"
)

// LogSink writes every entry as a structured log line.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("audit")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Write(_ context.Context, entry model.LogEntry) error {
	s.logger.Info(entry.Message,
		zap.String("entry_id", entry.ID),
		zap.String("category", string(entry.Category)),
		zap.String("user", entry.User),
		zap.Time("timestamp", entry.Timestamp),
	)
	return nil
}
