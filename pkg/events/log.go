package events

import (
	"context"

	"go.uber.org/zap"
)

// LogObserver writes events to a zap logger. Skips, rejections and batch
// failures are warnings or errors; progress is info or debug.
type LogObserver struct {
	log *zap.SugaredLogger
}

func NewLogObserver(log *zap.SugaredLogger) *LogObserver {
	return &LogObserver{log: log}
}

func (l *LogObserver) Observe(_ context.Context, e Event) {
	kv := []any{"sequence", e.Sequence}
	if e.TransactionIndex != nil {
		kv = append(kv, "transaction_index", *e.TransactionIndex)
	}
	if e.Path != "" {
		kv = append(kv, "path", e.Path)
	}
	if e.Sender != "" {
		kv = append(kv, "sender", e.Sender)
	}
	if e.Function != "" {
		kv = append(kv, "function", e.Function)
	}
	if e.Count != 0 {
		kv = append(kv, "count", e.Count)
	}
	if e.Reason != "" {
		kv = append(kv, "reason", e.Reason)
	}

	switch e.Kind {
	case CheckpointSkipped, RecordRejected:
		l.log.Warnw(string(e.Kind), kv...)
	case BatchFailed:
		l.log.Errorw(string(e.Kind), kv...)
	case CheckpointStaged, CheckpointTransformed:
		l.log.Debugw(string(e.Kind), kv...)
	default:
		l.log.Infow(string(e.Kind), kv...)
	}
}
