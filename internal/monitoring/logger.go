package monitoring

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger provides structured logging helpers for the sync pipeline.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger at the given level and installs it
// as the process default.
func NewLogger(level string) *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	logger := &Logger{Logger: slog.New(handler)}
	slog.SetDefault(logger.Logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SyncSubjectLogger logs one executive's sync outcome.
func (l *Logger) SyncSubjectLogger(name, handle string, score *float64, errMsg string, duration time.Duration) {
	attrs := []any{
		"executive", name,
		"handle", handle,
		"duration_ms", duration.Milliseconds(),
	}
	if score != nil {
		attrs = append(attrs, "score", *score)
	}
	if errMsg != "" {
		attrs = append(attrs, "error", errMsg)
		l.Warn("Executive sync failed", attrs...)
		return
	}
	l.Info("Executive synced", attrs...)
}

// SyncRunLogger logs the summary of a full batch.
func (l *Logger) SyncRunLogger(date string, total, synced, skipped, failed int, duration time.Duration) {
	l.Info("Sync run completed",
		"date", date,
		"total", total,
		"synced", synced,
		"skipped", skipped,
		"failed", failed,
		"duration_ms", duration.Milliseconds(),
	)
}
