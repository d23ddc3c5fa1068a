package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithRetrieval returns a logger with retrieval context fields attached.
// Use this for all logging within a context assembly request.
func WithRetrieval(mode, conversationID string) *slog.Logger {
	return slog.With(
		"mode", mode,
		"conversation_id", conversationID,
	)
}

// WithJob returns a logger scoped to a background maintenance job run.
func WithJob(jobName string) *slog.Logger {
	return slog.With("job", jobName)
}
