package middleware

import (
	"context"
	"log/slog"
	"time"

	"rentbook/internal/app/actor"
	"rentbook/internal/app/commands"
	"rentbook/internal/app/queries"
)

// CommandLogging logs every dispatched command with its outcome and latency.
func CommandLogging(logger *slog.Logger) CommandMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, cmd)
			logOutcome(ctx, logger, "command", cmd.Key(), start, err)
			return res, err
		})
	}
}

// QueryLogging logs queries at debug level; failures are warnings.
func QueryLogging(logger *slog.Logger) QueryMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, q)
			logOutcome(ctx, logger, "query", q.Key(), start, err)
			return res, err
		})
	}
}

func logOutcome(ctx context.Context, logger *slog.Logger, kind, key string, start time.Time, err error) {
	attrs := []any{kind, key, "duration", time.Since(start)}
	if a, ok := actor.FromContext(ctx); ok && !a.Anonymous() {
		attrs = append(attrs, "user_id", a.UserID)
	}
	switch {
	case err != nil:
		logger.WarnContext(ctx, kind+" failed", append(attrs, "error", err)...)
	case kind == "command":
		logger.InfoContext(ctx, kind+" handled", attrs...)
	default:
		logger.DebugContext(ctx, kind+" handled", attrs...)
	}
}
