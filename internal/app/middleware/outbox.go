package middleware

import (
	"context"
	"log/slog"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/outbox"
)

// Discarder is implemented by outboxes that buffer records in process and
// must drop them when the command that recorded them fails.
type Discarder interface {
	Discard(ctx context.Context)
}

// OutboxFlush hands recorded events to the relay once a command succeeded.
// A failed flush is logged, not returned: the command has already committed
// and its records stay with the outbox.
func OutboxFlush(box outbox.Outbox, logger *slog.Logger) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				if d, ok := box.(Discarder); ok {
					d.Discard(ctx)
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				logger.WarnContext(ctx, "outbox flush failed",
					slog.String("command", cmd.Key()),
					slog.Any("err", err),
				)
			}
			return res, nil
		})
	}
}
