package booking

import (
	"context"
	"time"

	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
	"rentbook/internal/domain/shared/daterange"
)

const completeDueKey = "booking.complete_due"

// CompleteDueCommand completes confirmed bookings whose last day has passed.
// It is issued by the scheduler.
type CompleteDueCommand struct{}

func (CompleteDueCommand) Key() string { return completeDueKey }

type CompleteDueHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *CompleteDueHandler) Handle(ctx context.Context, _ CompleteDueCommand) (dto.CompletionResult, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.CompletionResult{}, err
	}
	confirmed, err := unit.Bookings().ListByStatus(ctx, domainbooking.StatusConfirmed)
	if err != nil {
		return dto.CompletionResult{}, err
	}

	now := handlersupport.Now(h.Now)
	today := daterange.Today(now)
	result := dto.CompletionResult{Completed: []string{}}
	recorders := make([]outbox.Recorder, 0, len(confirmed))
	for _, b := range confirmed {
		if !b.DueForCompletion(today) {
			continue
		}
		if err := b.Complete(now); err != nil {
			return dto.CompletionResult{}, err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return dto.CompletionResult{}, err
		}
		recorders = append(recorders, b)
		result.Completed = append(result.Completed, string(b.ID))
	}
	if err := outbox.DrainInto(ctx, h.Outbox, h.Encoder, recorders...); err != nil {
		return dto.CompletionResult{}, err
	}
	return result, nil
}

var _ commands.Handler[CompleteDueCommand, dto.CompletionResult] = (*CompleteDueHandler)(nil)
