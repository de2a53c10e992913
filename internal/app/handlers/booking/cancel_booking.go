package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentbook/internal/app/actor"
	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/uow"
	domainavailability "rentbook/internal/domain/availability"
	domainbooking "rentbook/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string               { return cancelBookingKey }
func (c CancelBookingCommand) Access() middleware.Access { return middleware.AccessUser }

// CancelBookingHandler lets either party cancel. Held days go back on the
// calendar and a paid booking is refunded.
type CancelBookingHandler struct {
	Payments policies.PaymentsPort
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (dto.Booking, error) {
	user, err := actor.Require(ctx)
	if err != nil {
		return dto.Booking{}, err
	}
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.Booking{}, err
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	if !b.InvolvesUser(user.UserID) {
		return dto.Booking{}, actor.ErrNotResourceOf
	}

	now := handlersupport.Now(h.Now)
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		reason = "canceled by " + string(user.Role)
	}
	held, err := b.Cancel(reason, now)
	if err != nil {
		return dto.Booking{}, err
	}

	recorders := []outbox.Recorder{b}
	if held {
		calendar, err := unit.Availability().Calendar(ctx, b.ListingID)
		if err != nil {
			return dto.Booking{}, err
		}
		if err := calendar.Release(string(b.ID), now); err != nil && !errors.Is(err, domainavailability.ErrRangeNotFound) {
			return dto.Booking{}, err
		}
		if err := unit.Availability().Save(ctx, calendar); err != nil {
			return dto.Booking{}, err
		}
		recorders = append(recorders, calendar)
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return dto.Booking{}, err
	}
	if held && b.PaymentIntentID != "" && h.Payments != nil {
		if err := h.Payments.Refund(ctx, b.PaymentIntentID); err != nil {
			return dto.Booking{}, fmt.Errorf("booking: refund %s: %w", b.PaymentIntentID, err)
		}
	}
	if err := outbox.DrainInto(ctx, h.Outbox, h.Encoder, recorders...); err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(b), nil
}

var _ commands.Handler[CancelBookingCommand, dto.Booking] = (*CancelBookingHandler)(nil)
