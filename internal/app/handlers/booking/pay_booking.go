package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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

const payBookingKey = "booking.pay"

var ErrPaymentsUnavailable = errors.New("booking: payments not configured")

type PayBookingCommand struct {
	BookingID string
	IdemKey   string
}

func (c PayBookingCommand) Key() string               { return payBookingKey }
func (c PayBookingCommand) IdempotencyKey() string    { return c.IdemKey }
func (c PayBookingCommand) ResultPrototype() any      { return &dto.Booking{} }
func (c PayBookingCommand) Access() middleware.Access { return middleware.AccessUser }

// PayBookingHandler charges the customer, then holds the days and confirms.
// A charge whose booking cannot be held or stored is refunded.
type PayBookingHandler struct {
	Payments policies.PaymentsPort
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
	Now      func() time.Time
}

func (h *PayBookingHandler) Handle(ctx context.Context, cmd PayBookingCommand) (*dto.Booking, error) {
	customer, err := actor.Require(ctx)
	if err != nil {
		return nil, err
	}
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, err
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customer.UserID {
		return nil, actor.ErrNotResourceOf
	}
	if b.Status != domainbooking.StatusAwaitingPayment {
		return nil, domainbooking.ErrInvalidState
	}
	listing, err := unit.Listings().ByID(ctx, b.ListingID)
	if err != nil {
		return nil, err
	}
	calendar, err := handlersupport.CalendarFor(ctx, unit, listing)
	if err != nil {
		return nil, err
	}
	if !calendar.CanReserve(b.Range) {
		return nil, domainavailability.ErrOverlappingRange
	}

	intent := ""
	if !b.Breakdown.Total.IsZero() {
		if h.Payments == nil {
			return nil, ErrPaymentsUnavailable
		}
		intent, err = h.Payments.CreateIntent(ctx, string(b.ID), b.Breakdown.Total)
		if err != nil {
			return nil, fmt.Errorf("booking: create payment intent: %w", err)
		}
	}

	now := handlersupport.Now(h.Now)
	if err := h.hold(ctx, unit, calendar, b, intent, now); err != nil {
		return nil, h.refund(ctx, intent, err)
	}
	if err := outbox.DrainInto(ctx, h.Outbox, h.Encoder, calendar, b); err != nil {
		return nil, h.refund(ctx, intent, err)
	}
	out := dto.MapBooking(b)
	return &out, nil
}

func (h *PayBookingHandler) hold(ctx context.Context, unit uow.UnitOfWork, calendar *domainavailability.Calendar, b *domainbooking.Booking, intent string, now time.Time) error {
	if err := calendar.Reserve(b.Range, string(b.ID), now); err != nil {
		return err
	}
	if err := b.Confirm(intent, now); err != nil {
		return err
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return err
	}
	return unit.Bookings().Save(ctx, b)
}

func (h *PayBookingHandler) refund(ctx context.Context, intent string, cause error) error {
	if intent == "" || h.Payments == nil {
		return cause
	}
	if err := h.Payments.Refund(context.WithoutCancel(ctx), intent); err != nil {
		h.logger().ErrorContext(ctx, "refund failed", slog.String("intent", intent), slog.Any("err", err))
		return errors.Join(cause, fmt.Errorf("booking: refund %s: %w", intent, err))
	}
	return cause
}

func (h *PayBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[PayBookingCommand, *dto.Booking] = (*PayBookingHandler)(nil)
