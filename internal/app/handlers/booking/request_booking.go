package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

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
	domainlistings "rentbook/internal/domain/listings"
	domainpricing "rentbook/internal/domain/pricing"
	"rentbook/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

// RequestBookingCommand opens a booking for the confirmed selection. Days are
// held only once the booking is paid.
type RequestBookingCommand struct {
	ListingID string
	Start     string
	End       string
	IdemKey   string
}

func (c RequestBookingCommand) Key() string               { return requestBookingKey }
func (c RequestBookingCommand) IdempotencyKey() string    { return c.IdemKey }
func (c RequestBookingCommand) ResultPrototype() any      { return &dto.Booking{} }
func (c RequestBookingCommand) Access() middleware.Access { return middleware.AccessUser }

type RequestBookingHandler struct {
	Fees    policies.FeePolicy
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.Booking, error) {
	customer, err := actor.Require(ctx)
	if err != nil {
		return nil, err
	}
	r, err := daterange.ParseRange(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	now := handlersupport.Now(h.Now)
	if r.Start.Before(daterange.Today(now)) {
		return nil, domainbooking.ErrPastDates
	}
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, err
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if err := listing.EnsureRentable(); err != nil {
		return nil, err
	}
	calendar, err := handlersupport.CalendarFor(ctx, unit, listing)
	if err != nil {
		return nil, err
	}
	if !calendar.CanReserve(r) {
		return nil, domainavailability.ErrOverlappingRange
	}

	fees := domainpricing.DefaultFees()
	if h.Fees != nil {
		fees = h.Fees.FeesFor(ctx, listing)
	}
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:          domainbooking.BookingID(uuid.NewString()),
		ListingID:   listing.ID,
		ListingName: listing.Name,
		CustomerID:  customer.UserID,
		SellerID:    string(listing.Seller),
		Range:       r,
		Breakdown:   domainpricing.ComputeForRange(listing.Rate(), r, fees),
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := outbox.DrainInto(ctx, h.Outbox, h.Encoder, b); err != nil {
		return nil, err
	}
	out := dto.MapBooking(b)
	return &out, nil
}

var _ commands.Handler[RequestBookingCommand, *dto.Booking] = (*RequestBookingHandler)(nil)
