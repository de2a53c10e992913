package availability

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentbook/internal/app/actor"
	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/uow"
	domainavailability "rentbook/internal/domain/availability"
	domainlistings "rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
)

const blockDatesKey = "availability.block"

// BlockDatesCommand lets a seller take days off the market.
type BlockDatesCommand struct {
	ListingID string
	Start     string
	End       string
	Reference string
}

func (c BlockDatesCommand) Key() string { return blockDatesKey }

func (c BlockDatesCommand) Access() middleware.Access { return middleware.AccessSeller }

type BlockDatesHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *BlockDatesHandler) Handle(ctx context.Context, cmd BlockDatesCommand) (dto.Calendar, error) {
	seller, err := actor.RequireSeller(ctx)
	if err != nil {
		return dto.Calendar{}, err
	}
	r, err := daterange.ParseRange(cmd.Start, cmd.End)
	if err != nil {
		return dto.Calendar{}, err
	}
	if err := r.Validate(); err != nil {
		return dto.Calendar{}, err
	}
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.Calendar{}, err
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return dto.Calendar{}, err
	}
	if listing.Seller != domainlistings.SellerID(seller.UserID) {
		return dto.Calendar{}, actor.ErrNotResourceOf
	}
	calendar, err := handlersupport.CalendarFor(ctx, unit, listing)
	if err != nil {
		return dto.Calendar{}, err
	}

	now := handlersupport.Now(h.Now)
	reference := strings.TrimSpace(cmd.Reference)
	if reference == "" {
		reference = "block-" + uuid.NewString()
	}
	if err := calendar.BlockRange(r, domainavailability.ReasonHostBlock, reference, now); err != nil {
		return dto.Calendar{}, err
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return dto.Calendar{}, err
	}
	if err := outbox.DrainInto(ctx, h.Outbox, h.Encoder, calendar); err != nil {
		return dto.Calendar{}, err
	}
	return dto.MapCalendar(calendar, daterange.Range{}, daterange.Today(now)), nil
}

var _ commands.Handler[BlockDatesCommand, dto.Calendar] = (*BlockDatesHandler)(nil)
