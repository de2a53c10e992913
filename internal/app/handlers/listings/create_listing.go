package listings

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
	"rentbook/internal/app/uow"
	domainavailability "rentbook/internal/domain/availability"
	domainlistings "rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
)

const createListingKey = "listings.create"

type UnavailableRange struct {
	Start string
	End   string
}

// CreateListingCommand publishes a new item for the acting seller.
type CreateListingCommand struct {
	Name        string
	Category    string
	Price       string
	Kind        string
	Description string
	Unavailable []UnavailableRange
	Activate    bool
}

func (c CreateListingCommand) Key() string               { return createListingKey }
func (c CreateListingCommand) Access() middleware.Access { return middleware.AccessSeller }

type CreateListingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (dto.ListingDetail, error) {
	seller, err := actor.RequireSeller(ctx)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	kind, err := domainlistings.ParseKind(cmd.Kind)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	blocked := make([]daterange.Range, 0, len(cmd.Unavailable))
	for _, raw := range cmd.Unavailable {
		r, err := daterange.ParseRange(raw.Start, raw.End)
		if err != nil {
			return dto.ListingDetail{}, err
		}
		blocked = append(blocked, r)
	}
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.ListingDetail{}, err
	}

	listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          domainlistings.ListingID(uuid.NewString()),
		Seller:      domainlistings.SellerID(seller.UserID),
		Name:        cmd.Name,
		Category:    cmd.Category,
		PriceLabel:  cmd.Price,
		Kind:        kind,
		Description: cmd.Description,
		Unavailable: blocked,
		Activate:    cmd.Activate,
		Now:         handlersupport.Now(h.Now),
	})
	if err != nil {
		return dto.ListingDetail{}, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.ListingDetail{}, err
	}
	if listing.Rentable() {
		if err := unit.Availability().Save(ctx, domainavailability.FromListing(listing)); err != nil {
			return dto.ListingDetail{}, err
		}
	}
	if err := outbox.DrainInto(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return dto.ListingDetail{}, err
	}
	return dto.MapListingDetail(listing), nil
}

var _ commands.Handler[CreateListingCommand, dto.ListingDetail] = (*CreateListingHandler)(nil)
