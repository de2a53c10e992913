package listings

import (
	"context"
	"time"

	"rentbook/internal/app/actor"
	"rentbook/internal/app/commands"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/outbox"
	"rentbook/internal/app/uow"
	domainlistings "rentbook/internal/domain/listings"
)

const activateListingKey = "listings.activate"

type ActivateListingCommand struct {
	ListingID string
}

func (c ActivateListingCommand) Key() string               { return activateListingKey }
func (c ActivateListingCommand) Access() middleware.Access { return middleware.AccessSeller }

type ActivateListingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *ActivateListingHandler) Handle(ctx context.Context, cmd ActivateListingCommand) (dto.ListingDetail, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	listing, err := ownedListing(ctx, unit, cmd.ListingID)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	if err := listing.Activate(handlersupport.Now(h.Now)); err != nil {
		return dto.ListingDetail{}, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.ListingDetail{}, err
	}
	if err := outbox.DrainInto(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return dto.ListingDetail{}, err
	}
	return dto.MapListingDetail(listing), nil
}

// ownedListing loads a listing the acting seller may modify.
func ownedListing(ctx context.Context, unit uow.UnitOfWork, id string) (*domainlistings.Listing, error) {
	seller, err := actor.RequireSeller(ctx)
	if err != nil {
		return nil, err
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(id))
	if err != nil {
		return nil, err
	}
	if listing.Seller != domainlistings.SellerID(seller.UserID) {
		return nil, actor.ErrNotResourceOf
	}
	return listing, nil
}

var _ commands.Handler[ActivateListingCommand, dto.ListingDetail] = (*ActivateListingHandler)(nil)
