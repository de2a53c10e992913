package uow

import (
	"context"
	"errors"

	domainavailability "rentbook/internal/domain/availability"
	domainbooking "rentbook/internal/domain/booking"
	domainlistings "rentbook/internal/domain/listings"
)

// ErrConcurrentUpdate is returned by repositories when an aggregate changed
// since it was loaded.
var ErrConcurrentUpdate = errors.New("uow: concurrent update detected")

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlistings.ListingRepository
	Availability() domainavailability.Repository
	Bookings() domainbooking.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
