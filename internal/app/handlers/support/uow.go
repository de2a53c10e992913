package support

import (
	"context"
	"errors"
	"time"

	"rentbook/internal/app/uow"
	domainavailability "rentbook/internal/domain/availability"
	domainlistings "rentbook/internal/domain/listings"
)

// BeginReadOnlyUnit reuses the unit in ctx or opens a read-only one. The
// returned cleanup is nil when the unit was borrowed.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Bind(ctx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

// CalendarFor loads the listing's calendar, seeding it from the listing's own
// blocked ranges the first time.
func CalendarFor(ctx context.Context, unit uow.UnitOfWork, listing *domainlistings.Listing) (*domainavailability.Calendar, error) {
	cal, err := unit.Availability().Calendar(ctx, listing.ID)
	if errors.Is(err, domainavailability.ErrCalendarNotFound) {
		return domainavailability.FromListing(listing), nil
	}
	return cal, err
}

// Now returns clock() or the wall clock.
func Now(clock func() time.Time) time.Time {
	if clock != nil {
		return clock()
	}
	return time.Now()
}
