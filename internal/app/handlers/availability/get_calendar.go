package availability

import (
	"context"
	"time"

	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	domainlistings "rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
)

const getCalendarKey = "availability.calendar"

// GetCalendarQuery optionally carries the current selection so the marks can
// be rendered without a picker session.
type GetCalendarQuery struct {
	ListingID string
	Start     string
	End       string
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	selection, err := daterange.ParseRange(q.Start, q.End)
	if err != nil {
		return dto.Calendar{}, err
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Calendar{}, err
	}
	calendar, err := handlersupport.CalendarFor(execCtx, unit, listing)
	if err != nil {
		return dto.Calendar{}, err
	}

	today := daterange.Today(handlersupport.Now(h.Now))
	return dto.MapCalendar(calendar, selection, today), nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
