package booking

import (
	"context"
	"sort"

	"rentbook/internal/app/actor"
	"rentbook/internal/app/dto"
	handlersupport "rentbook/internal/app/handlers/support"
	"rentbook/internal/app/middleware"
	"rentbook/internal/app/queries"
	"rentbook/internal/app/uow"
	domainbooking "rentbook/internal/domain/booking"
)

const (
	listMineKey   = "bookings.mine"
	getBookingKey = "bookings.get"
)

// ListMyBookingsQuery returns a buyer's own bookings, or the bookings made on
// a seller's listings. Status optionally filters.
type ListMyBookingsQuery struct {
	Status string
}

func (q ListMyBookingsQuery) Key() string               { return listMineKey }
func (q ListMyBookingsQuery) Access() middleware.Access { return middleware.AccessUser }

type ListMyBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListMyBookingsHandler) Handle(ctx context.Context, q ListMyBookingsQuery) (dto.BookingCollection, error) {
	user, err := actor.Require(ctx)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var items []*domainbooking.Booking
	if user.IsSeller() {
		items, err = unit.Bookings().ListBySeller(execCtx, user.UserID)
	} else {
		items, err = unit.Bookings().ListByCustomer(execCtx, user.UserID)
	}
	if err != nil {
		return dto.BookingCollection{}, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	out := dto.BookingCollection{Items: make([]dto.Booking, 0, len(items))}
	for _, b := range items {
		if q.Status != "" && string(b.Status) != q.Status {
			continue
		}
		out.Items = append(out.Items, dto.MapBooking(b))
	}
	return out, nil
}

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string               { return getBookingKey }
func (q GetBookingQuery) Access() middleware.Access { return middleware.AccessUser }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	user, err := actor.Require(ctx)
	if err != nil {
		return dto.Booking{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	b, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	if !b.InvolvesUser(user.UserID) {
		return dto.Booking{}, domainbooking.ErrBookingNotFound
	}
	return dto.MapBooking(b), nil
}

var (
	_ queries.Handler[ListMyBookingsQuery, dto.BookingCollection] = (*ListMyBookingsHandler)(nil)
	_ queries.Handler[GetBookingQuery, dto.Booking]               = (*GetBookingHandler)(nil)
)
