package memory

import (
	"context"
	"sort"
	"sync"

	"rentbook/internal/app/uow"
	domainavailability "rentbook/internal/domain/availability"
	domainbooking "rentbook/internal/domain/booking"
	domainlistings "rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/events"
)

// Repositories hand out copies and store copies, so an aggregate changed by a
// failed command never leaks into the store. Save rejects a copy whose
// version is stale.

// ListingRepository is an in-memory catalog.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[listing.ID]; ok && current.Version != listing.Version {
		return uow.ErrConcurrentUpdate
	}
	listing.Version++
	r.items[listing.ID] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	all := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		all = append(all, cloneListing(listing))
	}
	r.mu.RUnlock()
	return params.Apply(all), nil
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	cp := *l
	cp.EventRecorder = events.EventRecorder{}
	cp.Photos = append([]string(nil), l.Photos...)
	cp.Unavailable = append([]daterange.Range(nil), l.Unavailable...)
	return &cp
}

// AvailabilityRepository keeps one calendar per listing.
type AvailabilityRepository struct {
	mu        sync.RWMutex
	calendars map[domainlistings.ListingID]*domainavailability.Calendar
}

func NewAvailabilityRepository() *AvailabilityRepository {
	return &AvailabilityRepository{
		calendars: make(map[domainlistings.ListingID]*domainavailability.Calendar),
	}
}

func (r *AvailabilityRepository) Calendar(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cal, ok := r.calendars[id]
	if !ok {
		return nil, domainavailability.ErrCalendarNotFound
	}
	return cloneCalendar(cal), nil
}

func (r *AvailabilityRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.calendars[calendar.ListingID]; ok && current.Version != calendar.Version {
		return uow.ErrConcurrentUpdate
	}
	calendar.Version++
	r.calendars[calendar.ListingID] = cloneCalendar(calendar)
	return nil
}

func cloneCalendar(c *domainavailability.Calendar) *domainavailability.Calendar {
	cp := *c
	cp.EventRecorder = events.EventRecorder{}
	cp.Blocks = append([]domainavailability.Block(nil), c.Blocks...)
	return &cp
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[b.ID]; ok && current.Version != b.Version {
		return uow.ErrConcurrentUpdate
	}
	b.Version++
	r.items[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.CustomerID == customerID }), nil
}

func (r *BookingRepository) ListBySeller(ctx context.Context, sellerID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.SellerID == sellerID }), nil
}

func (r *BookingRepository) ListByStatus(ctx context.Context, status domainbooking.Status) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.Status == status }), nil
}

// filter returns matching copies ordered by creation time.
func (r *BookingRepository) filter(keep func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	r.mu.RLock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}

var (
	_ domainlistings.ListingRepository = (*ListingRepository)(nil)
	_ domainavailability.Repository    = (*AvailabilityRepository)(nil)
	_ domainbooking.Repository         = (*BookingRepository)(nil)
)
