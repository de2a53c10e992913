package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"rentbook/internal/domain/listings"
	"rentbook/internal/domain/shared/daterange"
	"rentbook/internal/domain/shared/events"
)

var (
	ErrOverlappingRange = errors.New("availability: range overlaps with an existing block")
	ErrRangeNotFound    = errors.New("availability: range not found")
	ErrCalendarNotFound = errors.New("availability: calendar not found")
)

type BlockReason string

const (
	ReasonBooking   BlockReason = "BOOKING"
	ReasonHostBlock BlockReason = "HOST_BLOCK"
)

type Block struct {
	Range     daterange.Range
	Reason    BlockReason
	Reference string
	CreatedAt time.Time
}

type Calendar struct {
	ListingID listings.ListingID
	Blocks    []Block
	Version   int64
	events.EventRecorder
}

type Repository interface {
	Calendar(ctx context.Context, id listings.ListingID) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
}

func NewCalendar(id listings.ListingID) *Calendar {
	return &Calendar{ListingID: id}
}

// FromListing seeds a calendar with the seller's up-front blocks. It records
// no events: the blocks already exist on the listing.
func FromListing(listing *listings.Listing) *Calendar {
	c := NewCalendar(listing.ID)
	for i, r := range listing.Unavailable {
		if !r.Valid() {
			continue
		}
		c.appendBlock(Block{
			Range:     r,
			Reason:    ReasonHostBlock,
			Reference: seedReference(listing.ID, i),
			CreatedAt: listing.CreatedAt,
		})
	}
	return c
}

func seedReference(id listings.ListingID, idx int) string {
	return fmt.Sprintf("%s-host-%d", id, idx)
}

func (c *Calendar) CanReserve(r daterange.Range) bool {
	if !r.Valid() {
		return false
	}
	for _, block := range c.Blocks {
		if block.Range.Overlaps(r) {
			return false
		}
	}
	return true
}

func (c *Calendar) Reserve(r daterange.Range, bookingID string, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if !c.CanReserve(r) {
		c.Record(CalendarOverbookingPrevented{ListingID: string(c.ListingID), Range: r, BookingID: bookingID, At: now.UTC()})
		return ErrOverlappingRange
	}
	block := Block{Range: r, Reason: ReasonBooking, Reference: bookingID, CreatedAt: now.UTC()}
	c.appendBlock(block)
	c.recordBlocked(block)
	return nil
}

func (c *Calendar) BlockRange(r daterange.Range, reason BlockReason, reference string, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if reason == "" {
		reason = ReasonHostBlock
	}
	if !c.CanReserve(r) {
		return ErrOverlappingRange
	}
	block := Block{Range: r, Reason: reason, Reference: reference, CreatedAt: now.UTC()}
	c.appendBlock(block)
	c.recordBlocked(block)
	return nil
}

func (c *Calendar) Release(reference string, now time.Time) error {
	idx := -1
	for i, block := range c.Blocks {
		if block.Reference == reference {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrRangeNotFound
	}
	removed := c.Blocks[idx]
	c.Blocks = append(c.Blocks[:idx], c.Blocks[idx+1:]...)
	c.recordReleased(removed, now)
	return nil
}

// Ranges lists blocked ranges in start order.
func (c *Calendar) Ranges() []daterange.Range {
	out := make([]daterange.Range, 0, len(c.Blocks))
	for _, block := range c.Blocks {
		out = append(out, block.Range)
	}
	return out
}

func (c *Calendar) UnavailableDates() DateSet {
	return ExpandRanges(c.Ranges())
}

func (c *Calendar) appendBlock(block Block) {
	c.Blocks = append(c.Blocks, block)
	sort.SliceStable(c.Blocks, func(i, j int) bool {
		return c.Blocks[i].Range.Start.Before(c.Blocks[j].Range.Start)
	})
}
