package availability

import (
	"time"

	"rentbook/internal/domain/shared/daterange"
)

const (
	EventCalendarBlocked      = "calendar.blocked"
	EventCalendarReleased     = "calendar.released"
	EventOverbookingPrevented = "calendar.overbooking_prevented"
)

// CalendarBlocked is recorded when a booking or a seller closes days.
type CalendarBlocked struct {
	ListingID string          `json:"listing_id"`
	Range     daterange.Range `json:"range"`
	Reason    BlockReason     `json:"reason"`
	Reference string          `json:"reference,omitempty"`
	At        time.Time       `json:"at"`
}

func (e CalendarBlocked) EventName() string     { return EventCalendarBlocked }
func (e CalendarBlocked) AggregateID() string   { return e.ListingID }
func (e CalendarBlocked) OccurredAt() time.Time { return e.At }

// CalendarReleased reopens the days of a removed block.
type CalendarReleased struct {
	ListingID string          `json:"listing_id"`
	Range     daterange.Range `json:"range"`
	Reason    BlockReason     `json:"reason"`
	Reference string          `json:"reference,omitempty"`
	At        time.Time       `json:"at"`
}

func (e CalendarReleased) EventName() string     { return EventCalendarReleased }
func (e CalendarReleased) AggregateID() string   { return e.ListingID }
func (e CalendarReleased) OccurredAt() time.Time { return e.At }

// CalendarOverbookingPrevented marks a reservation refused for overlap.
type CalendarOverbookingPrevented struct {
	ListingID string          `json:"listing_id"`
	Range     daterange.Range `json:"range"`
	BookingID string          `json:"booking_id,omitempty"`
	At        time.Time       `json:"at"`
}

func (e CalendarOverbookingPrevented) EventName() string     { return EventOverbookingPrevented }
func (e CalendarOverbookingPrevented) AggregateID() string   { return e.ListingID }
func (e CalendarOverbookingPrevented) OccurredAt() time.Time { return e.At }

func (c *Calendar) recordBlocked(b Block) {
	c.Record(CalendarBlocked{ListingID: string(c.ListingID), Range: b.Range, Reason: b.Reason, Reference: b.Reference, At: b.CreatedAt})
}

func (c *Calendar) recordReleased(b Block, now time.Time) {
	c.Record(CalendarReleased{ListingID: string(c.ListingID), Range: b.Range, Reason: b.Reason, Reference: b.Reference, At: now.UTC()})
}
