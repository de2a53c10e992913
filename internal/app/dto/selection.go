package dto

import (
	"time"

	domainbooking "rentbook/internal/domain/booking"
)

// Selection is a snapshot of a date picker session.
type Selection struct {
	SessionID string          `json:"session_id"`
	ListingID string          `json:"listing_id"`
	State     string          `json:"state"`
	Range     DateRange       `json:"range"`
	MinDate   string          `json:"min_date,omitempty"`
	Marked    map[string]Mark `json:"marked"`
	Changed   bool            `json:"changed"`
	ExpiresAt time.Time       `json:"expires_at"`
	// Quote is filled once the range is complete.
	Quote *Quote `json:"quote,omitempty"`
}

func MapSelection(sessionID, listingID string, s *domainbooking.Selector, expiresAt time.Time) Selection {
	return Selection{
		SessionID: sessionID,
		ListingID: listingID,
		State:     string(s.State()),
		Range:     MapRange(s.Range()),
		MinDate:   s.MinDate().String(),
		Marked:    MapMarks(s.MarkedDates()),
		ExpiresAt: expiresAt,
	}
}
