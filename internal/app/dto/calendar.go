package dto

import (
	"rentbook/internal/domain/availability"
	domainbooking "rentbook/internal/domain/booking"
	"rentbook/internal/domain/shared/daterange"
)

type Mark struct {
	Disabled    bool `json:"disabled,omitempty"`
	Selected    bool `json:"selected,omitempty"`
	StartingDay bool `json:"starting_day,omitempty"`
	EndingDay   bool `json:"ending_day,omitempty"`
	InRange     bool `json:"in_range,omitempty"`
}

// MapMarks keys marks by ISO date; encoding/json sorts map keys.
func MapMarks(marks map[daterange.Date]domainbooking.Mark) map[string]Mark {
	out := make(map[string]Mark, len(marks))
	for d, m := range marks {
		out[d.String()] = Mark(m)
	}
	return out
}

type CalendarBlock struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

type Calendar struct {
	ListingID   string          `json:"listing_id"`
	MinDate     string          `json:"min_date,omitempty"`
	Blocks      []CalendarBlock `json:"blocks"`
	Unavailable []string        `json:"unavailable"`
	Marked      map[string]Mark `json:"marked"`
}

func MapCalendar(cal *availability.Calendar, selection daterange.Range, minDate daterange.Date) Calendar {
	if cal == nil {
		return Calendar{}
	}
	blocks := make([]CalendarBlock, 0, len(cal.Blocks))
	for _, b := range cal.Blocks {
		blocks = append(blocks, CalendarBlock{
			Start:  b.Range.Start.String(),
			End:    b.Range.End.String(),
			Reason: string(b.Reason),
		})
	}
	unavailable := cal.UnavailableDates()
	return Calendar{
		ListingID:   string(cal.ListingID),
		MinDate:     minDate.String(),
		Blocks:      blocks,
		Unavailable: isoDates(unavailable.Sorted()),
		Marked:      MapMarks(domainbooking.BuildMarkedDates(selection, unavailable)),
	}
}

func isoDates(dates []daterange.Date) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.String())
	}
	return out
}
