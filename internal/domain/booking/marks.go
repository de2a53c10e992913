package booking

import (
	"rentbook/internal/domain/availability"
	"rentbook/internal/domain/shared/daterange"
)

// Mark is the per-day annotation a calendar widget renders. Endpoints are
// Selected with StartingDay or EndingDay; days strictly between them are
// InRange.
type Mark struct {
	Disabled    bool
	Selected    bool
	StartingDay bool
	EndingDay   bool
	InRange     bool
}

// BuildMarkedDates annotates unavailable days and the selected range. An
// unavailable day stays disabled whatever its place in the range, and
// unavailable days between the endpoints get no in-range mark. A single-day
// range gets one mark that both starts and ends. Interior days of a range
// longer than daterange.MaxRangeDays are not marked.
func BuildMarkedDates(r daterange.Range, unavailable availability.DateSet) map[daterange.Date]Mark {
	marks := make(map[daterange.Date]Mark, len(unavailable)+2)
	for d := range unavailable {
		marks[d] = Mark{Disabled: true}
	}
	endpoint := func(d daterange.Date, starting, ending bool) {
		marks[d] = Mark{
			Disabled:    unavailable.Contains(d),
			Selected:    true,
			StartingDay: starting,
			EndingDay:   ending,
		}
	}
	if r.Start.IsZero() {
		return marks
	}
	if r.End.IsZero() {
		endpoint(r.Start, true, false)
		return marks
	}
	if r.End.Equal(r.Start) {
		endpoint(r.Start, true, true)
		return marks
	}
	endpoint(r.Start, true, false)
	endpoint(r.End, false, true)
	if r.TooLong() {
		return marks
	}
	for d := r.Start.AddDays(1); d.Before(r.End); d = d.AddDays(1) {
		if !unavailable.Contains(d) {
			marks[d] = Mark{InRange: true}
		}
	}
	return marks
}
