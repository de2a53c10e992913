package daterange

import (
	"errors"
	"fmt"
	"time"
)

// MaxRangeDays is the longest span, in billable days, a range may cover.
const MaxRangeDays = 365

var (
	ErrInvalidRange = errors.New("daterange: end must not be before start")
	ErrRangeTooLong = fmt.Errorf("%w: range longer than %d days", ErrInvalidRange, MaxRangeDays)
)

// Range is a closed interval of calendar days [Start, End]. Either end may be
// missing while a selection is in progress.
type Range struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

func NewRange(start, end Date) (Range, error) {
	r := Range{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// ParseRange parses two ISO dates; empty strings stay missing. Complete
// ranges longer than MaxRangeDays are refused.
func ParseRange(start, end string) (Range, error) {
	var r Range
	if err := r.Start.UnmarshalText([]byte(start)); err != nil {
		return Range{}, err
	}
	if err := r.End.UnmarshalText([]byte(end)); err != nil {
		return Range{}, err
	}
	if r.TooLong() {
		return Range{}, ErrRangeTooLong
	}
	return r, nil
}

func (r Range) Validate() error {
	if !IsValidRange(r.Start, r.End) {
		return ErrInvalidRange
	}
	if r.TooLong() {
		return ErrRangeTooLong
	}
	return nil
}

// TooLong reports whether a complete range spans more than MaxRangeDays.
func (r Range) TooLong() bool {
	return r.Complete() && InclusiveDayCount(r.Start, r.End) > MaxRangeDays
}

func (r Range) HasStart() bool { return !r.Start.IsZero() }

// Complete reports whether both ends are present, regardless of order.
func (r Range) Complete() bool { return !r.Start.IsZero() && !r.End.IsZero() }

func (r Range) Valid() bool { return IsValidRange(r.Start, r.End) }

// Days is the billable day count of the range.
func (r Range) Days() int {
	return InclusiveDayCount(r.Start, r.End)
}

func (r Range) Contains(d Date) bool {
	if !r.Valid() || d.IsZero() {
		return false
	}
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r Range) Overlaps(other Range) bool {
	if !r.Valid() || !other.Valid() {
		return false
	}
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

func (r Range) Adjacent(other Range) bool {
	if !r.Valid() || !other.Valid() {
		return false
	}
	return r.End.AddDays(1).Equal(other.Start) || other.End.AddDays(1).Equal(r.Start)
}

func (r Range) Merge(other Range) (Range, bool) {
	if !(r.Overlaps(other) || r.Adjacent(other)) {
		return Range{}, false
	}
	start := r.Start
	if other.Start.Before(start) {
		start = other.Start
	}
	end := r.End
	if other.End.After(end) {
		end = other.End
	}
	return Range{Start: start, End: end}, true
}

// Dates expands the closed range into its calendar days.
func (r Range) Dates() []Date {
	if !r.Valid() {
		return nil
	}
	out := make([]Date, 0, daysBetween(r.Start, r.End)+1)
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// InclusiveDayCount is the absolute whole-day difference between two dates
// with a floor of one, so a same-day booking counts as a day. A missing end
// counts as one day as well.
func InclusiveDayCount(start, end Date) int {
	if start.IsZero() || end.IsZero() {
		return 1
	}
	days := daysBetween(start, end)
	if days < 0 {
		days = -days
	}
	if days < 1 {
		return 1
	}
	return days
}

// Today resolves the calendar date of now in now's location.
func Today(now time.Time) Date {
	return FromTime(now)
}

// TodayISO is the current local calendar date.
func TodayISO() string {
	return Today(time.Now()).String()
}

func IsPast(d Date, now time.Time) bool {
	return d.Before(Today(now))
}

func IsValidRange(start, end Date) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return !end.Before(start)
}
