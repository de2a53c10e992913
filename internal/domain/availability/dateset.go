package availability

import (
	"sort"

	"rentbook/internal/domain/shared/daterange"
)

// DateSet is a set of calendar days.
type DateSet map[daterange.Date]struct{}

func NewDateSet(dates ...daterange.Date) DateSet {
	set := make(DateSet, len(dates))
	for _, d := range dates {
		set.Add(d)
	}
	return set
}

func (s DateSet) Add(d daterange.Date) {
	if d.IsZero() {
		return
	}
	s[d] = struct{}{}
}

func (s DateSet) Contains(d daterange.Date) bool {
	_, ok := s[d]
	return ok
}

// ContainsAny reports whether any day of the closed range is in the set.
func (s DateSet) ContainsAny(r daterange.Range) bool {
	for _, d := range r.Dates() {
		if s.Contains(d) {
			return true
		}
	}
	return false
}

// Sorted returns the members in ascending order.
func (s DateSet) Sorted() []daterange.Date {
	out := make([]daterange.Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ExpandRanges flattens closed ranges into the set of every day they cover.
// Reversed or incomplete ranges contribute nothing.
func ExpandRanges(ranges []daterange.Range) DateSet {
	set := make(DateSet)
	for _, r := range ranges {
		for _, d := range r.Dates() {
			set.Add(d)
		}
	}
	return set
}

func IsDateUnavailable(d daterange.Date, ranges []daterange.Range) bool {
	for _, r := range ranges {
		if r.Contains(d) {
			return true
		}
	}
	return false
}
