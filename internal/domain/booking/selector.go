package booking

import (
	"errors"

	"rentbook/internal/domain/availability"
	"rentbook/internal/domain/shared/daterange"
)

var ErrSelectionIncomplete = errors.New("booking: select both a start and an end date")

// SelectionState is the phase of an in-progress range pick.
type SelectionState string

const (
	SelectionEmpty     SelectionState = "empty"
	SelectionStartOnly SelectionState = "start_only"
	SelectionComplete  SelectionState = "complete"
)

// Selector turns a sequence of day taps into a valid closed range that avoids
// unavailable days. It is owned by one booking attempt and is not safe for
// concurrent use.
type Selector struct {
	unavailable availability.DateSet
	minDate     daterange.Date
	current     daterange.Range
}

type Option func(*Selector)

// WithMinDate ignores taps on days before min, usually today.
func WithMinDate(min daterange.Date) Option {
	return func(s *Selector) {
		s.minDate = min
	}
}

// NewSelector starts Complete from a valid seed, StartOnly from a seed with
// only a start, and Empty otherwise. Seed endpoints go through the same
// checks as taps: a reversed seed or an unselectable start leaves the
// selector Empty, and an unselectable end is dropped.
func NewSelector(unavailable availability.DateSet, seed daterange.Range, opts ...Option) *Selector {
	if unavailable == nil {
		unavailable = availability.NewDateSet()
	}
	s := &Selector{unavailable: unavailable}
	for _, opt := range opts {
		opt(s)
	}
	if !seed.HasStart() || !s.Selectable(seed.Start) || (seed.Complete() && !seed.Valid()) {
		return s
	}
	s.current = daterange.Range{Start: seed.Start}
	if seed.Valid() && !seed.TooLong() && s.Selectable(seed.End) {
		s.current.End = seed.End
	}
	return s
}

func (s *Selector) State() SelectionState {
	switch {
	case s.current.Start.IsZero():
		return SelectionEmpty
	case s.current.End.IsZero():
		return SelectionStartOnly
	default:
		return SelectionComplete
	}
}

func (s *Selector) Range() daterange.Range {
	return s.current
}

// Selectable reports whether a tap on d would be acted upon.
func (s *Selector) Selectable(d daterange.Date) bool {
	if d.IsZero() || s.unavailable.Contains(d) {
		return false
	}
	if !s.minDate.IsZero() && d.Before(s.minDate) {
		return false
	}
	return true
}

// Tap applies a day press and reports whether the state changed. A tap before
// the current start restarts the range there instead of producing a reversed
// range; an end that would make the range longer than daterange.MaxRangeDays
// is ignored.
func (s *Selector) Tap(d daterange.Date) bool {
	if !s.Selectable(d) {
		return false
	}
	switch s.State() {
	case SelectionStartOnly:
		if d.Before(s.current.Start) {
			s.current = daterange.Range{Start: d}
			break
		}
		candidate := daterange.Range{Start: s.current.Start, End: d}
		if candidate.TooLong() {
			return false
		}
		s.current = candidate
	default:
		s.current = daterange.Range{Start: d}
	}
	return true
}

func (s *Selector) Clear() {
	s.current = daterange.Range{}
}

// Confirm returns the selected range without changing state.
func (s *Selector) Confirm() (daterange.Range, error) {
	if s.State() != SelectionComplete {
		return daterange.Range{}, ErrSelectionIncomplete
	}
	return s.current, nil
}

func (s *Selector) MarkedDates() map[daterange.Date]Mark {
	return BuildMarkedDates(s.current, s.unavailable)
}

func (s *Selector) Unavailable() availability.DateSet {
	return s.unavailable
}

func (s *Selector) MinDate() daterange.Date {
	return s.minDate
}
