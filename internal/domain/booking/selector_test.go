package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/domain/availability"
	"rentbook/internal/domain/shared/daterange"
)

func d(s string) daterange.Date { return daterange.MustParse(s) }

func TestSelectorTapBeforeStartRestarts(t *testing.T) {
	s := NewSelector(nil, daterange.Range{})
	require.True(t, s.Tap(d("2024-04-10")))
	require.True(t, s.Tap(d("2024-04-05")))

	assert.Equal(t, SelectionStartOnly, s.State())
	assert.Equal(t, daterange.Range{Start: d("2024-04-05")}, s.Range())
}

func TestSelectorTransitions(t *testing.T) {
	s := NewSelector(availability.NewDateSet(d("2024-04-12")), daterange.Range{})
	assert.Equal(t, SelectionEmpty, s.State())

	assert.False(t, s.Tap(d("2024-04-12")), "unavailable day is ignored")
	assert.Equal(t, SelectionEmpty, s.State())

	s.Tap(d("2024-04-10"))
	s.Tap(d("2024-04-10"))
	assert.Equal(t, SelectionComplete, s.State())
	r, err := s.Confirm()
	require.NoError(t, err)
	assert.Equal(t, 1, r.Days())

	s.Tap(d("2024-04-20"))
	assert.Equal(t, daterange.Range{Start: d("2024-04-20")}, s.Range(), "tap in complete restarts")

	s.Tap(d("2024-04-22"))
	assert.Equal(t, "2024-04-20..2024-04-22", s.Range().String())

	s.Clear()
	assert.Equal(t, SelectionEmpty, s.State())
	_, err = s.Confirm()
	assert.ErrorIs(t, err, ErrSelectionIncomplete)
}

func TestSelectorIgnoresUnavailableTapInEveryState(t *testing.T) {
	blocked := d("2024-04-12")
	s := NewSelector(availability.NewDateSet(blocked), daterange.Range{})

	assert.False(t, s.Tap(blocked))
	assert.Equal(t, daterange.Range{}, s.Range())

	require.True(t, s.Tap(d("2024-04-10")))
	assert.False(t, s.Tap(blocked))
	assert.Equal(t, daterange.Range{Start: d("2024-04-10")}, s.Range())
	assert.Equal(t, SelectionStartOnly, s.State())

	require.True(t, s.Tap(d("2024-04-14")))
	complete := s.Range()
	assert.False(t, s.Tap(blocked))
	assert.Equal(t, complete, s.Range())
	assert.Equal(t, SelectionComplete, s.State())
}

func TestSelectorIgnoresEndBeyondMaxSpan(t *testing.T) {
	s := NewSelector(nil, daterange.Range{})
	require.True(t, s.Tap(d("2024-01-01")))
	assert.False(t, s.Tap(d("9999-12-31")))
	assert.Equal(t, SelectionStartOnly, s.State())

	last := d("2024-01-01").AddDays(daterange.MaxRangeDays)
	assert.False(t, s.Tap(last.AddDays(1)))
	assert.True(t, s.Tap(last))
	assert.Equal(t, daterange.MaxRangeDays, s.Range().Days())
}

func TestSelectorCanSpanUnavailableDay(t *testing.T) {
	s := NewSelector(availability.NewDateSet(d("2024-04-12")), daterange.Range{})
	s.Tap(d("2024-04-10"))
	s.Tap(d("2024-04-14"))
	assert.Equal(t, SelectionComplete, s.State())
}

func TestSelectorMinDate(t *testing.T) {
	s := NewSelector(nil, daterange.Range{}, WithMinDate(d("2024-04-10")))
	assert.False(t, s.Tap(d("2024-04-09")))
	assert.True(t, s.Tap(d("2024-04-10")))
	assert.Equal(t, d("2024-04-10"), s.MinDate())
}

func TestNewSelectorSeeds(t *testing.T) {
	tests := []struct {
		name string
		seed daterange.Range
		want SelectionState
	}{
		{"empty", daterange.Range{}, SelectionEmpty},
		{"start only", daterange.Range{Start: d("2024-04-05")}, SelectionStartOnly},
		{"complete", daterange.Range{Start: d("2024-04-05"), End: d("2024-04-06")}, SelectionComplete},
		{"reversed", daterange.Range{Start: d("2024-04-06"), End: d("2024-04-05")}, SelectionEmpty},
		{"end only", daterange.Range{End: d("2024-04-06")}, SelectionEmpty},
		{"unavailable start", daterange.Range{Start: d("2024-04-12"), End: d("2024-04-14")}, SelectionEmpty},
		{"unavailable end", daterange.Range{Start: d("2024-04-10"), End: d("2024-04-12")}, SelectionStartOnly},
		{"start before min date", daterange.Range{Start: d("2024-04-01"), End: d("2024-04-06")}, SelectionEmpty},
		{"longer than max span", daterange.Range{Start: d("2024-04-05"), End: d("2026-04-05")}, SelectionStartOnly},
	}
	unavailable := availability.NewDateSet(d("2024-04-12"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector(unavailable, tt.seed, WithMinDate(d("2024-04-02")))
			assert.Equal(t, tt.want, s.State())
		})
	}
}

func TestConfirmDoesNotChangeState(t *testing.T) {
	seed := daterange.Range{Start: d("2024-04-05"), End: d("2024-04-08")}
	s := NewSelector(nil, seed)
	r1, err := s.Confirm()
	require.NoError(t, err)
	r2, err := s.Confirm()
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
	assert.Equal(t, SelectionComplete, s.State())
}

func TestBuildMarkedDates(t *testing.T) {
	unavailable := availability.NewDateSet(d("2024-04-12"), d("2024-04-20"))
	marks := BuildMarkedDates(daterange.Range{Start: d("2024-04-10"), End: d("2024-04-14")}, unavailable)

	assert.Equal(t, Mark{Selected: true, StartingDay: true}, marks[d("2024-04-10")])
	assert.Equal(t, Mark{InRange: true}, marks[d("2024-04-11")])
	assert.Equal(t, Mark{Disabled: true}, marks[d("2024-04-12")], "unavailable wins inside the range")
	assert.Equal(t, Mark{InRange: true}, marks[d("2024-04-13")])
	assert.Equal(t, Mark{Selected: true, EndingDay: true}, marks[d("2024-04-14")])
	assert.Equal(t, Mark{Disabled: true}, marks[d("2024-04-20")])
	assert.Len(t, marks, 6)
}

func TestBuildMarkedDatesKeepsUnavailableEndpointsDisabled(t *testing.T) {
	r := daterange.Range{Start: d("2024-03-01"), End: d("2024-03-04")}
	marks := BuildMarkedDates(r, availability.NewDateSet(d("2024-03-01"), d("2024-03-04")))

	assert.Equal(t, Mark{Disabled: true, Selected: true, StartingDay: true}, marks[d("2024-03-01")])
	assert.Equal(t, Mark{Disabled: true, Selected: true, EndingDay: true}, marks[d("2024-03-04")])
	assert.Equal(t, Mark{InRange: true}, marks[d("2024-03-02")])

	single := BuildMarkedDates(daterange.Range{Start: d("2024-03-04"), End: d("2024-03-04")}, availability.NewDateSet(d("2024-03-04")))
	assert.Equal(t, Mark{Disabled: true, Selected: true, StartingDay: true, EndingDay: true}, single[d("2024-03-04")])
}

func TestBuildMarkedDatesSkipsInteriorOfOversizedRange(t *testing.T) {
	marks := BuildMarkedDates(daterange.Range{Start: d("0001-01-01"), End: d("9999-12-31")}, nil)
	assert.Len(t, marks, 2)
	assert.True(t, marks[d("0001-01-01")].StartingDay)
	assert.True(t, marks[d("9999-12-31")].EndingDay)
}

func TestBuildMarkedDatesSingleDayAndPartial(t *testing.T) {
	marks := BuildMarkedDates(daterange.Range{Start: d("2024-04-10"), End: d("2024-04-10")}, nil)
	require.Len(t, marks, 1)
	assert.Equal(t, Mark{Selected: true, StartingDay: true, EndingDay: true}, marks[d("2024-04-10")])

	marks = BuildMarkedDates(daterange.Range{Start: d("2024-04-10")}, nil)
	assert.Equal(t, map[daterange.Date]Mark{d("2024-04-10"): {Selected: true, StartingDay: true}}, marks)

	assert.Empty(t, BuildMarkedDates(daterange.Range{}, nil))
}
