package chart

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var applicantStatuses = []string{"pending", "reviewed", "rejected", "hired"}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func keys(s Series) []string {
	out := make([]string, 0, len(s.Periods))
	for _, p := range s.Periods {
		out = append(out, p.Key)
	}
	return out
}

func TestAggregateExampleScenario(t *testing.T) {
	events := []Event{
		{Timestamp: date(2024, time.January, 5), Category: "pending"},
		{Timestamp: date(2024, time.February, 10), Category: "hired"},
	}
	s, err := Aggregate(events, Options{
		Granularity: GranularityMonth,
		Start:       date(2024, time.January, 1),
		End:         date(2024, time.February, 29),
		Categories:  applicantStatuses,
	})
	require.NoError(t, err)
	require.Len(t, s.Periods, 2)

	assert.Equal(t, "2024-01", s.Periods[0].Key)
	assert.Equal(t, "Jan 24", s.Periods[0].Label)
	assert.Equal(t, map[string]int{"pending": 1, "reviewed": 0, "rejected": 0, "hired": 0}, s.Periods[0].Counts)
	assert.Equal(t, 1, s.Periods[0].Total)

	assert.Equal(t, "2024-02", s.Periods[1].Key)
	assert.Equal(t, map[string]int{"pending": 0, "reviewed": 0, "rejected": 0, "hired": 1}, s.Periods[1].Counts)
	assert.Equal(t, 1, s.Periods[1].Total)
	assert.Zero(t, s.Unbucketed)
}

func TestISOWeekFixtures(t *testing.T) {
	cases := map[time.Time]string{
		date(2024, time.January, 1):   "2024-W01",
		date(2023, time.December, 31): "2023-W52",
		date(2021, time.January, 3):   "2020-W53",
		date(2024, time.December, 30): "2025-W01",
		date(2024, time.January, 15):  "2024-W03",
	}
	for ts, want := range cases {
		assert.Equal(t, want, PeriodKey(ts, GranularityWeek, nil), ts.Format(time.DateOnly))
	}
	assert.Equal(t, "W03 2024", Label("2024-W03", GranularityWeek))
}

func TestMonthStepAllTransitions(t *testing.T) {
	for m := 1; m <= 12; m++ {
		key := fmt.Sprintf("2024-%02d", m)
		want := fmt.Sprintf("2024-%02d", m+1)
		if m == 12 {
			want = "2025-01"
		}
		got, err := NextKey(key, GranularityMonth, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got, "step from %s", key)
	}
}

func TestMonthEnumerationFromEndOfMonth(t *testing.T) {
	// A start on the 31st must not skip February.
	s, err := Aggregate(nil, Options{
		Granularity: GranularityMonth,
		Start:       date(2024, time.January, 31),
		End:         date(2024, time.April, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03", "2024-04"}, keys(s))
}

func TestBucketCountInclusiveBounds(t *testing.T) {
	now := time.Date(2024, time.June, 15, 13, 30, 0, 0, time.UTC)
	start, end, err := RangeForMonths(now, 6, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.December, 15, 13, 30, 0, 0, time.UTC), start)

	s, err := Aggregate(nil, Options{Granularity: GranularityMonth, Start: start, End: end})
	require.NoError(t, err)
	// Both the partial start month and the current month are emitted.
	assert.Len(t, s.Periods, 7)
	assert.Equal(t, "2023-12", s.Periods[0].Key)
	assert.Equal(t, "2024-06", s.Periods[6].Key)

	days, err := Aggregate(nil, Options{Granularity: GranularityDay, Start: date(2024, time.February, 1), End: date(2024, time.March, 1)})
	require.NoError(t, err)
	assert.Len(t, days.Periods, 30)

	weeks, err := Aggregate(nil, Options{Granularity: GranularityWeek, Start: date(2024, time.January, 3), End: date(2024, time.January, 29)})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-W01", "2024-W02", "2024-W03", "2024-W04", "2024-W05"}, keys(weeks))
}

func TestGapFillWithoutRecords(t *testing.T) {
	s, err := Aggregate(nil, Options{
		Granularity: GranularityDay,
		Start:       date(2024, time.March, 1),
		End:         date(2024, time.March, 3),
		Categories:  applicantStatuses,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, keys(s))
	for _, p := range s.Periods {
		assert.Zero(t, p.Total)
		assert.Equal(t, p.Key, p.Label)
		for _, c := range applicantStatuses {
			assert.Zero(t, p.Counts[c])
		}
	}
}

func TestAggregateDropsAndCounts(t *testing.T) {
	events := []Event{
		{Timestamp: date(2024, time.January, 2), Category: "pending"},
		{Timestamp: date(2024, time.January, 2), Category: "reviewed"},
		{Timestamp: date(2024, time.January, 3), Category: "archived"},
		{Timestamp: date(2023, time.December, 1), Category: "pending"},
		{Timestamp: date(2024, time.February, 1), Category: "hired"},
		{Category: "pending"},
	}
	s, err := Aggregate(events, Options{
		Granularity: GranularityMonth,
		Start:       date(2024, time.January, 1),
		End:         date(2024, time.January, 31),
		Categories:  applicantStatuses,
	})
	require.NoError(t, err)
	require.Len(t, s.Periods, 1)

	p := s.Periods[0]
	assert.Equal(t, 3, p.Total)
	sum := 0
	for _, c := range applicantStatuses {
		sum += p.Counts[c]
	}
	assert.Equal(t, 2, sum)
	_, present := p.Counts["archived"]
	assert.False(t, present)
	assert.Equal(t, 3, s.Unbucketed)
}

func TestAggregateIsIdempotent(t *testing.T) {
	events := []Event{
		{Timestamp: date(2024, time.May, 1), Category: "pending"},
		{Timestamp: date(2024, time.May, 20), Category: "rejected"},
		{Timestamp: date(2024, time.June, 2), Category: "hired"},
	}
	opts := Options{
		Granularity: GranularityWeek,
		Start:       date(2024, time.April, 28),
		End:         date(2024, time.June, 10),
		Categories:  applicantStatuses,
	}
	first, err := Aggregate(events, opts)
	require.NoError(t, err)
	second, err := Aggregate(events, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAggregateRespectsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// 22:30 UTC on Jan 31 is already Feb 1 at UTC+3.
	ev := Event{Timestamp: time.Date(2024, time.January, 31, 22, 30, 0, 0, time.UTC), Category: "pending"}
	s, err := Aggregate([]Event{ev}, Options{
		Granularity: GranularityMonth,
		Start:       date(2024, time.January, 1),
		End:         date(2024, time.February, 15),
		Categories:  applicantStatuses,
		Location:    loc,
	})
	require.NoError(t, err)
	require.Len(t, s.Periods, 2)
	assert.Equal(t, 0, s.Periods[0].Total)
	assert.Equal(t, 1, s.Periods[1].Counts["pending"])
}

func TestValidation(t *testing.T) {
	_, err := ParseGranularity("quarter")
	assert.True(t, errors.Is(err, ErrInvalidGranularity))

	g, err := ParseGranularity(" Week ")
	require.NoError(t, err)
	assert.Equal(t, GranularityWeek, g)

	for _, m := range []int{0, -1, 25} {
		assert.ErrorIs(t, ValidateMonths(m), ErrInvalidMonths, "months=%d", m)
	}
	assert.NoError(t, ValidateMonths(1))
	assert.NoError(t, ValidateMonths(24))

	_, err = Aggregate(nil, Options{Granularity: "year", Start: date(2024, 1, 1), End: date(2024, 2, 1)})
	assert.ErrorIs(t, err, ErrInvalidGranularity)

	_, err = Aggregate(nil, Options{Granularity: GranularityDay, Start: date(2024, 2, 1), End: date(2024, 1, 1)})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestAddMonthsClampsDay(t *testing.T) {
	assert.Equal(t, date(2024, time.February, 29), AddMonths(date(2024, time.March, 31), -1))
	assert.Equal(t, date(2023, time.February, 28), AddMonths(date(2023, time.January, 31), 1))
	assert.Equal(t, date(2025, time.January, 31), AddMonths(date(2024, time.December, 31), 1))
}

func TestParseKeyRejectsGarbage(t *testing.T) {
	_, err := ParseKey("2024-W60", GranularityWeek, nil)
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = ParseKey("2023-W53", GranularityWeek, nil)
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = ParseKey("24-01", GranularityMonth, nil)
	assert.ErrorIs(t, err, ErrInvalidKey)

	next, err := NextKey("2020-W53", GranularityWeek, nil)
	require.NoError(t, err)
	assert.Equal(t, "2021-W01", next)
}
