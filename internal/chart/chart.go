// Package chart turns timestamped, categorized records into gap-filled
// per-period counts for day, week and month granularities.
package chart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Granularity is the size of one bucket.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

const (
	MinMonths = 1
	MaxMonths = 24
)

var (
	ErrInvalidGranularity = errors.New("invalid granularity: must be day, week or month")
	ErrInvalidMonths      = fmt.Errorf("months must be between %d and %d", MinMonths, MaxMonths)
	ErrInvalidRange       = errors.New("invalid range: start must not be after end")
	ErrInvalidKey         = errors.New("invalid period key")
)

// Event is a single record to bucket.
type Event struct {
	Timestamp time.Time
	Category  string
}

// Options controls one aggregation run.
type Options struct {
	Granularity Granularity
	Start       time.Time
	End         time.Time
	Categories  []string
	// Location decides calendar boundaries. Nil means UTC.
	Location *time.Location
}

// Period is one bucket of the output series.
type Period struct {
	Key    string         `json:"key"`
	Label  string         `json:"label"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// Series is the gap-filled result. Unbucketed counts records that fell
// outside the enumerated periods or carried no timestamp.
type Series struct {
	Granularity Granularity `json:"granularity"`
	Categories  []string    `json:"categories"`
	Periods     []Period    `json:"periods"`
	Unbucketed  int         `json:"unbucketed"`
}

// ParseGranularity accepts day, week or month (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
	return g, nil
}

func (g Granularity) Valid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return true
	}
	return false
}

// ValidateMonths checks the lookback window bound.
func ValidateMonths(months int) error {
	if months < MinMonths || months > MaxMonths {
		return fmt.Errorf("%w: got %d", ErrInvalidMonths, months)
	}
	return nil
}

// RangeForMonths returns [now - months, now] in loc. The start day is clamped
// to the last day of the target month, so Mar 31 minus one month is Feb 29/28.
func RangeForMonths(now time.Time, months int, loc *time.Location) (time.Time, time.Time, error) {
	if err := ValidateMonths(months); err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := now.In(ensureLocation(loc))
	return AddMonths(end, -months), end, nil
}

// AddMonths moves t by n calendar months, clamping the day of month instead of
// overflowing into the following month.
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, n, 0)
	day := t.Day()
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Aggregate buckets events into every period between opts.Start and opts.End,
// both inclusive at period resolution.
func Aggregate(events []Event, opts Options) (Series, error) {
	if !opts.Granularity.Valid() {
		return Series{}, fmt.Errorf("%w: %q", ErrInvalidGranularity, opts.Granularity)
	}
	if opts.Start.IsZero() || opts.End.IsZero() || opts.End.Before(opts.Start) {
		return Series{}, ErrInvalidRange
	}
	loc := ensureLocation(opts.Location)
	g := opts.Granularity

	categories := append([]string(nil), opts.Categories...)
	series := Series{Granularity: g, Categories: categories}
	index := make(map[string]int)

	end := opts.End.In(loc)
	for cur := PeriodStart(opts.Start, g, loc); !cur.After(end); cur = nextPeriod(cur, g) {
		key := PeriodKey(cur, g, loc)
		if _, seen := index[key]; seen {
			continue
		}
		counts := make(map[string]int, len(categories))
		for _, c := range categories {
			counts[c] = 0
		}
		index[key] = len(series.Periods)
		series.Periods = append(series.Periods, Period{
			Key:    key,
			Label:  Label(key, g),
			Counts: counts,
		})
	}

	for _, ev := range events {
		if ev.Timestamp.IsZero() {
			series.Unbucketed++
			continue
		}
		i, ok := index[PeriodKey(ev.Timestamp, g, loc)]
		if !ok {
			series.Unbucketed++
			continue
		}
		p := &series.Periods[i]
		p.Total++
		if _, known := p.Counts[ev.Category]; known {
			p.Counts[ev.Category]++
		}
	}
	return series, nil
}

// PeriodKey formats the key of the period containing t:
// 2006-01 for months, 2006-W01 (ISO week) for weeks, 2006-01-02 for days.
func PeriodKey(t time.Time, g Granularity, loc *time.Location) string {
	t = t.In(ensureLocation(loc))
	switch g {
	case GranularityMonth:
		return t.Format("2006-01")
	case GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return t.Format("2006-01-02")
	}
}

// PeriodStart returns midnight of the first day of the period containing t.
func PeriodStart(t time.Time, g Granularity, loc *time.Location) time.Time {
	t = t.In(ensureLocation(loc))
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch g {
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case GranularityWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		return day
	}
}

// ParseKey returns the start of the period named by key.
func ParseKey(key string, g Granularity, loc *time.Location) (time.Time, error) {
	loc = ensureLocation(loc)
	switch g {
	case GranularityMonth:
		t, err := time.ParseInLocation("2006-01", key, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		return t, nil
	case GranularityWeek:
		year, week, ok := splitWeekKey(key)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		// Jan 4 always falls in ISO week 1.
		week1 := PeriodStart(time.Date(year, time.January, 4, 0, 0, 0, 0, loc), GranularityWeek, loc)
		start := week1.AddDate(0, 0, (week-1)*7)
		if y, w := start.ISOWeek(); y != year || w != week {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		return start, nil
	case GranularityDay:
		t, err := time.ParseInLocation("2006-01-02", key, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidGranularity, g)
}

// NextKey steps a period key forward by one unit of g.
func NextKey(key string, g Granularity, loc *time.Location) (string, error) {
	start, err := ParseKey(key, g, loc)
	if err != nil {
		return "", err
	}
	return PeriodKey(nextPeriod(start, g), g, loc), nil
}

// Label renders a key for chart axes: "Jan 24", "W03 2024" or the ISO date.
func Label(key string, g Granularity) string {
	switch g {
	case GranularityMonth:
		t, err := time.Parse("2006-01", key)
		if err != nil {
			return key
		}
		return t.Format("Jan 06")
	case GranularityWeek:
		year, week, ok := splitWeekKey(key)
		if !ok {
			return key
		}
		return fmt.Sprintf("W%02d %04d", week, year)
	}
	return key
}

func nextPeriod(t time.Time, g Granularity) time.Time {
	switch g {
	case GranularityMonth:
		return t.AddDate(0, 1, 0)
	case GranularityWeek:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func splitWeekKey(key string) (int, int, bool) {
	y, w, found := strings.Cut(key, "-W")
	if !found || len(y) != 4 || len(w) != 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return 0, 0, false
	}
	week, err := strconv.Atoi(w)
	if err != nil || week < 1 || week > 53 {
		return 0, 0, false
	}
	return year, week, true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func ensureLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
