package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidRange reports an unparseable or inverted date range bound.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrUnknownPeriod reports an unsupported quick-filter period name.
	ErrUnknownPeriod = errors.New("unknown period")
)

// DateRange is an inclusive calendar-day range. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"start,omitempty" yaml:"start,omitempty"`
	End   time.Time `json:"end,omitempty" yaml:"end,omitempty"`
}

// ParseRange parses YYYY-MM-DD bounds; empty strings leave the bound open.
func ParseRange(start, end string) (DateRange, error) {
	var rng DateRange
	if s := strings.TrimSpace(start); s != "" {
		t, ok := parseTimeMaybe(s)
		if !ok {
			return DateRange{}, fmt.Errorf("%w: start %q", ErrInvalidRange, start)
		}
		rng.Start = day(t)
	}
	if s := strings.TrimSpace(end); s != "" {
		t, ok := parseTimeMaybe(s)
		if !ok {
			return DateRange{}, fmt.Errorf("%w: end %q", ErrInvalidRange, end)
		}
		rng.End = day(t)
	}
	if !rng.Start.IsZero() && !rng.End.IsZero() && rng.End.Before(rng.Start) {
		return DateRange{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange, rng.End.Format(dateLayout), rng.Start.Format(dateLayout))
	}
	return rng, nil
}

// Periods lists the names accepted by QuickRange.
var Periods = []string{"last30", "last90", "thisYear", "lastYear", "trailingYear"}

// QuickRange resolves a named period relative to now.
func QuickRange(period string, now time.Time) (DateRange, error) {
	today := day(now)
	switch period {
	case "last30":
		return DateRange{Start: today.AddDate(0, 0, -30), End: today}, nil
	case "last90":
		return DateRange{Start: today.AddDate(0, 0, -90), End: today}, nil
	case "thisYear":
		return DateRange{Start: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), End: today}, nil
	case "lastYear":
		y := today.Year() - 1
		return DateRange{
			Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC),
		}, nil
	case "trailingYear":
		return DefaultRange(now), nil
	}
	return DateRange{}, fmt.Errorf("%w: %q (use one of %s)", ErrUnknownPeriod, period, strings.Join(Periods, ", "))
}

// DefaultRange is the trailing year ending on now's calendar day.
func DefaultRange(now time.Time) DateRange {
	today := day(now)
	return DateRange{Start: today.AddDate(-1, 0, 0), End: today}
}

// ResolveRange picks a named period when one is given, otherwise explicit
// bounds. With neither, the range is open and every record passes.
func ResolveRange(start, end, period string, now time.Time) (DateRange, error) {
	if p := strings.TrimSpace(period); p != "" {
		if strings.TrimSpace(start) != "" || strings.TrimSpace(end) != "" {
			return DateRange{}, fmt.Errorf("%w: period %q cannot be combined with start/end", ErrInvalidRange, p)
		}
		return QuickRange(p, now)
	}
	return ParseRange(start, end)
}

// ResolveNow parses s as the reference instant, or returns fallback when s is
// empty. An unparseable s is ErrInvalidNow.
func ResolveNow(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if fallback.IsZero() {
			return time.Time{}, ErrInvalidNow
		}
		return fallback, nil
	}
	t, ok := parseTimeMaybe(s)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidNow, s)
	}
	return t, nil
}

// IsOpen reports whether neither bound is set.
func (r DateRange) IsOpen() bool { return r.Start.IsZero() && r.End.IsZero() }

// Contains reports whether t's calendar day lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := day(t)
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

// String renders the range as "start..end" with "*" for open bounds.
func (r DateRange) String() string {
	s, e := "*", "*"
	if !r.Start.IsZero() {
		s = r.Start.Format(dateLayout)
	}
	if !r.End.IsZero() {
		e = r.End.Format(dateLayout)
	}
	return s + ".." + e
}

// FilterByDateRange keeps records whose date falls within rng. Records with a
// missing or unparseable date are kept; only time-series grouping drops them.
func FilterByDateRange(records []Record, fm FieldMap, rng DateRange) []Record {
	if rng.IsOpen() {
		out := make([]Record, len(records))
		copy(out, records)
		return out
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		t, ok := fm.DateOf(rec)
		if !ok || rng.Contains(t) {
			out = append(out, rec)
		}
	}
	return out
}
