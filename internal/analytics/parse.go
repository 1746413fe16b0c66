package analytics

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseFloatLoose accepts a full float or, failing that, its leading numeric
// prefix ("12.5%" -> 12.5). Anything else is 0.
func parseFloatLoose(s string) float64 {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return finite(f)
	}
	m := leadingNumber.FindString(raw)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseTimeMaybe(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339, dateLayout, "2006/01/02", "01/02/2006", "02.01.2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02T15:04:05",
		"1/2/2006 15:04", "1/2/2006 15:04:05", "1/2/2006",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses a calendar date using the accepted record layouts.
func ParseDate(s string) (time.Time, bool) { return parseTimeMaybe(s) }

// day truncates t to its calendar day in its own location, expressed in UTC.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// safeDiv returns a/b, or 0 when b is zero.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return finite(a / b)
}
