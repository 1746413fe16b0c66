package analytics

import (
	"math"
	"sort"
)

// Trend labels derived from the growth rate.
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"

	trendThreshold = 5.0
)

// Stats summarises the primary value of a record set.
type Stats struct {
	Count      int     `json:"count" yaml:"count"`
	Mean       float64 `json:"mean" yaml:"mean"`
	Median     float64 `json:"median" yaml:"median"`
	StdDev     float64 `json:"stdDev" yaml:"std_dev"`
	GrowthRate float64 `json:"growthRate" yaml:"growth_rate"`
	Trend      string  `json:"trend" yaml:"trend"`
}

// Describe computes descriptive statistics over the primary value.
func Describe(records []Record, fm FieldMap) Stats {
	vals := values(records, fm, RoleValue)
	mean, std := meanStd(vals)
	g := GrowthRate(vals)
	return Stats{
		Count:      len(vals),
		Mean:       mean,
		Median:     Median(vals),
		StdDev:     std,
		GrowthRate: g,
		Trend:      TrendOf(g),
	}
}

func values(records []Record, fm FieldMap, r Role) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = fm.Number(rec, r)
	}
	return out
}

// Mean is the arithmetic mean; 0 for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// StdDev is the population standard deviation (divides by N).
func StdDev(vals []float64) float64 {
	_, std := meanStd(vals)
	return std
}

func meanStd(vals []float64) (mean, std float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	mean = Mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return mean, finite(math.Sqrt(ss / float64(len(vals))))
}

// Median averages the two middle values for even lengths.
func Median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, vals)
	sort.Float64s(cp)
	if n%2 == 0 {
		return (cp[n/2-1] + cp[n/2]) / 2
	}
	return cp[n/2]
}

// GrowthRate compares the mean of the second half of vals (insertion order)
// with the mean of the first half, as a percentage. It is 0 for fewer than two
// values or when the first-half mean is 0.
func GrowthRate(vals []float64) float64 {
	n := len(vals)
	if n < 2 {
		return 0
	}
	avgFirst := Mean(vals[:n/2])
	avgSecond := Mean(vals[n/2:])
	if avgFirst == 0 {
		return 0
	}
	return finite((avgSecond - avgFirst) / avgFirst * 100)
}

// TrendOf labels a growth rate with fixed ±5% thresholds.
func TrendOf(growth float64) string {
	switch {
	case growth > trendThreshold:
		return TrendUp
	case growth < -trendThreshold:
		return TrendDown
	default:
		return TrendFlat
	}
}
