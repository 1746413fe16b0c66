package analytics

import (
	"math"
	"sort"
)

// Correlation strength labels.
const (
	StrongPositive = "strong positive"
	StrongNegative = "strong negative"
	ModerateWeak   = "moderate/weak"

	strongR = 0.7
)

// DefaultCorrelationFields is the numeric field set of a sales record.
var DefaultCorrelationFields = []string{"netSales", "profit", "quantity", "unitPrice", "discountPercent"}

// CorrelationPair is Pearson's r for one unordered field pair.
type CorrelationPair struct {
	FieldA      string  `json:"fieldA" yaml:"field_a"`
	FieldB      string  `json:"fieldB" yaml:"field_b"`
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
}

// Correlation lists every pair by |r| descending plus the strongest one.
type Correlation struct {
	Pairs     []CorrelationPair `json:"pairs" yaml:"pairs"`
	Strongest *CorrelationPair  `json:"strongest,omitempty" yaml:"strongest,omitempty"`
	Label     string            `json:"label,omitempty" yaml:"label,omitempty"`
}

// Correlate computes r for every unordered pair of fields across records.
// Missing or non-numeric values count as 0. Pairs with equal |r| keep the
// order in which fields were listed.
func Correlate(records []Record, fields []string) Correlation {
	cols := make([][]float64, len(fields))
	for i, f := range fields {
		col := make([]float64, len(records))
		for j, rec := range records {
			col[j] = FieldNumber(rec, f)
		}
		cols[i] = col
	}
	var pairs []CorrelationPair
	for a := 0; a < len(fields); a++ {
		for b := a + 1; b < len(fields); b++ {
			pairs = append(pairs, CorrelationPair{FieldA: fields[a], FieldB: fields[b], Coefficient: Pearson(cols[a], cols[b])})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Coefficient) > math.Abs(pairs[j].Coefficient)
	})
	c := Correlation{Pairs: pairs}
	if len(pairs) > 0 {
		top := pairs[0]
		c.Strongest = &top
		c.Label = StrengthLabel(top.Coefficient)
	}
	return c
}

// Pearson computes r with the sum-based formula over the common prefix of xs
// and ys. It is 0 when the denominator is 0 (e.g. a constant series).
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n == 0 {
		return 0
	}
	var sumX, sumY, sumXX, sumYY, sumXY float64
	for i := 0; i < n; i++ {
		x, y := xs[i], ys[i]
		sumX += x
		sumY += y
		sumXX += x * x
		sumYY += y * y
		sumXY += x * y
	}
	fn := float64(n)
	varX := fn*sumXX - sumX*sumX
	varY := fn*sumYY - sumY*sumY
	if varX <= 0 || varY <= 0 {
		return 0
	}
	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		return 0
	}
	r := finite((fn*sumXY - sumX*sumY) / denom)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// StrengthLabel classifies a coefficient with fixed ±0.7 thresholds.
func StrengthLabel(r float64) string {
	switch {
	case r > strongR:
		return StrongPositive
	case r < -strongR:
		return StrongNegative
	default:
		return ModerateWeak
	}
}
