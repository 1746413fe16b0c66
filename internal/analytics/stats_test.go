package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowthAndTrend(t *testing.T) {
	assert.InDelta(t, 50.0, GrowthRate([]float64{100, 100, 150, 150}), 1e-9)
	assert.Equal(t, TrendUp, TrendOf(50))
	assert.Equal(t, TrendDown, TrendOf(-5.01))
	assert.Equal(t, TrendFlat, TrendOf(5))
	assert.Equal(t, TrendFlat, TrendOf(-5))

	assert.Zero(t, GrowthRate([]float64{42}))
	assert.Zero(t, GrowthRate([]float64{0, 0, 10, 10}), "zero first-half mean")
}

func TestDescribe(t *testing.T) {
	records := []Record{
		{"v": 1.0}, {"v": 2.0}, {"v": 3.0}, {"v": 4.0},
	}
	fm := FieldMap{Value: "v", Value2: "w", Date: "d", Category: "c", Name: "n"}
	s := Describe(records, fm)
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, 2.5, s.Median, 1e-9)
	assert.InDelta(t, 1.118034, s.StdDev, 1e-6)
	assert.InDelta(t, 133.333333, s.GrowthRate, 1e-6)
	assert.Equal(t, TrendUp, s.Trend)

	empty := Describe(nil, fm)
	assert.Zero(t, empty.Count)
	assert.Equal(t, TrendFlat, empty.Trend)
}

func TestMedianOdd(t *testing.T) {
	vals := []float64{9, 1, 5}
	assert.Equal(t, 5.0, Median(vals))
	assert.Equal(t, []float64{9, 1, 5}, vals, "input must not be reordered")
}

func TestComputeKPIs(t *testing.T) {
	k := ComputeKPIs(sampleSales(), salesMap)
	assert.Equal(t, 8, k.TotalRecords)
	assert.InDelta(t, 5725.0, k.TotalValue, 1e-9)
	assert.InDelta(t, 1325.0, k.TotalValue2, 1e-9)
	assert.InDelta(t, 715.625, k.AvgValue, 1e-9)
	assert.InDelta(t, 1325.0/5725.0*100, k.Ratio, 1e-9)

	zero := ComputeKPIs([]Record{sale("2024-01-01", "A", "X", "C", 0, 5)}, salesMap)
	assert.Zero(t, zero.Ratio)
	assert.Zero(t, ComputeKPIs(nil, salesMap).AvgValue)
}
