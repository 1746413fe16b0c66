package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentRFMBestCustomer(t *testing.T) {
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	records := []Record{
		// C1: most recent, most frequent, highest spend
		sale("2024-06-28", "P", "S", "C1", 500, 0),
		sale("2024-06-20", "P", "S", "C1", 500, 0),
		sale("2024-06-10", "P", "S", "C1", 500, 0),
		sale("2024-05-01", "P", "S", "C2", 300, 0),
		sale("2024-04-01", "P", "S", "C2", 300, 0),
		sale("2024-03-01", "P", "S", "C3", 200, 0),
		sale("2024-02-01", "P", "S", "C4", 100, 0),
		sale("2023-01-01", "P", "S", "C5", 50, 0),
	}
	res, err := SegmentRFM(records, salesMap, RFMOptions{Now: now})
	require.NoError(t, err)
	require.Len(t, res.Customers, 5)
	assert.Zero(t, res.Skipped)

	best := res.Customers[0]
	assert.Equal(t, "C1", best.ID)
	assert.Equal(t, 2, best.Recency)
	assert.Equal(t, 3, best.Frequency)
	assert.InDelta(t, 1500.0, best.Monetary, 1e-9)
	assert.Equal(t, []int{5, 5, 5}, []int{best.R, best.F, best.M})
	assert.Equal(t, SegmentChampions, best.Segment)

	worst := res.Customers[4]
	assert.Equal(t, "C5", worst.ID)
	assert.Equal(t, 1, worst.R)
	assert.Equal(t, 1, worst.M)
	assert.Equal(t, SegmentLost, worst.Segment)

	var counted int
	for _, s := range res.Segments {
		counted += s.Count
	}
	assert.Equal(t, 5, counted)
	assert.Len(t, res.Segments, len(Segments))
}

func TestSegmentRFMScoresBounded(t *testing.T) {
	now := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	var records []Record
	for i := 0; i < 23; i++ {
		date := time.Date(2024, time.Month(i%12+1), i%27+1, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		records = append(records, sale(date, "P", "S", fmt.Sprintf("C%02d", i), float64(i*10), 0))
	}
	res, err := SegmentRFM(records, salesMap, RFMOptions{Now: now})
	require.NoError(t, err)

	distinct := map[int]bool{}
	for _, c := range res.Customers {
		for _, s := range []int{c.R, c.F, c.M} {
			assert.GreaterOrEqual(t, s, 1)
			assert.LessOrEqual(t, s, 5)
		}
		distinct[c.M] = true
	}
	assert.LessOrEqual(t, len(distinct), 5)
}

func TestSegmentRFMSkipsUndatedAndFallsBack(t *testing.T) {
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	noID := sale("2024-06-01", "P", "Retail", "", 10, 0)
	delete(noID, "customerId")
	records := []Record{
		sale("", "P", "S", "ghost", 10, 0),
		noID,
	}
	res, err := SegmentRFM(records, salesMap, RFMOptions{Now: now})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Customers, 1)
	assert.Equal(t, "Retail", res.Customers[0].ID)
}

func TestSegmentRFMRequiresNow(t *testing.T) {
	_, err := SegmentRFM(sampleSales(), salesMap, RFMOptions{})
	assert.ErrorIs(t, err, ErrInvalidNow)
}

func TestAssignSegment(t *testing.T) {
	cases := []struct {
		r, f, m int
		want    Segment
	}{
		{5, 5, 5, SegmentChampions},
		{4, 4, 3, SegmentLoyal},
		{3, 3, 3, SegmentLoyal},
		{5, 1, 5, SegmentPotential},
		{2, 4, 4, SegmentAtRisk},
		{1, 1, 1, SegmentLost},
		{3, 2, 1, SegmentPotential},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AssignSegment(tc.r, tc.f, tc.m), "r=%d f=%d m=%d", tc.r, tc.f, tc.m)
	}
}

func TestQuintileScores(t *testing.T) {
	vals := []float64{10, 50, 30, 20, 40}
	scores := quintileScores(len(vals), func(i, j int) bool { return vals[i] > vals[j] })
	assert.Equal(t, []int{1, 5, 3, 2, 4}, scores)
	assert.Empty(t, quintileScores(0, nil))
}
