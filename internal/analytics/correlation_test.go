package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearsonProperties(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 6, 8, 10}
	c := []float64{5, 3, 4, 1, 2}

	assert.InDelta(t, 1.0, Pearson(a, a), 1e-12)
	assert.InDelta(t, 1.0, Pearson(a, b), 1e-12)
	assert.Equal(t, Pearson(a, c), Pearson(c, a))
	assert.InDelta(t, -0.8, Pearson(a, c), 1e-12)

	assert.Zero(t, Pearson(a, []float64{7, 7, 7, 7, 7}), "constant series")
	assert.Zero(t, Pearson(nil, nil))
}

func TestCorrelateOrdersByStrength(t *testing.T) {
	records := []Record{
		{"x": 1.0, "y": 2.0, "z": 5.0, "w": "n/a"},
		{"x": 2.0, "y": 4.0, "z": 3.0},
		{"x": 3.0, "y": 6.0, "z": 4.0},
		{"x": 4.0, "y": 8.0, "z": 1.0},
		{"x": 5.0, "y": 10.0, "z": 2.0},
	}
	c := Correlate(records, []string{"x", "y", "z"})
	require.Len(t, c.Pairs, 3)
	require.NotNil(t, c.Strongest)
	assert.Equal(t, "x", c.Strongest.FieldA)
	assert.Equal(t, "y", c.Strongest.FieldB)
	assert.Equal(t, StrongPositive, c.Label)
	assert.Equal(t, StrongNegative, StrengthLabel(c.Pairs[1].Coefficient))

	for i := 1; i < len(c.Pairs); i++ {
		assert.GreaterOrEqual(t, abs(c.Pairs[i-1].Coefficient), abs(c.Pairs[i].Coefficient))
	}

	none := Correlate(records, []string{"x"})
	assert.Empty(t, none.Pairs)
	assert.Nil(t, none.Strongest)
}

func TestStrengthLabel(t *testing.T) {
	assert.Equal(t, ModerateWeak, StrengthLabel(0.7))
	assert.Equal(t, ModerateWeak, StrengthLabel(-0.7))
	assert.Equal(t, StrongPositive, StrengthLabel(0.71))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
