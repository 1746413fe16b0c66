package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyEntitiesThresholds(t *testing.T) {
	items := ClassifyEntities([]Entity{{"Z", 5}, {"X", 80}, {"Y", 15}})
	require.Len(t, items, 3)

	assert.Equal(t, "X", items[0].Name)
	assert.Equal(t, ClassA, items[0].Category)
	assert.Equal(t, "Y", items[1].Name)
	assert.Equal(t, ClassB, items[1].Category)
	assert.Equal(t, "Z", items[2].Name)
	assert.Equal(t, ClassC, items[2].Category)
	assert.InDelta(t, 100.0, items[2].CumulativePercent, 1e-9)

	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i].CumulativePercent, items[i-1].CumulativePercent)
		assert.Equal(t, i+1, items[i].Rank)
	}
}

// Classes follow the cumulative share after adding each entity: the entity
// whose addition crosses 80% (79 -> 83) is B, not A.
func TestClassifyEntitiesCrossingThreshold(t *testing.T) {
	items := ClassifyEntities([]Entity{{"a", 79}, {"b", 4}, {"c", 4}, {"d", 4}, {"e", 3}, {"f", 3}, {"g", 3}})
	require.Len(t, items, 7)

	want := []string{ClassA, ClassB, ClassB, ClassB, ClassB, ClassC, ClassC}
	for i, it := range items {
		assert.Equal(t, want[i], it.Category, "item %s (cum %.1f%%)", it.Name, it.CumulativePercent)
	}
	assert.InDelta(t, 83.0, items[1].CumulativePercent, 1e-9)
	assert.InDelta(t, 97.0, items[5].CumulativePercent, 1e-9)
}

func TestClassifyEntitiesZeroTotal(t *testing.T) {
	items := ClassifyEntities([]Entity{{"a", 0}, {"b", 0}})
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, ClassC, it.Category)
		assert.Zero(t, it.SharePercent)
		assert.Zero(t, it.CumulativePercent)
	}
	assert.Empty(t, ClassifyEntities(nil))
}

func TestConcentration(t *testing.T) {
	c := ConcentrationOf([]Entity{{"Z", 5}, {"X", 80}, {"Y", 15}}, TopShareFraction)
	assert.Equal(t, 3, c.EntityCount)
	assert.Equal(t, 1, c.TopCount)
	assert.InDelta(t, 80.0, c.TopSharePercent, 1e-9)
	assert.True(t, c.Dominant)

	ents := make([]Entity, 10)
	for i := range ents {
		ents[i] = Entity{Name: string(rune('a' + i)), Value: 10}
	}
	c = ConcentrationOf(ents, TopShareFraction)
	assert.Equal(t, 2, c.TopCount)
	assert.InDelta(t, 20.0, c.TopSharePercent, 1e-9)
	assert.False(t, c.Dominant)

	assert.Zero(t, ConcentrationOf(nil, TopShareFraction).TopCount)
}

func TestClassifyABCFromRecords(t *testing.T) {
	p := ClassifyABC(sampleSales(), salesMap)
	assert.Equal(t, "productName", p.GroupedBy)
	require.NotEmpty(t, p.Items)
	assert.Equal(t, "Laptop", p.Items[0].Name)
	assert.InDelta(t, 3750.0, p.Items[0].Value, 1e-9)

	var total int
	for _, c := range p.Classes {
		total += c.Count
	}
	assert.Equal(t, len(p.Items), total)

	byCat := ParetoBy(sampleSales(), salesMap, RoleCategory)
	assert.Equal(t, "customerSegment", byCat.GroupedBy)
	assert.Len(t, byCat.Items, 3)
}

func TestRankTopNStableTies(t *testing.T) {
	in := []Entity{{"first", 5}, {"big", 9}, {"second", 5}}
	got := RankTopN(in, 0)
	assert.Equal(t, []Entity{{"big", 9}, {"first", 5}, {"second", 5}}, got)
	assert.Equal(t, "first", in[0].Name, "input must not be reordered")

	assert.Len(t, RankTopN(in, 2), 2)
}

func TestTopTable(t *testing.T) {
	rows := TopTable(sampleSales(), salesMap, RoleName, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, TopRow{Rank: 1, Name: "Laptop", Value: 3750, Value2: 930}, rows[0])
	assert.Equal(t, TopRow{Rank: 2, Name: "Phone", Value: 1620, Value2: 330}, rows[1])
}
