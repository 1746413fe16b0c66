package analytics

import (
	"math"
)

// ABC classes.
const (
	ClassA = "A"
	ClassB = "B"
	ClassC = "C"

	classAMax = 80.0
	classBMax = 95.0

	// TopShareFraction is the entity-count cutoff of the concentration metric.
	TopShareFraction = 0.2
	// dominantShare marks a concentration where the top slice carries most value.
	dominantShare = 70.0
)

// ABCItem is one ranked entity with its share and class.
type ABCItem struct {
	Rank              int     `json:"rank" yaml:"rank"`
	Name              string  `json:"name" yaml:"name"`
	Value             float64 `json:"value" yaml:"value"`
	SharePercent      float64 `json:"sharePercent" yaml:"share_percent"`
	CumulativePercent float64 `json:"cumulativePercent" yaml:"cumulative_percent"`
	Category          string  `json:"category" yaml:"category"`
}

// Concentration answers "what share of the total do the top X% of entities
// hold". It uses a count cutoff and is independent of the ABC thresholds.
type Concentration struct {
	EntityCount     int     `json:"entityCount" yaml:"entity_count"`
	TopCount        int     `json:"topCount" yaml:"top_count"`
	TopValue        float64 `json:"topValue" yaml:"top_value"`
	TotalValue      float64 `json:"totalValue" yaml:"total_value"`
	TopSharePercent float64 `json:"topSharePercent" yaml:"top_share_percent"`
	// Dominant is set when the top slice holds at least 70% of the total.
	Dominant bool `json:"dominant" yaml:"dominant"`
}

// ClassCount tallies entities and value per ABC class.
type ClassCount struct {
	Category string  `json:"category" yaml:"category"`
	Count    int     `json:"count" yaml:"count"`
	Value    float64 `json:"value" yaml:"value"`
}

// Pareto bundles the ABC classification with the concentration metric.
type Pareto struct {
	GroupedBy     string        `json:"groupedBy" yaml:"grouped_by"`
	Items         []ABCItem     `json:"items" yaml:"items"`
	Classes       []ClassCount  `json:"classes" yaml:"classes"`
	Concentration Concentration `json:"concentration" yaml:"concentration"`
}

// ClassifyABC groups by the name role and classifies the entities.
func ClassifyABC(records []Record, fm FieldMap) Pareto {
	return ParetoBy(records, fm, RoleName)
}

// ParetoBy groups by any categorical role and classifies the entities.
func ParetoBy(records []Record, fm FieldMap, keyRole Role) Pareto {
	entities := GroupByRole(records, fm, keyRole, RoleValue)
	items := ClassifyEntities(entities)
	return Pareto{
		GroupedBy:     fm.Field(keyRole),
		Items:         items,
		Classes:       classCounts(items),
		Concentration: ConcentrationOf(entities, TopShareFraction),
	}
}

// ClassifyEntities ranks entities by value descending and assigns A/B/C from
// the cumulative share after adding each entity: A while <= 80%, B while
// <= 95%, C beyond. A zero total puts every entity in C with zero shares.
func ClassifyEntities(entities []Entity) []ABCItem {
	ranked := RankTopN(entities, 0)
	var total float64
	for _, e := range ranked {
		total += e.Value
	}
	items := make([]ABCItem, len(ranked))
	var running float64
	for i, e := range ranked {
		it := ABCItem{Rank: i + 1, Name: e.Name, Value: e.Value, Category: ClassC}
		if total != 0 {
			running += e.Value
			it.SharePercent = e.Value * 100 / total
			it.CumulativePercent = running * 100 / total
			switch {
			case it.CumulativePercent <= classAMax:
				it.Category = ClassA
			case it.CumulativePercent <= classBMax:
				it.Category = ClassB
			}
		}
		items[i] = it
	}
	return items
}

func classCounts(items []ABCItem) []ClassCount {
	out := []ClassCount{{Category: ClassA}, {Category: ClassB}, {Category: ClassC}}
	for _, it := range items {
		var i int
		switch it.Category {
		case ClassA:
			i = 0
		case ClassB:
			i = 1
		default:
			i = 2
		}
		out[i].Count++
		out[i].Value += it.Value
	}
	return out
}

// ConcentrationOf takes the top ceil(n*fraction) entities (at least one) by
// value and reports their share of the total.
func ConcentrationOf(entities []Entity, fraction float64) Concentration {
	c := Concentration{EntityCount: len(entities)}
	if len(entities) == 0 {
		return c
	}
	ranked := RankTopN(entities, 0)
	c.TopCount = int(math.Ceil(float64(len(ranked)) * fraction))
	if c.TopCount < 1 {
		c.TopCount = 1
	}
	if c.TopCount > len(ranked) {
		c.TopCount = len(ranked)
	}
	for i, e := range ranked {
		c.TotalValue += e.Value
		if i < c.TopCount {
			c.TopValue += e.Value
		}
	}
	c.TopSharePercent = safeDiv(c.TopValue, c.TotalValue) * 100
	c.Dominant = c.TopSharePercent >= dominantShare
	return c
}
