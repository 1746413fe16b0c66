package analytics

import (
	"sort"
)

// Entity is a named aggregate used for ranking and classification.
type Entity struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// GroupBySum sums role over records grouped by key. Groups are returned in
// first-seen order, which is also the tie-break order used by RankTopN.
func GroupBySum(records []Record, key func(Record) string, fm FieldMap, r Role) []Entity {
	idx := make(map[string]int)
	var out []Entity
	for _, rec := range records {
		k := key(rec)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Entity{Name: k})
		}
		out[i].Value += fm.Number(rec, r)
	}
	return out
}

// GroupByRole groups by a categorical role and sums a numeric role.
func GroupByRole(records []Record, fm FieldMap, keyRole, valueRole Role) []Entity {
	return GroupBySum(records, func(rec Record) string { return fm.Text(rec, keyRole) }, fm, valueRole)
}

// RankTopN returns a copy of entities sorted by value descending (stable) and
// truncated to n. n <= 0 keeps every entity.
func RankTopN(entities []Entity, n int) []Entity {
	out := make([]Entity, len(entities))
	copy(out, entities)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopRow is one line of a top-N table with primary and secondary sums.
type TopRow struct {
	Rank   int     `json:"rank" yaml:"rank"`
	Name   string  `json:"name" yaml:"name"`
	Value  float64 `json:"value" yaml:"value"`
	Value2 float64 `json:"value2" yaml:"value2"`
}

// TopTable ranks the keyRole groups by the primary value and carries the
// secondary value sum of each group.
func TopTable(records []Record, fm FieldMap, keyRole Role, n int) []TopRow {
	return topRows(records, fm, func(rec Record) string { return fm.Text(rec, keyRole) }, n)
}

// Breakdown is a top table over a categorical field outside the role set,
// such as a region or sales channel.
type Breakdown struct {
	Field string   `json:"field" yaml:"field"`
	Rows  []TopRow `json:"rows" yaml:"rows"`
}

// TopTableByField is TopTable keyed by an arbitrary field. Records missing
// the field are grouped under UnknownLabel.
func TopTableByField(records []Record, fm FieldMap, field string, n int) []TopRow {
	return topRows(records, fm, func(rec Record) string {
		if v := FieldText(rec, field); v != "" {
			return v
		}
		return UnknownLabel
	}, n)
}

// Breakdowns builds one top table per field. Fields that no record carries
// are omitted, as are blanks and repeats.
func Breakdowns(records []Record, fm FieldMap, fields []string, n int) []Breakdown {
	var out []Breakdown
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		if !anyHasField(records, f) {
			continue
		}
		out = append(out, Breakdown{Field: f, Rows: TopTableByField(records, fm, f, n)})
	}
	return out
}

func anyHasField(records []Record, field string) bool {
	for _, rec := range records {
		if FieldText(rec, field) != "" {
			return true
		}
	}
	return false
}

func topRows(records []Record, fm FieldMap, key func(Record) string, n int) []TopRow {
	primary := GroupBySum(records, key, fm, RoleValue)
	secondary := make(map[string]float64, len(primary))
	for _, e := range GroupBySum(records, key, fm, RoleValue2) {
		secondary[e.Name] = e.Value
	}
	ranked := RankTopN(primary, n)
	rows := make([]TopRow, len(ranked))
	for i, e := range ranked {
		rows[i] = TopRow{Rank: i + 1, Name: e.Name, Value: e.Value, Value2: secondary[e.Name]}
	}
	return rows
}

// MonthBucket holds per-role sums for one calendar month.
type MonthBucket struct {
	Month string    `json:"month" yaml:"month"`
	Sums  []float64 `json:"sums" yaml:"sums"`
}

// GroupByMonth sums each role per YYYY-MM month, ascending by month. Records
// without a parsable date are excluded.
func GroupByMonth(records []Record, fm FieldMap, roles ...Role) []MonthBucket {
	byMonth := make(map[string][]float64)
	for _, rec := range records {
		t, ok := fm.DateOf(rec)
		if !ok {
			continue
		}
		key := t.Format("2006-01")
		sums, seen := byMonth[key]
		if !seen {
			sums = make([]float64, len(roles))
			byMonth[key] = sums
		}
		for i, r := range roles {
			sums[i] += fm.Number(rec, r)
		}
	}
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	out := make([]MonthBucket, len(months))
	for i, m := range months {
		out[i] = MonthBucket{Month: m, Sums: byMonth[m]}
	}
	return out
}

// SeriesPoint is a month with primary and secondary sums.
type SeriesPoint struct {
	Month  string  `json:"month" yaml:"month"`
	Value  float64 `json:"value" yaml:"value"`
	Value2 float64 `json:"value2" yaml:"value2"`
}

// TimeSeries is GroupByMonth over the value and value2 roles.
func TimeSeries(records []Record, fm FieldMap) []SeriesPoint {
	buckets := GroupByMonth(records, fm, RoleValue, RoleValue2)
	out := make([]SeriesPoint, len(buckets))
	for i, b := range buckets {
		out[i] = SeriesPoint{Month: b.Month, Value: b.Sums[0], Value2: b.Sums[1]}
	}
	return out
}
