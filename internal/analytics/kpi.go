package analytics

// KPIs is the headline rollup over a record set.
type KPIs struct {
	TotalValue   float64 `json:"totalValue" yaml:"total_value"`
	TotalValue2  float64 `json:"totalValue2" yaml:"total_value2"`
	TotalRecords int     `json:"totalRecords" yaml:"total_records"`
	AvgValue     float64 `json:"avgValue" yaml:"avg_value"`
	// Ratio is TotalValue2 as a percentage of TotalValue (e.g. profit margin).
	Ratio     float64 `json:"ratio" yaml:"ratio"`
	AvgValue2 float64 `json:"avgValue2" yaml:"avg_value2"`
}

// ComputeKPIs sums and averages the value and value2 roles.
func ComputeKPIs(records []Record, fm FieldMap) KPIs {
	var k KPIs
	for _, rec := range records {
		k.TotalValue += fm.Number(rec, RoleValue)
		k.TotalValue2 += fm.Number(rec, RoleValue2)
	}
	k.TotalRecords = len(records)
	n := float64(k.TotalRecords)
	k.AvgValue = safeDiv(k.TotalValue, n)
	k.AvgValue2 = safeDiv(k.TotalValue2, n)
	k.Ratio = safeDiv(k.TotalValue2, k.TotalValue) * 100
	return k
}
