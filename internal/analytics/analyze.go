package analytics

import (
	"fmt"
	"time"
)

// DefaultTopN is the top-table length when Options.TopN is unset.
const DefaultTopN = 10

// Options controls a full Analyze run.
type Options struct {
	// Name labels the report (usually the source file or project).
	Name string
	// Range restricts records by date; records without a date always pass.
	Range DateRange
	// Now is the reference instant for RFM recency. Required.
	Now time.Time
	// TopN bounds the top tables; DefaultTopN when <= 0.
	TopN int
	// CorrelationFields defaults to the value and value2 fields.
	CorrelationFields []string
	// CustomerField names the RFM customer id field.
	CustomerField string
	// GroupFields adds a top table per categorical field beyond the roles.
	GroupFields []string
}

// Report is the combined output of every analyzer over one filtered set.
type Report struct {
	Name            string    `json:"name" yaml:"name"`
	FieldMap        FieldMap  `json:"fieldMap" yaml:"field_map"`
	Range           string    `json:"range" yaml:"range"`
	Now             time.Time `json:"now" yaml:"now"`
	TotalRecords    int       `json:"totalRecords" yaml:"total_records"`
	FilteredRecords int       `json:"filteredRecords" yaml:"filtered_records"`
	// Undated counts filtered records kept without a parsable date.
	Undated int `json:"undated" yaml:"undated"`

	KPIs           KPIs          `json:"kpis" yaml:"kpis"`
	Stats          Stats         `json:"stats" yaml:"stats"`
	Series         []SeriesPoint `json:"series" yaml:"series"`
	TopNames       []TopRow      `json:"topNames" yaml:"top_names"`
	TopCategories  []TopRow      `json:"topCategories" yaml:"top_categories"`
	Breakdowns     []Breakdown   `json:"breakdowns,omitempty" yaml:"breakdowns,omitempty"`
	Pareto         Pareto        `json:"pareto" yaml:"pareto"`
	CategoryPareto Pareto        `json:"categoryPareto" yaml:"category_pareto"`
	RFM            RFMResult     `json:"rfm" yaml:"rfm"`
	Correlation    Correlation   `json:"correlation" yaml:"correlation"`
	Anomalies      Anomalies     `json:"anomalies" yaml:"anomalies"`
	Warnings       []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Prepare validates fm and opts.Now and returns the filtered working set.
// Every analyzer in this package can then run on the result independently.
func Prepare(records []Record, fm FieldMap, opts Options) ([]Record, error) {
	if err := fm.Validate(); err != nil {
		return nil, err
	}
	if opts.Now.IsZero() {
		return nil, ErrInvalidNow
	}
	return FilterByDateRange(records, fm, opts.Range), nil
}

// Analyze filters records once and runs every analyzer on the filtered set.
func Analyze(records []Record, fm FieldMap, opts Options) (*Report, error) {
	filtered, err := Prepare(records, fm, opts)
	if err != nil {
		return nil, err
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	fields := opts.CorrelationFields
	if len(fields) == 0 {
		fields = []string{fm.Value, fm.Value2}
	}

	rep := &Report{
		Name:            opts.Name,
		FieldMap:        fm,
		Range:           opts.Range.String(),
		Now:             opts.Now,
		TotalRecords:    len(records),
		FilteredRecords: len(filtered),
	}
	for _, rec := range filtered {
		if _, ok := fm.DateOf(rec); !ok {
			rep.Undated++
		}
	}

	rep.KPIs = ComputeKPIs(filtered, fm)
	rep.Stats = Describe(filtered, fm)
	rep.Series = TimeSeries(filtered, fm)
	rep.TopNames = TopTable(filtered, fm, RoleName, topN)
	rep.TopCategories = TopTable(filtered, fm, RoleCategory, topN)
	rep.Breakdowns = Breakdowns(filtered, fm, opts.GroupFields, topN)
	rep.Pareto = ClassifyABC(filtered, fm)
	rep.CategoryPareto = ParetoBy(filtered, fm, RoleCategory)
	rfm, err := SegmentRFM(filtered, fm, RFMOptions{Now: opts.Now, CustomerField: opts.CustomerField})
	if err != nil {
		return nil, err
	}
	rep.RFM = rfm
	rep.Correlation = Correlate(filtered, fields)
	rep.Anomalies = DetectAnomalies(filtered, fm)

	if rep.Undated > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d records without a parsable %s kept in totals but excluded from the time series", rep.Undated, fm.Date))
	}
	if rfm.Skipped > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d customers without a parsable %s skipped in RFM", rfm.Skipped, fm.Date))
	}
	if len(filtered) < minAnomalySample {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("anomaly detection needs at least %d records, got %d", minAnomalySample, len(filtered)))
	}
	return rep, nil
}
