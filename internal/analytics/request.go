package analytics

import (
	"time"
)

// Request describes an analysis run in the loose form users supply it:
// preset and field names, date strings, optional knobs.
type Request struct {
	Name              string    `json:"name,omitempty"`
	Preset            string    `json:"preset,omitempty"`
	FieldMap          *FieldMap `json:"fieldMap,omitempty"`
	Start             string    `json:"start,omitempty"`
	End               string    `json:"end,omitempty"`
	Period            string    `json:"period,omitempty"`
	Now               string    `json:"now,omitempty"`
	Top               int       `json:"top,omitempty"`
	CorrelationFields []string  `json:"correlationFields,omitempty"`
	CustomerField     string    `json:"customerField,omitempty"`
	GroupBy           []string  `json:"groupBy,omitempty"`
}

// Resolve turns the request into a validated FieldMap and Options. The preset
// supplies the base bindings, correlation fields and customer field; explicit
// values in the request win. clock is used when Now is empty.
func (r Request) Resolve(clock time.Time) (FieldMap, Options, error) {
	var (
		fm   FieldMap
		opts Options
	)
	if r.Preset != "" {
		p, err := LookupPreset(r.Preset)
		if err != nil {
			return FieldMap{}, Options{}, err
		}
		fm = p.FieldMap
		opts.CorrelationFields = p.CorrelationFields
		opts.CustomerField = p.CustomerField
		opts.GroupFields = p.GroupFields
	}
	if r.FieldMap != nil {
		fm = fm.Merge(*r.FieldMap)
	}
	if err := fm.Validate(); err != nil {
		return FieldMap{}, Options{}, err
	}
	now, err := ResolveNow(r.Now, clock)
	if err != nil {
		return FieldMap{}, Options{}, err
	}
	rng, err := ResolveRange(r.Start, r.End, r.Period, now)
	if err != nil {
		return FieldMap{}, Options{}, err
	}
	opts.Name = r.Name
	opts.Now = now
	opts.Range = rng
	opts.TopN = r.Top
	if len(r.CorrelationFields) > 0 {
		opts.CorrelationFields = r.CorrelationFields
	}
	if r.CustomerField != "" {
		opts.CustomerField = r.CustomerField
	}
	if len(r.GroupBy) > 0 {
		opts.GroupFields = r.GroupBy
	}
	return fm, opts, nil
}
