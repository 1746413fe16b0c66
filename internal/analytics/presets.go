package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownPreset reports a preset name with no built-in definition.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a built-in field mapping for a common record domain.
type Preset struct {
	Name              string   `json:"name" yaml:"name"`
	Description       string   `json:"description" yaml:"description"`
	FieldMap          FieldMap `json:"fieldMap" yaml:"field_map"`
	CorrelationFields []string `json:"correlationFields" yaml:"correlation_fields"`
	CustomerField     string   `json:"customerField,omitempty" yaml:"customer_field,omitempty"`
	GroupFields       []string `json:"groupFields,omitempty" yaml:"group_fields,omitempty"`
}

var presets = map[string]Preset{
	"sales": {
		Name:              "sales",
		Description:       "Sales orders: net sales vs profit per product and customer segment",
		FieldMap:          FieldMap{Value: "netSales", Value2: "profit", Date: "orderDate", Category: "customerSegment", Name: "productName"},
		CorrelationFields: DefaultCorrelationFields,
		CustomerField:     "customerId",
		GroupFields:       []string{"region", "salesChannel", "country"},
	},
	"employees": {
		Name:              "employees",
		Description:       "HR records: net salary vs incentives per department",
		FieldMap:          FieldMap{Value: "netSalary", Value2: "incentives", Date: "joinDate", Category: "department", Name: "fullName"},
		CorrelationFields: []string{"basicSalary", "incentives", "deductions", "netSalary"},
		CustomerField:     "empId",
	},
	"inventory": {
		Name:              "inventory",
		Description:       "Stock snapshots: quantity on hand vs reorder level per warehouse",
		FieldMap:          FieldMap{Value: "stockQty", Value2: "reorderLevel", Date: "lastUpdated", Category: "warehouse", Name: "productName"},
		CorrelationFields: []string{"stockQty", "reorderLevel"},
		CustomerField:     "productId",
	},
	"attendance": {
		Name:              "attendance",
		Description:       "Attendance log: working hours vs overtime per absence type",
		FieldMap:          FieldMap{Value: "workingHours", Value2: "overtime", Date: "date", Category: "absenceType", Name: "empId"},
		CorrelationFields: []string{"workingHours", "overtime"},
		CustomerField:     "empId",
	},
	"purchasing": {
		Name:              "purchasing",
		Description:       "Purchase orders: total cost vs quantity per supplier",
		FieldMap:          FieldMap{Value: "totalCost", Value2: "qty", Date: "orderDate", Category: "status", Name: "prodId"},
		CorrelationFields: []string{"qty", "unitCost", "totalCost"},
		CustomerField:     "suppId",
	},
}

// LookupPreset returns a copy of the named preset.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	p.CorrelationFields = append([]string(nil), p.CorrelationFields...)
	p.GroupFields = append([]string(nil), p.GroupFields...)
	return p, nil
}

// PresetNames lists the built-in presets alphabetically.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
