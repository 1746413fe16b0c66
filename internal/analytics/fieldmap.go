package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is a single schema-free business row. Values are strings, numbers,
// time.Time or nil; fields are only interpreted through a FieldMap.
type Record map[string]any

// Role names a semantic slot that a FieldMap binds to a concrete field.
type Role string

const (
	RoleValue    Role = "value"
	RoleValue2   Role = "value2"
	RoleDate     Role = "date"
	RoleCategory Role = "category"
	RoleName     Role = "name"
)

// Roles lists every role in declaration order.
var Roles = []Role{RoleValue, RoleValue2, RoleDate, RoleCategory, RoleName}

// UnknownLabel is returned for missing categorical or name values.
const UnknownLabel = "Unknown"

var (
	// ErrMissingRole reports a FieldMap without a binding for a required role.
	ErrMissingRole = errors.New("field map is missing a role binding")
	// ErrUnknownRole reports a role name that is not one of Roles.
	ErrUnknownRole = errors.New("unknown role")
)

// FieldMap binds the five analysis roles to record field names.
type FieldMap struct {
	Value    string `json:"value" yaml:"value,omitempty" mapstructure:"value"`
	Value2   string `json:"value2" yaml:"value2,omitempty" mapstructure:"value2"`
	Date     string `json:"date" yaml:"date,omitempty" mapstructure:"date"`
	Category string `json:"category" yaml:"category,omitempty" mapstructure:"category"`
	Name     string `json:"name" yaml:"name,omitempty" mapstructure:"name"`
}

// Validate returns ErrMissingRole (wrapped with the role) for the first empty binding.
func (fm FieldMap) Validate() error {
	for _, r := range Roles {
		if strings.TrimSpace(fm.Field(r)) == "" {
			return fmt.Errorf("%w: %s", ErrMissingRole, r)
		}
	}
	return nil
}

// Field returns the record key bound to role, or "" for an unknown role.
func (fm FieldMap) Field(r Role) string {
	switch r {
	case RoleValue:
		return fm.Value
	case RoleValue2:
		return fm.Value2
	case RoleDate:
		return fm.Date
	case RoleCategory:
		return fm.Category
	case RoleName:
		return fm.Name
	}
	return ""
}

// With returns a copy of fm with role rebound to field. Empty fields are ignored.
func (fm FieldMap) With(r Role, field string) (FieldMap, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return fm, nil
	}
	switch r {
	case RoleValue:
		fm.Value = field
	case RoleValue2:
		fm.Value2 = field
	case RoleDate:
		fm.Date = field
	case RoleCategory:
		fm.Category = field
	case RoleName:
		fm.Name = field
	default:
		return fm, fmt.Errorf("%w: %q", ErrUnknownRole, r)
	}
	return fm, nil
}

// Merge overlays the non-empty bindings of o onto fm.
func (fm FieldMap) Merge(o FieldMap) FieldMap {
	for _, r := range Roles {
		fm, _ = fm.With(r, o.Field(r))
	}
	return fm
}

// Number resolves a numeric role; missing or non-numeric values are 0.
func (fm FieldMap) Number(rec Record, r Role) float64 {
	return FieldNumber(rec, fm.Field(r))
}

// Text resolves a categorical role; missing values are UnknownLabel.
func (fm FieldMap) Text(rec Record, r Role) string {
	s := FieldText(rec, fm.Field(r))
	if s == "" {
		return UnknownLabel
	}
	return s
}

// DateString returns the raw date value as text ("" when absent).
func (fm FieldMap) DateString(rec Record) string {
	return FieldText(rec, fm.Date)
}

// DateOf parses the date role. ok is false for absent or unparseable dates.
func (fm FieldMap) DateOf(rec Record) (time.Time, bool) {
	v, present := rec[fm.Date]
	if !present || v == nil {
		return time.Time{}, false
	}
	if t, isTime := v.(time.Time); isTime {
		return t, !t.IsZero()
	}
	return parseTimeMaybe(FieldText(rec, fm.Date))
}

// FieldNumber reads an arbitrary field with permissive float parsing.
func FieldNumber(rec Record, field string) float64 {
	if rec == nil || field == "" {
		return 0
	}
	var f float64
	switch v := rec[field].(type) {
	case nil:
		return 0
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		f = parseFloatLoose(string(v))
	case string:
		f = parseFloatLoose(v)
	case bool:
		return 0
	default:
		f = parseFloatLoose(fmt.Sprint(v))
	}
	return finite(f)
}

// FieldText reads an arbitrary field as trimmed text ("" when absent).
func FieldText(rec Record, field string) string {
	if rec == nil || field == "" {
		return ""
	}
	switch v := rec[field].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(dateLayout)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
