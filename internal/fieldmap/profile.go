// Package fieldmap reads FieldMap profile files: YAML or JSON documents that
// bind the analysis roles to the columns of a particular record source.
package fieldmap

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
)

//go:embed profile.schema.json
var schemaJSON []byte

const schemaURL = "https://insightloom.dev/schema/fieldmap-profile-v1.schema.json"

// ErrInvalidProfile wraps schema violations and unresolvable profiles.
var ErrInvalidProfile = errors.New("invalid field map profile")

// Profile is a named field mapping, optionally layered on a built-in preset.
type Profile struct {
	Name              string             `yaml:"name,omitempty" json:"name,omitempty"`
	Description       string             `yaml:"description,omitempty" json:"description,omitempty"`
	Preset            string             `yaml:"preset,omitempty" json:"preset,omitempty"`
	Fields            analytics.FieldMap `yaml:"fields,omitempty" json:"fields,omitempty"`
	CorrelationFields []string           `yaml:"correlation_fields,omitempty" json:"correlation_fields,omitempty"`
	CustomerField     string             `yaml:"customer_field,omitempty" json:"customer_field,omitempty"`
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func profileSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Load reads and validates a profile file.
func Load(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	p, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse validates a YAML or JSON profile document against the profile schema
// and decodes it.
func Parse(data []byte) (*Profile, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	// Round-trip through JSON so the validator sees plain JSON types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	schema, err := profileSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return &p, nil
}

// Resolve layers the profile's fields over its preset (if any) and returns a
// validated FieldMap plus the correlation fields and customer field to use.
func (p *Profile) Resolve() (analytics.Preset, error) {
	var base analytics.Preset
	if p.Preset != "" {
		pr, err := analytics.LookupPreset(p.Preset)
		if err != nil {
			return analytics.Preset{}, err
		}
		base = pr
	}
	base.Name = p.Name
	if p.Description != "" {
		base.Description = p.Description
	}
	base.FieldMap = base.FieldMap.Merge(p.Fields)
	if len(p.CorrelationFields) > 0 {
		base.CorrelationFields = append([]string(nil), p.CorrelationFields...)
	}
	if p.CustomerField != "" {
		base.CustomerField = p.CustomerField
	}
	if err := base.FieldMap.Validate(); err != nil {
		return analytics.Preset{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	return base, nil
}

// Save writes the profile as YAML.
func (p *Profile) Save(path string) error {
	b, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
