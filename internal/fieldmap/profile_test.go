package fieldmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
)

func TestParseYAMLOverPreset(t *testing.T) {
	doc := []byte(`
name: retail
preset: sales
fields:
  value: amount
  category: region
correlation_fields: [amount, profit]
customer_field: clientId
`)
	p, err := Parse(doc)
	require.NoError(t, err)
	res, err := p.Resolve()
	require.NoError(t, err)

	want := analytics.FieldMap{Value: "amount", Value2: "profit", Date: "orderDate", Category: "region", Name: "productName"}
	assert.Equal(t, want, res.FieldMap)
	assert.Equal(t, "retail", res.Name)
	assert.Equal(t, "clientId", res.CustomerField)
	assert.Equal(t, []string{"amount", "profit"}, res.CorrelationFields)
}

func TestParseJSONStandalone(t *testing.T) {
	doc := []byte(`{"fields": {"value": "hours", "value2": "overtime", "date": "day", "category": "team", "name": "who"}}`)
	p, err := Parse(doc)
	require.NoError(t, err)
	res, err := p.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "who", res.FieldMap.Name)
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown role":      "fields:\n  weight: kg\n",
		"unknown key":       "preset: sales\ncolour: red\n",
		"empty binding":     "fields:\n  value: \"\"\n",
		"single corr field": "preset: sales\ncorrelation_fields: [a]\n",
		"neither":           "name: nothing\n",
		"not an object":     "- a\n- b\n",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidProfile, name)
	}
}

func TestResolveIncompleteFields(t *testing.T) {
	p, err := Parse([]byte("fields:\n  value: amount\n"))
	require.NoError(t, err)
	_, err = p.Resolve()
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.ErrorIs(t, err, analytics.ErrMissingRole)
}

func TestResolveUnknownPreset(t *testing.T) {
	p := &Profile{Preset: "weather"}
	_, err := p.Resolve()
	assert.ErrorIs(t, err, analytics.ErrUnknownPreset)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hr.yaml")
	in := &Profile{Name: "hr", Preset: "employees", CustomerField: "empId"}
	require.NoError(t, in.Save(path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hr", out.Name)
	assert.Equal(t, "employees", out.Preset)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
