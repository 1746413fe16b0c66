package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestResolvePresetWithOverrides(t *testing.T) {
	clock := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	req := Request{
		Preset:        "sales",
		FieldMap:      &FieldMap{Category: "region"},
		Period:        "last90",
		Top:           3,
		CustomerField: "client",
	}
	fm, opts, err := req.Resolve(clock)
	require.NoError(t, err)
	assert.Equal(t, "region", fm.Category)
	assert.Equal(t, "netSales", fm.Value)
	assert.Equal(t, clock, opts.Now)
	assert.Equal(t, "2024-03-17..2024-06-15", opts.Range.String())
	assert.Equal(t, 3, opts.TopN)
	assert.Equal(t, "client", opts.CustomerField)
	assert.Equal(t, DefaultCorrelationFields, opts.CorrelationFields)
	assert.Equal(t, []string{"region", "salesChannel", "country"}, opts.GroupFields)

	req.GroupBy = []string{"channel"}
	_, opts, err = req.Resolve(clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"channel"}, opts.GroupFields)
}

func TestRequestResolveErrors(t *testing.T) {
	clock := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	_, _, err := Request{}.Resolve(clock)
	assert.ErrorIs(t, err, ErrMissingRole)

	_, _, err = Request{Preset: "weather"}.Resolve(clock)
	assert.ErrorIs(t, err, ErrUnknownPreset)

	_, _, err = Request{Preset: "sales", Now: "later"}.Resolve(clock)
	assert.ErrorIs(t, err, ErrInvalidNow)

	_, _, err = Request{Preset: "sales", Start: "2024-13-45"}.Resolve(clock)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, _, err = Request{Preset: "sales", Period: "decade"}.Resolve(clock)
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}
