package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
)

// Decode reads a JSON array of objects, or an object with a "records" array.
// Numbers stay json.Number so no precision is lost before the engine parses them.
func Decode(data []byte) ([]analytics.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if data[0] == '[' {
		var recs []analytics.Record
		if err := dec.Decode(&recs); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return recs, nil
	}
	var wrapped struct {
		Records []analytics.Record `json:"records"`
	}
	if err := dec.Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return wrapped.Records, nil
}

func loadJSON(path string, opt Options) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	recs, err := Decode(b)
	if err != nil {
		return nil, err
	}
	t := &Table{}
	fields := map[string]bool{}
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		t.Rows++
		for k := range rec {
			fields[k] = true
		}
		if opt.MaxRows > 0 && len(t.Records) >= opt.MaxRows {
			continue
		}
		t.Records = append(t.Records, rec)
	}
	for k := range fields {
		t.Fields = append(t.Fields, k)
	}
	sort.Strings(t.Fields)
	return t, nil
}
