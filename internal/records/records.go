// Package records loads flat business records from CSV/TSV, JSON and XLSX
// files into analytics.Record values.
package records

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
)

// ErrUnsupportedFormat reports a file extension with no loader.
var ErrUnsupportedFormat = errors.New("unsupported record file format")

// Options controls record loading.
type Options struct {
	// MaxRows limits records loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Sheet selects an XLSX sheet by name (case-insensitive).
	Sheet string
	// SheetIndex selects an XLSX sheet by 1-based sheetId when Sheet is empty.
	SheetIndex int
}

// Table is a loaded record file.
type Table struct {
	Name    string
	Fields  []string
	Records []analytics.Record
	// Rows counts data rows seen, including rows past MaxRows.
	Rows int
}

// Truncated reports whether MaxRows cut the file short.
func (t *Table) Truncated() bool { return t.Rows > len(t.Records) }

// Supported reports whether path has an extension LoadFile can read.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".json", ".xlsx":
		return true
	}
	return false
}

// LoadFile dispatches on the file extension.
func LoadFile(path string, opt Options) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		t, err = loadCSV(path, opt)
	case ".json":
		t, err = loadJSON(path, opt)
	case ".xlsx":
		t, err = loadXLSX(path, opt)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// fromRows turns a header plus string rows into records. Empty cells are
// left out so that missing values resolve the same way as absent keys.
func fromRows(header []string, next func() ([]string, bool, error), opt Options) (*Table, error) {
	t := &Table{}
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("column%d", i+1)
		}
		if seen[name] {
			name = fmt.Sprintf("%s_%d", name, i+1)
		}
		seen[name] = true
		header[i] = name
	}
	t.Fields = header
	for {
		row, ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if blank(row) {
			continue
		}
		t.Rows++
		if opt.MaxRows > 0 && len(t.Records) >= opt.MaxRows {
			continue
		}
		rec := make(analytics.Record, len(header))
		for j, name := range header {
			if j >= len(row) {
				break
			}
			if v := strings.TrimSpace(row[j]); v != "" {
				rec[name] = v
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
