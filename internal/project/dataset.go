package project

import (
	"time"
	"unicode/utf8"

	"github.com/KaramelBytes/insightloom-cli/internal/records"
)

// Dataset is a record file registered with a project. The loader settings it
// was added with are kept so later reads parse it the same way.
type Dataset struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Format      string    `json:"format"`
	Records     int       `json:"records"`
	Fields      []string  `json:"fields"`
	Delimiter   string    `json:"delimiter,omitempty"`
	Sheet       string    `json:"sheet,omitempty"`
	SheetIndex  int       `json:"sheet_index,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

// options rebuilds the loader options for d. Non-zero fields of override
// replace the stored ones; MaxRows always comes from override.
func (d *Dataset) options(override records.Options) records.Options {
	opt := records.Options{MaxRows: override.MaxRows, Sheet: d.Sheet, SheetIndex: d.SheetIndex}
	if r, _ := utf8.DecodeRuneInString(d.Delimiter); r != utf8.RuneError {
		opt.Delimiter = r
	}
	if override.Delimiter != 0 {
		opt.Delimiter = override.Delimiter
	}
	if override.Sheet != "" {
		opt.Sheet = override.Sheet
		opt.SheetIndex = 0
	}
	if override.SheetIndex > 0 {
		opt.SheetIndex = override.SheetIndex
	}
	return opt
}
