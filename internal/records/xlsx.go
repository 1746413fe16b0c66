package records

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrSheetNotFound reports a requested sheet name missing from the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

type sheetEntry struct {
	name string
	id   int
	rid  string
}

type workbook struct {
	zr     *zip.ReadCloser
	sheets []sheetEntry
	rels   map[string]string
	shared []string
}

func openWorkbook(p string) (*workbook, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := &workbook{zr: zr}
	var parts [3][]byte
	for i, name := range []string{"xl/workbook.xml", "xl/_rels/workbook.xml.rels", "xl/sharedStrings.xml"} {
		if parts[i], err = wb.file(name); err != nil {
			zr.Close()
			return nil, err
		}
	}
	wb.sheets = parseSheetEntries(parts[0])
	wb.rels = parseRels(parts[1])
	wb.shared = parseSharedStrings(parts[2])
	return wb, nil
}

func (wb *workbook) Close() error { return wb.zr.Close() }

// file returns the contents of a zip entry, or nil when it is absent. A
// present but unreadable entry is an error.
func (wb *workbook) file(name string) ([]byte, error) {
	for _, f := range wb.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open xlsx part %s: %w", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read xlsx part %s: %w", name, err)
		}
		return b, nil
	}
	return nil, nil
}

// SheetNames lists sheet names in workbook order.
func (wb *workbook) SheetNames() []string {
	out := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		out[i] = s.name
	}
	return out
}

// sheetPath resolves a sheet by name, then by 1-based sheetId, then by the
// conventional worksheets/sheetN.xml location.
func (wb *workbook) sheetPath(name string, index int) (string, error) {
	if name != "" {
		for _, s := range wb.sheets {
			if strings.EqualFold(s.name, name) {
				if rel, ok := wb.rels[s.rid]; ok {
					return normalizeRelPath(rel), nil
				}
			}
		}
		return "", fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, name, strings.Join(wb.SheetNames(), ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.sheets {
		if s.id == index {
			if rel, ok := wb.rels[s.rid]; ok {
				return normalizeRelPath(rel), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

func loadXLSX(p string, opt Options) (*Table, error) {
	wb, err := openWorkbook(p)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	target, err := wb.sheetPath(opt.Sheet, opt.SheetIndex)
	if err != nil {
		return nil, err
	}
	data, err := wb.file(target)
	if err != nil {
		return nil, err
	}
	rr := newRowReader(data, wb.shared)
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return &Table{}, nil
	}
	next := func() ([]string, bool, error) {
		row, ok := rr.Next()
		return row, ok, nil
	}
	return fromRows(header, next, opt)
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// walk feeds every token of data to fn until EOF or a decode error.
func walk(data []byte, fn func(xml.Token)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		fn(tok)
	}
}

func parseSheetEntries(data []byte) []sheetEntry {
	var out []sheetEntry
	walk(data, func(tok xml.Token) {
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "sheet" {
			out = append(out, sheetEntry{name: attr(se, "name"), id: atoiSafe(attr(se, "sheetId")), rid: attr(se, "id")})
		}
	})
	return out
}

func parseRels(data []byte) map[string]string {
	out := map[string]string{}
	walk(data, func(tok xml.Token) {
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			id, target := attr(se, "Id"), attr(se, "Target")
			if id != "" && target != "" {
				out[id] = target
			}
		}
	})
	return out
}

func parseSharedStrings(data []byte) []string {
	var (
		out []string
		buf strings.Builder
		inT bool
	)
	walk(data, func(tok xml.Token) {
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	})
	return out
}

// rowReader streams rows of a worksheet as string slices indexed by column.
type rowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newRowReader(data []byte, shared []string) *rowReader {
	return &rowReader{dec: xml.NewDecoder(strings.NewReader(string(data))), shared: shared}
}

// Next returns the next <row>, padded to its widest referenced column.
func (r *rowReader) Next() ([]string, bool) {
	var (
		row   []string
		inRow bool
	)
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow = true
				row = row[:0]
			case inRow && se.Name.Local == "c":
				col := colIndexFromRef(attr(se, "r"))
				if col < 0 {
					col = len(row)
				}
				val := r.cellValue(attr(se, "t"))
				for len(row) <= col {
					row = append(row, "")
				}
				row[col] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				return row, true
			}
		}
	}
}

// cellValue consumes tokens up to </c> and returns the resolved text.
func (r *rowReader) cellValue(typ string) string {
	var val strings.Builder
	var inVal bool
	for {
		tok, err := r.dec.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				inVal = true
			}
		case xml.CharData:
			if inVal {
				val.Write(se)
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "v", "t":
				inVal = false
			case "c":
				return resolveCell(typ, val.String(), r.shared)
			}
		}
	}
	return resolveCell(typ, val.String(), r.shared)
}

func resolveCell(typ, raw string, shared []string) string {
	switch typ {
	case "s":
		idx := atoiSafe(raw)
		if idx >= 0 && idx < len(shared) {
			return shared[idx]
		}
		return ""
	case "b":
		if raw == "1" {
			return "TRUE"
		}
		return "FALSE"
	}
	return raw
}

// colIndexFromRef maps a cell reference like "C12" to a 0-based column, or -1
// when the reference carries no column letters.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath maps a relationship target to its zip entry name. Targets
// may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
