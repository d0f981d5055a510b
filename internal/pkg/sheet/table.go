// Package sheet turns uploaded spreadsheet exports into typed ingestion rows.
// Supported inputs are xlsx workbooks, HTML-table exports (including legacy
// ".xls" files that are HTML underneath) and csv.
package sheet

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ougirez/cbmreport/internal/pkg/constants"
)

// Row is a data row with its 1-based line number in the source sheet.
type Row struct {
	Line  int
	Cells []string
}

// Cell returns the trimmed cell at i, or "" when the row is short.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

func (r Row) blank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Table is a parsed sheet: the first non-empty row is the header.
type Table struct {
	header []string
	rows   []Row
	index  map[string]int
}

func newTable(records [][]string) (*Table, bool) {
	t := &Table{index: map[string]int{}}

	headerAt := -1
	for i, rec := range records {
		if !(Row{Cells: rec}).blank() {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, false
	}

	for i, h := range records[headerAt] {
		h = strings.TrimSpace(h)
		t.header = append(t.header, h)
		k := headerKey(h)
		if _, dup := t.index[k]; !dup && k != "" {
			t.index[k] = i
		}
	}

	for i := headerAt + 1; i < len(records); i++ {
		row := Row{Line: i + 1, Cells: records[i]}
		if row.blank() {
			continue
		}
		t.rows = append(t.rows, row)
	}

	return t, true
}

func (t *Table) Header() []string {
	return t.header
}

func (t *Table) Rows() []Row {
	return t.rows
}

// Column returns the index of the first header matching one of the aliases,
// compared case-insensitively and ignoring punctuation. Missing columns are -1.
func (t *Table) Column(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := t.index[headerKey(a)]; ok {
			return i
		}
	}
	return -1
}

func headerKey(h string) string {
	h = strings.ToLower(h)
	h = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.', '/', '(', ')', ':', '#':
			return ' '
		}
		return r
	}, h)
	return strings.Join(strings.Fields(h), " ")
}

// Open parses r according to the extension of name.
func Open(name string, r io.Reader) (*Table, error) {
	var (
		t   *Table
		err error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		t, err = ReadXLSX(r)
	case ".html", ".htm", ".xls":
		t, err = ReadHTML(r)
	case ".csv":
		t, err = ReadCSV(r)
	default:
		return nil, fmt.Errorf("%q: %w", name, constants.ErrUnsupportedFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return t, nil
}
