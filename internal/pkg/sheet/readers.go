package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/xuri/excelize/v2"
)

var errNoData = fmt.Errorf("no data rows found: %w", constants.ErrUnsupportedFile)

// ReadXLSX reads the first worksheet that has data rows. Cells are read raw, so dates
// arrive as Excel serial numbers and numbers without display formatting.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("excelize.OpenReader: %w", errors.Join(constants.ErrUnsupportedFile, err))
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("GetRows, sheet-%s: %w", name, err)
		}
		if t, ok := newTable(rows); ok && len(t.rows) > 0 {
			return t, nil
		}
	}

	return nil, errNoData
}

// ReadHTML reads the first table that has data rows.
func ReadHTML(r io.Reader) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("goquery.NewDocumentFromReader: %w", err)
	}

	var t *Table
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		var records [][]string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var rec []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				rec = append(rec, strings.Join(strings.Fields(cell.Text()), " "))
			})
			records = append(records, rec)
		})

		parsed, ok := newTable(records)
		if !ok || len(parsed.rows) == 0 {
			return true
		}
		t = parsed
		return false
	})
	if t == nil {
		return nil, errNoData
	}

	return t, nil
}

// ReadCSV reads comma separated input with an optional UTF-8 BOM.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv.ReadAll: %w", err)
	}

	t, ok := newTable(records)
	if !ok {
		return nil, errNoData
	}

	return t, nil
}
