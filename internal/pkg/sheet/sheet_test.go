package sheet

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ougirez/cbmreport/internal/domain/dto"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func collect[T any](t *testing.T, src dto.Source[T]) []T {
	t.Helper()
	var out []T
	require.NoError(t, src.Each(context.Background(), func(row T) error {
		out = append(out, row)
		return nil
	}))
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestInboundFromXLSX(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Date", "Invoice SKU", "Received SKU", "Invoice Qty", "Received Qty", "Good Qty", "Warehouse"},
		{date(2024, time.January, 5), "SKU-1", "SKU-1", 12, 10, 9, "WH-A"},
		{},
		{"2024-01-06", "SKU-2", "", 4, 4, nil, "WH-B"},
	})

	table, err := Open("inbound.xlsx", buf)
	require.NoError(t, err)

	src, err := Inbound(table)
	require.NoError(t, err)
	rows := collect(t, src)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, date(2024, time.January, 5), rows[0].Date)
	assert.Equal(t, "SKU-1", rows[0].FulfilledSku)
	assert.True(t, rows[0].OrderQty.Equal(decimal.NewFromInt(12)))
	assert.True(t, rows[0].FulfilledQty.Equal(decimal.NewFromInt(10)))
	require.NotNil(t, rows[0].GoodQty)
	assert.True(t, rows[0].GoodQty.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, "WH-A", rows[0].Warehouse)

	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, date(2024, time.January, 6), rows[1].Date)
	assert.Empty(t, rows[1].FulfilledSku)
	assert.Nil(t, rows[1].GoodQty)
}

func TestOutboundFromHTML(t *testing.T) {
	html := `<html><body>
<table><tr><td>Report generated</td></tr></table>
<table>
  <tr><th>DN Date</th><th>SO SKU</th><th>DN SKU</th><th>SO Qty</th><th>DN Qty</th></tr>
  <tr><td>05-01-2024</td><td>SKU-1</td><td>SKU-1</td><td>1,200</td><td>1,150</td></tr>
  <tr><td></td><td></td><td></td><td>1,200</td><td>1,150</td></tr>
</table></body></html>`

	table, err := Open("outbound.xls", strings.NewReader(html))
	require.NoError(t, err)

	src, err := Outbound(table)
	require.NoError(t, err)
	rows := collect(t, src)

	// the first table has no data rows, the footer line has no date and no sku
	require.Len(t, rows, 1)
	assert.Equal(t, date(2024, time.January, 5), rows[0].Date)
	assert.True(t, rows[0].OrderQty.Equal(decimal.NewFromInt(1200)))
	assert.True(t, rows[0].FulfilledQty.Equal(decimal.NewFromInt(1150)))
}

func TestInventoryFromCSV(t *testing.T) {
	csv := "\xef\xbb\xbfItem,Warehouse,2024-03-01,2024-03-02,2024-03-03\n" +
		"SKU-1,WH-A,40,60,\n" +
		"Total,,100,120,80\n"

	table, err := Open("inventory.csv", strings.NewReader(csv))
	require.NoError(t, err)

	src, err := Inventory(table)
	require.NoError(t, err)
	rows := collect(t, src)
	require.Len(t, rows, 2)

	item := rows[0]
	assert.Equal(t, "SKU-1", item.Item)
	assert.False(t, item.IsTotalRow)
	require.Len(t, item.Daily, 2, "empty cells carry no data")
	assert.Equal(t, date(2024, time.March, 2), item.Daily[1].Date)

	total := rows[1]
	assert.True(t, total.IsTotalRow)
	require.Len(t, total.Daily, 3)
	assert.True(t, total.Daily[2].Qty.Equal(decimal.NewFromInt(80)))
}

func TestInventoryDateHeadersFromXLSX(t *testing.T) {
	buf := workbook(t, [][]any{
		{"SKU", "Warehouse", date(2024, time.March, 1), date(2024, time.March, 2)},
		{"SKU-1", "WH-A", 5, 7},
	})

	table, err := Open("inventory.xlsx", buf)
	require.NoError(t, err)

	src, err := Inventory(table)
	require.NoError(t, err)
	rows := collect(t, src)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Daily, 2)
	assert.Equal(t, date(2024, time.March, 1), rows[0].Daily[0].Date)
}

func TestCatalog(t *testing.T) {
	csv := "SKU ID,Item Group,CBM/Unit\nSKU-1,Electronics,0.5\nSKU-2,,0.25\n"

	table, err := Open("catalog.csv", strings.NewReader(csv))
	require.NoError(t, err)

	src, err := Catalog(table)
	require.NoError(t, err)
	rows := collect(t, src)
	require.Len(t, rows, 2)
	assert.Equal(t, "Electronics", rows[0].ItemGroup)
	assert.True(t, rows[0].CbmPerUnit.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, "Others", rows[1].ItemGroup)
}

func TestRowErrorsCarryLineNumber(t *testing.T) {
	csv := "Date,SKU,Qty\n2024-01-05,SKU-1,10\nnot-a-date,SKU-2,3\n"

	table, err := Open("inbound.csv", strings.NewReader(csv))
	require.NoError(t, err)
	src, err := Inbound(table)
	require.NoError(t, err)

	err = src.Each(context.Background(), func(dto.InboundRow) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestMissingColumns(t *testing.T) {
	table, err := Open("inbound.csv", strings.NewReader("Foo,Bar\n1,2\n"))
	require.NoError(t, err)

	_, err = Inbound(table)
	assert.ErrorIs(t, err, constants.ErrValidation)

	_, err = Inventory(table)
	assert.ErrorIs(t, err, constants.ErrValidation)
}

func TestOpenRejectsUnknownExtension(t *testing.T) {
	_, err := Open("report.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, constants.ErrUnsupportedFile)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-05", date(2024, time.January, 5)},
		{"05/01/2024", date(2024, time.January, 5)},
		{"5-Jan-24", date(2024, time.January, 5)},
		{"05-01-24", date(2024, time.January, 5)},
		{"5-1-24", date(2024, time.January, 5)},
		{"05/01/24", date(2024, time.January, 5)},
		{"31-12-23", date(2023, time.December, 31)},
		{"05 Jan 2024", date(2024, time.January, 5)},
		{"45296", date(2024, time.January, 5)},
		{"45296.75", date(2024, time.January, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDate("12")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal(" 1,234.50 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1234.5")))

	d, err = ParseDecimal("-")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDecimal("abc")
	assert.Error(t, err)
}
