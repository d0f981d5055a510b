package store

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inventoryFilter() domain.ReportFilter {
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return domain.ReportFilter{Kind: domain.SourceKindInventory, BatchID: uuid.New(), From: &from}
}

func TestItemAveragesQuery(t *testing.T) {
	f := inventoryFilter()

	sql, args, err := itemAverages(f).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM inventory_facts")
	assert.Contains(t, sql, "AVG(qty) AS avg_qty")
	assert.Contains(t, sql, "NOT is_total_row")
	assert.Contains(t, sql, "GROUP BY item, warehouse")
	assert.NotContains(t, sql, "kind =")
	assert.Equal(t, []any{f.BatchID, *f.From}, args)
}

func TestInventoryCardQueries(t *testing.T) {
	f := inventoryFilter()
	sums, cbm := inventoryCardQueries(f)

	sumsSQL, sumsArgs, err := sums.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sumsSQL, "SUM(qty) FILTER (WHERE is_total_row)")
	assert.Contains(t, sumsSQL, "COUNT(DISTINCT date) FILTER (WHERE is_total_row) AS total_row_days")
	assert.Contains(t, sumsSQL, "FILTER (WHERE NOT is_total_row AND cbm_per_unit > 0) AS sku_count")
	assert.Len(t, sumsArgs, 2)

	cbmSQL, cbmArgs, err := cbm.ToSql()
	require.NoError(t, err)
	assert.Contains(t, cbmSQL, "SUM(avg_qty * cbm_per_unit)")
	assert.Contains(t, cbmSQL, "cbm_per_unit > 0")
	assert.Contains(t, cbmSQL, "avg_qty > 0")
	assert.Contains(t, cbmSQL, "$1")
	assert.NotContains(t, cbmSQL, "?")
	assert.Equal(t, []any{f.BatchID, *f.From}, cbmArgs)
}

func TestInventoryCategoryFilterDropsTotalRow(t *testing.T) {
	f := inventoryFilter()
	f.Categories = []domain.ProductCategory{domain.CategoryElectronics, domain.CategoryOffline}

	sums, _ := inventoryCardQueries(f)
	sql, args, err := sums.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "product_category IN ($3,$4)")
	// the category filter excludes Total rows from the whole scope
	where := sql[strings.Index(sql, "WHERE batch_id"):]
	assert.Contains(t, where, "NOT is_total_row")
	assert.Equal(t, []any{f.BatchID, *f.From, "ELECTRONICS", "OFFLINE"}, args)
}

func TestMovementScopeFiltersKind(t *testing.T) {
	f := domain.ReportFilter{Kind: domain.SourceKindInbound, BatchID: uuid.New()}

	sql, args, err := applyFilter(scoped(f, "date"), f).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM movement_facts")
	assert.Contains(t, sql, "kind = $1")
	assert.Equal(t, []any{"INBOUND", f.BatchID}, args)
}
