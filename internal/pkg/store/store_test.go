package store_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/ougirez/cbmreport/internal/pkg/store"
	"github.com/ougirez/cbmreport/internal/pkg/store/xpgx"
	"github.com/ougirez/cbmreport/internal/service/cache"
	"github.com/ougirez/cbmreport/internal/service/catalog"
	"github.com/ougirez/cbmreport/internal/service/ingest"
	"github.com/ougirez/cbmreport/internal/service/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	pool    *xpgx.Pool
	store   store.Store
	ingest  *ingest.Service
	catalog *catalog.Service
	report  *report.Service
}

// setup needs TEST_DATABASE_URL pointing at a disposable database; tables are truncated.
func setup(t *testing.T) *env {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := xpgx.Connect(ctx, dsn, 4, 1)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, store.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE upload_batches, catalog_entries, movement_facts, inventory_facts CASCADE")
	require.NoError(t, err)

	st := store.NewStore(pool)
	mem := cache.NewMemory()
	cat := catalog.NewService(st, mem, 2)

	return &env{
		pool:    pool,
		store:   st,
		catalog: cat,
		ingest:  ingest.NewService(st, cat, mem, 2),
		report:  report.NewService(st, mem, validator.New()),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEndToEndInbound(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.ingest.IngestFile(ctx, domain.SourceKindCatalog, "catalog.csv",
		strings.NewReader("SKU,Item Group,CBM per unit\nSKU-1,Electronics,0.5\nSKU-2,Toys,0.2\nSKU-3,Home & Kitchen,1.25\n"))
	require.NoError(t, err)

	entry, err := e.catalog.Lookup(ctx, "SKU-1")
	require.NoError(t, err)
	assert.True(t, entry.CbmPerUnit.Equal(dec("0.5")))

	batch, err := e.ingest.IngestFile(ctx, domain.SourceKindInbound, "inbound.csv", strings.NewReader(
		"Date,Invoice SKU,Received SKU,Invoice Qty,Received Qty,Warehouse\n"+
			"2024-01-05,SKU-1,SKU-1,12,10,WH-A\n"+
			"2024-01-06,SKU-2,SKU-2,5,5,WH-A\n"+
			"2024-01-20,SKU-404,SKU-404,3,3,WH-B\n",
	))
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusProcessed, batch.Status)

	r, err := e.report.BuildReport(ctx, domain.SourceKindInbound, report.Params{})
	require.NoError(t, err)
	assert.Equal(t, batch.ID, r.BatchID)

	cards := r.Cards.Movement
	require.NotNil(t, cards)
	assert.True(t, cards.FulfilledQtyTotal.Equal(dec("18")))
	assert.True(t, cards.TotalCbm.Equal(dec("6")), "got %s", cards.TotalCbm)
	assert.EqualValues(t, 3, cards.FulfilledSkuCount)

	byCategory := map[domain.ProductCategory]domain.CategoryRow{}
	for _, row := range r.CategoryTable {
		byCategory[row.Category] = row
	}
	assert.True(t, byCategory[domain.CategoryElectronics].FulfilledCbm.Equal(dec("5")))
	assert.True(t, byCategory[domain.CategoryOthers].FulfilledCbm.IsZero(), "unknown sku degrades to OTHERS")
	assert.True(t, byCategory[domain.CategoryTotal].FulfilledCbm.Equal(cards.TotalCbm))
	assert.True(t, byCategory[domain.CategoryTotal].Pending.Equal(dec("2")))

	assert.Equal(t, []string{"2024-01"}, r.AvailableMonths)
	assert.Equal(t, []string{"WH-A", "WH-B"}, r.Warehouses)
	require.NotNil(t, r.AvailableDates.MinDate)
	assert.Equal(t, "2024-01-05", r.AvailableDates.MinDate.Format(constants.DateLayout))

	r, err = e.report.BuildReport(ctx, domain.SourceKindInbound, report.Params{ProductCategory: []string{"Electronics"}, TimeGranularity: "week"})
	require.NoError(t, err)
	assert.True(t, r.Cards.Movement.FulfilledQtyTotal.Equal(dec("10")))
	require.Len(t, r.TimeSeries.Points, 1)
	assert.Equal(t, "2024-W01", r.TimeSeries.Points[0].Key)

	ranking, err := e.report.BuildRanking(ctx, domain.SourceKindInbound, report.Params{RankBy: "cbm"})
	require.NoError(t, err)
	require.Len(t, ranking.Products, 3)
	assert.Equal(t, "SKU-1", ranking.Products[0].Product)
	assert.True(t, ranking.Total.Equal(dec("6")))
	assert.True(t, ranking.Products[0].PercentageOfTotal.Equal(dec("83.33")))

	require.NoError(t, e.ingest.Delete(ctx, batch.ID))
	_, err = e.report.BuildReport(ctx, domain.SourceKindInbound, report.Params{})
	assert.ErrorIs(t, err, constants.ErrNoProcessedBatch)
}

func TestEndToEndInventory(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.ingest.IngestFile(ctx, domain.SourceKindCatalog, "catalog.csv",
		strings.NewReader("SKU,Item Group,CBM\nSKU-1,Electronics,0.5\nSKU-2,Toys,0\n"))
	require.NoError(t, err)

	_, err = e.ingest.IngestFile(ctx, domain.SourceKindInventory, "inventory.csv", strings.NewReader(
		"Item,Warehouse,2024-03-01,2024-03-02,2024-03-03\n"+
			"SKU-1,WH-A,40,60,20\n"+
			"SKU-2,WH-A,60,60,60\n"+
			"Total,,100,120,80\n",
	))
	require.NoError(t, err)

	r, err := e.report.BuildReport(ctx, domain.SourceKindInventory, report.Params{TimeGranularity: "day"})
	require.NoError(t, err)

	cards := r.Cards.Inventory
	require.NotNil(t, cards)
	assert.True(t, cards.UsedTotalRow)
	assert.True(t, cards.InventoryQty.Equal(dec("100")), "got %s", cards.InventoryQty)
	assert.True(t, cards.TotalCbm.Equal(dec("20")), "avg 40 x 0.5, got %s", cards.TotalCbm)
	assert.EqualValues(t, 1, cards.SkuCount)
	assert.Len(t, r.TimeSeries.Points, 3)
	assert.NotContains(t, r.ProductCategories, domain.CategoryTotal)

	// with a category filter the Total row is ignored
	r, err = e.report.BuildReport(ctx, domain.SourceKindInventory, report.Params{ProductCategory: []string{"electronics"}})
	require.NoError(t, err)
	assert.False(t, r.Cards.Inventory.UsedTotalRow)
	assert.True(t, r.Cards.Inventory.InventoryQty.Equal(dec("120")))
}

func TestBatchLifecycle(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.ingest.IngestFile(ctx, domain.SourceKindInbound, "broken.csv", strings.NewReader(
		"Date,SKU,Qty\n2024-01-05,SKU-1,1\n2024-01-05,SKU-1,1\nnot-a-date,SKU-1,1\n",
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrIngestion)

	kind := domain.SourceKindInbound
	batches, err := e.store.ListBatches(ctx, store.ListBatchesOpts{Kind: &kind})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, domain.BatchStatusFailed, batches[0].Status)
	assert.EqualValues(t, 2, batches[0].RowCount, "the first chunk stays written")
	require.NotNil(t, batches[0].Error)

	_, err = e.store.LatestProcessedBatch(ctx, domain.SourceKindInbound)
	assert.ErrorIs(t, err, constants.ErrDBNotFound)

	err = e.store.DeleteBatch(ctx, batches[0].ID)
	require.NoError(t, err)
	err = e.store.DeleteBatch(ctx, batches[0].ID)
	assert.ErrorIs(t, err, constants.ErrDBNotFound)
}
