package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/ougirez/cbmreport/internal/pkg/store"
	"github.com/ougirez/cbmreport/internal/service/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	entries    map[string]domain.CatalogEntry
	statements [][]domain.CatalogEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]domain.CatalogEntry)}
}

func (f *fakeStore) UpsertCatalog(_ context.Context, entries []domain.CatalogEntry) error {
	f.statements = append(f.statements, entries)
	for _, e := range entries {
		f.entries[e.SkuID] = e
	}
	return nil
}

func (f *fakeStore) GetCatalogEntry(_ context.Context, skuID string) (*domain.CatalogEntry, error) {
	e, ok := f.entries[skuID]
	if !ok {
		return nil, constants.ErrDBNotFound
	}
	return &e, nil
}

func (f *fakeStore) GetCatalogEntries(_ context.Context, skuIDs []string) ([]domain.CatalogEntry, error) {
	var out []domain.CatalogEntry
	for _, sku := range skuIDs {
		if e, ok := f.entries[sku]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func entry(sku, group, cbm string) domain.CatalogEntry {
	return domain.CatalogEntry{SkuID: sku, ItemGroup: group, CbmPerUnit: decimal.RequireFromString(cbm)}
}

func TestUpsertBatchChunksAndDedupes(t *testing.T) {
	fs := newFakeStore()
	c := cache.NewMemory()
	svc := NewService(fs, c, 2)
	ctx := context.Background()

	_, gen, _ := c.Get(ctx, "report")
	c.Put(ctx, "report", gen, []byte("stale"))

	n, err := svc.UpsertBatch(ctx, []domain.CatalogEntry{
		entry(" SKU-1 ", "Electronics", "0.5"),
		entry("SKU-2", "Toys", "0.1"),
		entry("SKU-1", "Offline", "0.7"),
		entry("", "ignored", "1"),
		entry("SKU-3", "Home", "0.2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, fs.statements, 2)
	assert.Len(t, fs.statements[0], 2)
	assert.Len(t, fs.statements[1], 1)

	got, err := svc.Lookup(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, "Offline", got.ItemGroup)
	assert.True(t, got.CbmPerUnit.Equal(decimal.RequireFromString("0.7")))

	_, _, ok := c.Get(ctx, "report")
	assert.False(t, ok, "catalog updates clear the cache")
}

func TestUpsertBatchLargeUploadStaysUnderChunkSize(t *testing.T) {
	fs := newFakeStore()
	svc := NewService(fs, cache.NewMemory(), 1000)

	entries := make([]domain.CatalogEntry, 0, 2500)
	for i := 0; i < 2500; i++ {
		entries = append(entries, entry(fmt.Sprintf("SKU-%d", i), "Electronics", "0.01"))
	}

	n, err := svc.UpsertBatch(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, 2500, n)
	require.Len(t, fs.statements, 3)
	for _, st := range fs.statements {
		assert.LessOrEqual(t, len(st), 1000)
	}
}

func TestChunkSizeBoundedByBindParams(t *testing.T) {
	svc := NewService(newFakeStore(), cache.NewMemory(), 1_000_000)
	assert.Equal(t, store.MaxCatalogChunk(), svc.chunkSize)
	assert.LessOrEqual(t, svc.chunkSize*3, 65535)
}

func TestLookupUnknown(t *testing.T) {
	svc := NewService(newFakeStore(), cache.NewMemory(), 0)
	_, err := svc.Lookup(context.Background(), "nope")
	assert.ErrorIs(t, err, constants.ErrDBNotFound)
}

func TestResolveDegradesToOthers(t *testing.T) {
	fs := newFakeStore()
	fs.entries["SKU-1"] = entry("SKU-1", "Electronics", "0.5")
	svc := NewService(fs, cache.NewMemory(), 0)

	r, err := svc.Resolve(context.Background(), []string{"SKU-1", " SKU-1", "SKU-X", ""})
	require.NoError(t, err)

	known := r.Resolve(" SKU-1 ")
	assert.Equal(t, "Electronics", known.ItemGroup)

	unknown := r.Resolve("SKU-X")
	assert.Equal(t, domain.UnknownItemGroup, unknown.ItemGroup)
	assert.True(t, unknown.CbmPerUnit.IsZero())
}
