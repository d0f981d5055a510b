package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/ougirez/cbmreport/internal/pkg/store/xpgx"
)

var catalogColumns = []string{"sku_id", "item_group", "cbm_per_unit"}

// MaxCatalogChunk is the most catalog entries one upsert statement can carry.
func MaxCatalogChunk() int {
	return maxBindParams / len(catalogColumns)
}

// UpsertCatalog writes all entries in one statement. Callers keep the slice
// small enough for the bind-parameter limit and free of duplicate SKUs.
func (s *store) UpsertCatalog(ctx context.Context, entries []domain.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := builder().Insert(tableCatalogEntries).
		Columns(catalogColumns...)

	for _, e := range entries {
		query = query.Values(e.SkuID, e.ItemGroup, e.CbmPerUnit)
	}

	query = query.Suffix(`
on conflict (sku_id)
do update
set
	item_group = excluded.item_group,
	cbm_per_unit = excluded.cbm_per_unit,
	updated_at = now()`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		logger.Error(ctx, err.Error())
		return err
	}

	return nil
}

func (s *store) GetCatalogEntry(ctx context.Context, skuID string) (*domain.CatalogEntry, error) {
	query := builder().Select(catalogColumns...).
		From(tableCatalogEntries).
		Where(sq.Eq{"sku_id": skuID})

	selected, err := xpgx.Get[domain.CatalogEntry](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}

func (s *store) GetCatalogEntries(ctx context.Context, skuIDs []string) ([]domain.CatalogEntry, error) {
	if len(skuIDs) == 0 {
		return nil, nil
	}

	query := builder().Select(catalogColumns...).
		From(tableCatalogEntries).
		Where(sq.Eq{"sku_id": skuIDs})

	return xpgx.Select[domain.CatalogEntry](ctx, s.pool, query)
}
