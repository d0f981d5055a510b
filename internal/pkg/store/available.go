package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/store/xpgx"
)

type sqSelect = sq.SelectBuilder

// batchScope drops the date and category parts of the filter: the pickers show
// everything the batch offers.
func batchScope(f domain.ReportFilter) sqSelect {
	return scoped(f).Where(sq.Eq{"batch_id": f.BatchID})
}

func (s *store) AvailableDates(ctx context.Context, f domain.ReportFilter) (*domain.DateRange, error) {
	query := batchScope(f).Columns("MIN(date) AS min_date", "MAX(date) AS max_date")

	selected, err := xpgx.Get[domain.DateRange](ctx, s.pool, query)
	if err != nil {
		return nil, err
	}

	return &selected, nil
}

func (s *store) AvailableMonths(ctx context.Context, f domain.ReportFilter) ([]string, error) {
	query := batchScope(f).
		Columns("DISTINCT to_char(date, 'YYYY-MM') AS month").
		OrderBy("month")

	return xpgx.Scalars[string](ctx, s.pool, query)
}

func (s *store) AvailableCategories(ctx context.Context, f domain.ReportFilter) ([]domain.ProductCategory, error) {
	query := batchScope(f).
		Columns("DISTINCT product_category").
		OrderBy("product_category")
	if f.Kind == domain.SourceKindInventory {
		query = query.Where("NOT is_total_row")
	}

	categories, err := xpgx.Scalars[string](ctx, s.pool, query)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ProductCategory, 0, len(categories))
	for _, c := range categories {
		out = append(out, domain.ProductCategory(c))
	}

	return out, nil
}

func (s *store) AvailableWarehouses(ctx context.Context, f domain.ReportFilter) ([]string, error) {
	query := batchScope(f).
		Columns("DISTINCT warehouse").
		Where(sq.NotEq{"warehouse": ""}).
		OrderBy("warehouse")

	return xpgx.Scalars[string](ctx, s.pool, query)
}

func getScalar(ctx context.Context, q xpgx.Querier, sqlizer sq.Sqlizer, dst any) error {
	query, args, err := sqlizer.ToSql()
	if err != nil {
		return err
	}
	return wrapErr(q.QueryRow(ctx, query, args...).Scan(dst))
}
