package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/ougirez/cbmreport/internal/pkg/store/xpgx"
	"github.com/shopspring/decimal"
)

type RankingOpts struct {
	RankBy    domain.RankBy
	SortOrder domain.SortOrder
	Limit     uint64
}

// movementSums are shared by the cards and the category table.
var movementSums = []string{
	"COUNT(DISTINCT NULLIF(order_sku, '')) AS order_sku_count",
	"COUNT(DISTINCT NULLIF(fulfilled_sku, '')) AS fulfilled_sku_count",
	"COALESCE(SUM(order_qty), 0) AS order_qty",
	"COALESCE(SUM(fulfilled_qty), 0) AS fulfilled_qty",
	"COALESCE(SUM(order_cbm), 0) AS order_cbm",
	"COALESCE(SUM(total_cbm), 0) AS total_cbm",
}

const movementProductExpr = "COALESCE(NULLIF(fulfilled_sku, ''), order_sku)"

func (s *store) MovementCards(ctx context.Context, f domain.ReportFilter) (*domain.MovementCards, error) {
	columns := append([]string{"COALESCE(SUM(good_qty), 0) AS good_qty"}, movementSums...)
	query := applyFilter(scoped(f, columns...), f)

	cards, err := xpgx.Get[domain.MovementCards](ctx, s.pool, query)
	if err != nil {
		logger.Errorf(ctx, "MovementCards: %s", err.Error())
		return nil, err
	}
	cards.PendingQty = cards.OrderQtyTotal.Sub(cards.FulfilledQtyTotal)

	return &cards, nil
}

func (s *store) MovementCategoryTable(ctx context.Context, f domain.ReportFilter) ([]domain.CategoryRow, error) {
	columns := append([]string{"product_category"}, movementSums...)
	query := applyFilter(scoped(f, columns...), f).
		GroupBy("product_category").
		OrderBy("product_category")

	rows, err := xpgx.Select[domain.CategoryRow](ctx, s.pool, query)
	if err != nil {
		logger.Errorf(ctx, "MovementCategoryTable: %s", err.Error())
		return nil, err
	}

	for i := range rows {
		rows[i].Pending = rows[i].OrderQty.Sub(rows[i].FulfilledQty)
	}

	return rows, nil
}

func (s *store) MovementDaily(ctx context.Context, f domain.ReportFilter) ([]domain.DayPoint, error) {
	query := applyFilter(scoped(f,
		"date",
		"COALESCE(SUM(fulfilled_qty), 0) AS qty",
		"COALESCE(SUM(order_qty), 0) AS order_qty",
		"COALESCE(SUM(total_cbm), 0) AS cbm",
	), f).
		GroupBy("date").
		OrderBy("date")

	return xpgx.Select[domain.DayPoint](ctx, s.pool, query)
}

type rankedRow struct {
	Product  string          `db:"product"`
	Category string          `db:"product_category"`
	Metric   decimal.Decimal `db:"metric"`
	Total    decimal.Decimal `db:"total"`
}

func (s *store) MovementRanking(
	ctx context.Context,
	f domain.ReportFilter,
	opts RankingOpts,
) ([]domain.RankedProduct, decimal.Decimal, error) {
	metric := "SUM(total_cbm)"
	if opts.RankBy == domain.RankByQty {
		metric = "SUM(fulfilled_qty)"
	}

	perProduct := applyFilter(scoped(f,
		movementProductExpr+" AS product",
		"MIN(product_category) AS product_category",
		fmt.Sprintf("COALESCE(%s, 0) AS metric", metric),
	), f).
		Where(sq.NotEq{movementProductExpr: ""}).
		GroupBy("1")

	return s.rank(ctx, perProduct, opts)
}

// rank orders per-product metrics and attaches the filtered-set total computed
// over every product, before the limit applies.
func (s *store) rank(ctx context.Context, perProduct sq.SelectBuilder, opts RankingOpts) ([]domain.RankedProduct, decimal.Decimal, error) {
	direction := "DESC"
	if opts.SortOrder == domain.SortOrderBottom {
		direction = "ASC"
	}

	query := builder().Select(
		"product",
		"product_category",
		"metric",
		"COALESCE(SUM(metric) OVER (), 0) AS total",
	).
		FromSelect(perProduct, "p").
		OrderBy("metric "+direction, "product ASC").
		Limit(opts.Limit)

	rows, err := xpgx.Select[rankedRow](ctx, s.pool, query)
	if err != nil {
		logger.Errorf(ctx, "rank: %s", err.Error())
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	out := make([]domain.RankedProduct, 0, len(rows))
	for i, r := range rows {
		total = r.Total
		out = append(out, domain.RankedProduct{
			Rank:     i + 1,
			Product:  r.Product,
			Category: domain.ProductCategory(r.Category),
			Metric:   r.Metric,
		})
	}

	return out, total, nil
}
