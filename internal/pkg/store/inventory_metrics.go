package store

import (
	"context"
	"fmt"

	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/ougirez/cbmreport/internal/pkg/store/xpgx"
	"github.com/shopspring/decimal"
)

type inventoryCardSums struct {
	TotalRowQty  decimal.Decimal `db:"total_row_qty"`
	TotalRowDays int64           `db:"total_row_days"`
	ItemQty      decimal.Decimal `db:"item_qty"`
	DaysWithData int64           `db:"days_with_data"`
	SkuCount     int64           `db:"sku_count"`
}

// InventoryCards computes time-averaged stock figures. The quantity card is the
// mean of the Total row over its days when one is in scope, otherwise the plain
// sum of item quantities.
func (s *store) InventoryCards(ctx context.Context, f domain.ReportFilter) (*domain.InventoryCards, error) {
	sumsQuery, cbmQuery := inventoryCardQueries(f)

	sums, err := xpgx.Get[inventoryCardSums](ctx, s.pool, sumsQuery)
	if err != nil {
		logger.Errorf(ctx, "InventoryCards sums: %s", err.Error())
		return nil, err
	}

	var totalCbm decimal.Decimal
	if err = getScalar(ctx, s.pool, cbmQuery, &totalCbm); err != nil {
		logger.Errorf(ctx, "InventoryCards cbm: %s", err.Error())
		return nil, err
	}

	cards := &domain.InventoryCards{
		TotalCbm:     totalCbm,
		SkuCount:     sums.SkuCount,
		DaysWithData: sums.DaysWithData,
	}
	if sums.TotalRowDays > 0 {
		cards.UsedTotalRow = true
		cards.DaysWithData = sums.TotalRowDays
		cards.InventoryQty = sums.TotalRowQty.Div(decimal.NewFromInt(sums.TotalRowDays))
	} else {
		cards.InventoryQty = sums.ItemQty
	}

	return cards, nil
}

// inventoryCardQueries builds the per-scope sums and the CBM total. SKUs
// without a CBM are left out of both the SKU count and the CBM total.
func inventoryCardQueries(f domain.ReportFilter) (sums, cbm sqSelect) {
	sums = applyFilter(scoped(f,
		"COALESCE(SUM(qty) FILTER (WHERE is_total_row), 0) AS total_row_qty",
		"COUNT(DISTINCT date) FILTER (WHERE is_total_row) AS total_row_days",
		"COALESCE(SUM(qty) FILTER (WHERE NOT is_total_row), 0) AS item_qty",
		"COUNT(DISTINCT date) AS days_with_data",
		"COUNT(DISTINCT item) FILTER (WHERE NOT is_total_row AND cbm_per_unit > 0) AS sku_count",
	), f)

	cbm = builder().Select("COALESCE(SUM(avg_qty * cbm_per_unit), 0)").
		FromSelect(itemAverages(f).Where("cbm_per_unit > 0"), "a").
		Where("avg_qty > 0")

	return sums, cbm
}

// itemAverages yields one row per non-Total (item, warehouse) with its average
// daily quantity in scope.
func itemAverages(f domain.ReportFilter) sqSelect {
	return applyFilter(scoped(f,
		"item",
		"warehouse",
		"MIN(product_category) AS product_category",
		"AVG(qty) AS avg_qty",
		"MAX(cbm_per_unit) AS cbm_per_unit",
	), f).
		Where("NOT is_total_row").
		GroupBy("item", "warehouse")
}

func (s *store) InventoryCategoryTable(ctx context.Context, f domain.ReportFilter) ([]domain.CategoryRow, error) {
	query := builder().Select(
		"product_category",
		"COUNT(DISTINCT item) AS order_sku_count",
		"COUNT(DISTINCT item) AS fulfilled_sku_count",
		"0::numeric AS order_qty",
		"COALESCE(SUM(avg_qty), 0) AS fulfilled_qty",
		"0::numeric AS order_cbm",
		"COALESCE(SUM(avg_qty * cbm_per_unit), 0) AS total_cbm",
	).
		FromSelect(itemAverages(f), "a").
		GroupBy("product_category").
		OrderBy("product_category")

	rows, err := xpgx.Select[domain.CategoryRow](ctx, s.pool, query)
	if err != nil {
		logger.Errorf(ctx, "InventoryCategoryTable: %s", err.Error())
		return nil, err
	}

	return rows, nil
}

// InventoryDaily returns per-day stock. With useTotalRow the quantity comes from
// the Total row, matching the quantity card.
func (s *store) InventoryDaily(ctx context.Context, f domain.ReportFilter, useTotalRow bool) ([]domain.DayPoint, error) {
	qtyFilter := "NOT is_total_row"
	if useTotalRow {
		qtyFilter = "is_total_row"
	}

	query := applyFilter(scoped(f,
		"date",
		fmt.Sprintf("COALESCE(SUM(qty) FILTER (WHERE %s), 0) AS qty", qtyFilter),
		"0::numeric AS order_qty",
		"COALESCE(SUM(qty * cbm_per_unit) FILTER (WHERE NOT is_total_row), 0) AS cbm",
	), f).
		GroupBy("date").
		OrderBy("date")

	return xpgx.Select[domain.DayPoint](ctx, s.pool, query)
}

func (s *store) InventoryRanking(
	ctx context.Context,
	f domain.ReportFilter,
	opts RankingOpts,
) ([]domain.RankedProduct, decimal.Decimal, error) {
	metric := "SUM(avg_qty * cbm_per_unit)"
	if opts.RankBy == domain.RankByQty {
		metric = "SUM(avg_qty)"
	}

	perProduct := builder().Select(
		"item AS product",
		"MIN(product_category) AS product_category",
		fmt.Sprintf("COALESCE(%s, 0) AS metric", metric),
	).
		FromSelect(itemAverages(f), "a").
		GroupBy("item")

	return s.rank(ctx, perProduct, opts)
}
