package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/store/xpgx"
	"github.com/shopspring/decimal"
)

var (
	movementColumns = []string{
		"batch_id", "kind", "date", "order_sku", "fulfilled_sku", "order_qty", "fulfilled_qty", "good_qty",
		"warehouse", "item_group", "cbm_per_unit", "order_cbm", "total_cbm", "product_category",
	}
	inventoryColumns = []string{
		"batch_id", "item", "warehouse", "item_group", "cbm_per_unit", "is_total_row", "product_category", "date", "qty",
	}
)

// maxBindParams is the Postgres limit on parameters in one statement.
const maxBindParams = 65535

// MaxMovementChunk is the most movement facts one insert statement can carry.
func MaxMovementChunk() int {
	return maxBindParams / len(movementColumns)
}

// InsertMovementFacts writes one chunk of facts in a single transaction.
func (s *store) InsertMovementFacts(ctx context.Context, kind domain.SourceKind, facts []domain.MovementFact) error {
	if len(facts) == 0 {
		return nil
	}

	query := builder().Insert(tableMovementFacts).
		Columns(movementColumns...)

	for _, f := range facts {
		query = query.Values(
			f.BatchID, string(kind), f.Date, f.OrderSku, f.FulfilledSku, f.OrderQty, f.FulfilledQty, f.GoodQty,
			f.Warehouse, f.ItemGroup, f.CbmPerUnit, f.OrderCbm, f.TotalCbm, string(f.ProductCategory),
		)
	}

	return s.pool.InTx(ctx, func(tx xpgx.Querier) error {
		if _, err := xpgx.Exec(ctx, tx, query); err != nil {
			return fmt.Errorf("insert movement facts: %w", err)
		}
		return nil
	})
}

// InsertInventoryFacts expands every fact into one row per day and copies the
// chunk in a single transaction.
func (s *store) InsertInventoryFacts(ctx context.Context, facts []domain.InventoryFact) error {
	rows := make([][]any, 0, len(facts))
	for _, f := range facts {
		for _, d := range f.Daily {
			rows = append(rows, []any{
				pgtype.UUID{Bytes: f.BatchID, Valid: true}, f.Item, f.Warehouse, f.ItemGroup, numeric(f.CbmPerUnit), f.IsTotalRow,
				string(f.ProductCategory), d.Date, numeric(d.Qty),
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	return s.pool.InTx(ctx, func(tx xpgx.Querier) error {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{tableInventoryFacts}, inventoryColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy inventory facts: %w", err)
		}
		if n != int64(len(rows)) {
			return fmt.Errorf("copy inventory facts: copied %d of %d rows", n, len(rows))
		}
		return nil
	})
}

// numeric converts for the binary COPY protocol, which does not go through driver.Valuer.
func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}
