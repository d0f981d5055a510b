// Package dto holds the typed rows sheet readers hand over to ingestion.
package dto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Source is a finite, restartable sequence of typed rows. Each call to Each
// walks the rows from the start; returning an error from fn stops the walk.
type Source[T any] interface {
	Each(ctx context.Context, fn func(row T) error) error
}

// SliceSource serves rows from memory.
type SliceSource[T any] []T

func (s SliceSource[T]) Each(ctx context.Context, fn func(row T) error) error {
	for _, row := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// MovementRow is one parsed inbound (invoice/received) or outbound (sales order/delivery note) line.
type MovementRow struct {
	Line         int
	Date         time.Time
	OrderSku     string
	FulfilledSku string
	OrderQty     decimal.Decimal
	FulfilledQty decimal.Decimal
	GoodQty      *decimal.Decimal
	Warehouse    string
}

type InboundRow = MovementRow

type OutboundRow = MovementRow

type DailyQty struct {
	Date time.Time
	Qty  decimal.Decimal
}

type InventoryRow struct {
	Line       int
	Item       string
	Warehouse  string
	IsTotalRow bool
	Daily      []DailyQty
}

type CatalogRow struct {
	Line       int
	SkuID      string
	ItemGroup  string
	CbmPerUnit decimal.Decimal
}
