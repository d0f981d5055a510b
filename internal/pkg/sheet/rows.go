package sheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/domain/dto"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/shopspring/decimal"
)

type source[T any] struct {
	table *Table
	parse func(Row) (T, bool, error)
}

func (s source[T]) Each(ctx context.Context, fn func(row T) error) error {
	for _, row := range s.table.rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		v, ok, err := s.parse(row)
		if err != nil {
			return fmt.Errorf("row %d: %w", row.Line, err)
		}
		if !ok {
			continue
		}

		if err = fn(v); err != nil {
			return err
		}
	}
	return nil
}

type movementColumns struct {
	date         []string
	orderSku     []string
	fulfilledSku []string
	orderQty     []string
	fulfilledQty []string
	goodQty      []string
	warehouse    []string
}

var (
	warehouseAliases = []string{"warehouse", "warehouse name", "location", "wh", "site"}

	inboundColumns = movementColumns{
		date:         []string{"date", "received date", "receipt date", "grn date", "invoice date", "inward date"},
		orderSku:     []string{"invoice sku", "invoice item", "po sku", "order sku", "invoice item code"},
		fulfilledSku: []string{"received sku", "receipt sku", "grn sku", "received item", "sku", "item", "item code"},
		orderQty:     []string{"invoice qty", "invoice quantity", "po qty", "order qty", "ordered qty"},
		fulfilledQty: []string{"received qty", "received quantity", "grn qty", "receipt qty", "qty", "quantity"},
		goodQty:      []string{"good qty", "good quantity", "accepted qty"},
		warehouse:    warehouseAliases,
	}

	outboundColumns = movementColumns{
		date:         []string{"date", "dn date", "dispatch date", "delivery date", "so date", "outward date"},
		orderSku:     []string{"so sku", "sales order sku", "order sku", "so item", "so item code"},
		fulfilledSku: []string{"dn sku", "delivery note sku", "dispatched sku", "dn item", "sku", "item", "item code"},
		orderQty:     []string{"so qty", "sales order qty", "order qty", "ordered qty"},
		fulfilledQty: []string{"dn qty", "delivery note qty", "dispatched qty", "delivered qty", "qty", "quantity"},
		goodQty:      []string{"good qty", "good quantity"},
		warehouse:    warehouseAliases,
	}
)

// Inbound reads invoice/received lines.
func Inbound(t *Table) (dto.Source[dto.InboundRow], error) {
	return movement(t, inboundColumns)
}

// Outbound reads sales order/delivery note lines.
func Outbound(t *Table) (dto.Source[dto.OutboundRow], error) {
	return movement(t, outboundColumns)
}

func movement(t *Table, cols movementColumns) (dto.Source[dto.MovementRow], error) {
	var (
		date         = t.Column(cols.date...)
		orderSku     = t.Column(cols.orderSku...)
		fulfilledSku = t.Column(cols.fulfilledSku...)
		orderQty     = t.Column(cols.orderQty...)
		fulfilledQty = t.Column(cols.fulfilledQty...)
		goodQty      = t.Column(cols.goodQty...)
		warehouse    = t.Column(cols.warehouse...)
	)

	if date < 0 {
		return nil, missingColumn(cols.date[0])
	}
	if orderSku < 0 && fulfilledSku < 0 {
		return nil, missingColumn(cols.fulfilledSku[0])
	}
	if orderQty < 0 && fulfilledQty < 0 {
		return nil, missingColumn(cols.fulfilledQty[0])
	}

	return source[dto.MovementRow]{table: t, parse: func(r Row) (dto.MovementRow, bool, error) {
		out := dto.MovementRow{
			Line:         r.Line,
			OrderSku:     r.Cell(orderSku),
			FulfilledSku: r.Cell(fulfilledSku),
			Warehouse:    r.Cell(warehouse),
		}

		// trailing summary lines carry neither a date nor a sku
		if r.Cell(date) == "" && out.OrderSku == "" && out.FulfilledSku == "" {
			return out, false, nil
		}

		if raw := r.Cell(date); raw != "" {
			d, err := ParseDate(raw)
			if err != nil {
				return out, false, err
			}
			out.Date = d
		}

		var err error
		if out.OrderQty, err = ParseDecimal(r.Cell(orderQty)); err != nil {
			return out, false, err
		}
		if out.FulfilledQty, err = ParseDecimal(r.Cell(fulfilledQty)); err != nil {
			return out, false, err
		}
		if raw := r.Cell(goodQty); raw != "" {
			g, err := ParseDecimal(raw)
			if err != nil {
				return out, false, err
			}
			out.GoodQty = &g
		}

		return out, true, nil
	}}, nil
}

var (
	itemAliases      = []string{"item", "sku", "sku id", "item code", "item name", "product"}
	itemGroupAliases = []string{"item group", "group", "category", "product category"}
	cbmAliases       = []string{"cbm per unit", "cbm unit", "unit cbm", "cbm", "cbm per pc", "volume cbm"}
)

// Inventory reads a snapshot sheet: one row per item and warehouse, one
// column per day. A row whose item is "Total" is the sheet's own total.
func Inventory(t *Table) (dto.Source[dto.InventoryRow], error) {
	item := t.Column(itemAliases...)
	if item < 0 {
		return nil, missingColumn(itemAliases[0])
	}
	warehouse := t.Column(warehouseAliases...)

	type dayColumn struct {
		index int
		date  time.Time
	}
	var days []dayColumn
	for i, h := range t.header {
		if i == item || i == warehouse {
			continue
		}
		if d, err := ParseDate(h); err == nil {
			days = append(days, dayColumn{index: i, date: d})
		}
	}
	if len(days) == 0 {
		return nil, constants.Validationf("inventory sheet has no date columns")
	}

	return source[dto.InventoryRow]{table: t, parse: func(r Row) (dto.InventoryRow, bool, error) {
		name := r.Cell(item)
		out := dto.InventoryRow{
			Line:       r.Line,
			Item:       name,
			Warehouse:  r.Cell(warehouse),
			IsTotalRow: strings.EqualFold(name, "total") || strings.EqualFold(name, "grand total"),
			Daily:      make([]dto.DailyQty, 0, len(days)),
		}
		if out.IsTotalRow {
			out.Item = "Total"
		}

		for _, c := range days {
			raw := r.Cell(c.index)
			if raw == "" {
				continue
			}
			qty, err := ParseDecimal(raw)
			if err != nil {
				return out, false, fmt.Errorf("%s: %w", c.date.Format(constants.DateLayout), err)
			}
			out.Daily = append(out.Daily, dto.DailyQty{Date: c.date, Qty: qty})
		}

		return out, true, nil
	}}, nil
}

// Catalog reads SKU reference rows.
func Catalog(t *Table) (dto.Source[dto.CatalogRow], error) {
	sku := t.Column(itemAliases...)
	if sku < 0 {
		return nil, missingColumn("sku")
	}
	cbm := t.Column(cbmAliases...)
	if cbm < 0 {
		return nil, missingColumn(cbmAliases[0])
	}
	group := t.Column(itemGroupAliases...)

	return source[dto.CatalogRow]{table: t, parse: func(r Row) (dto.CatalogRow, bool, error) {
		out := dto.CatalogRow{
			Line:      r.Line,
			SkuID:     r.Cell(sku),
			ItemGroup: r.Cell(group),
		}
		if out.ItemGroup == "" {
			out.ItemGroup = domain.UnknownItemGroup
		}

		v, err := ParseDecimal(r.Cell(cbm))
		if err != nil {
			return out, false, err
		}
		if v.LessThan(decimal.Zero) {
			return out, false, fmt.Errorf("negative cbm %s", v)
		}
		out.CbmPerUnit = v

		return out, true, nil
	}}, nil
}

func missingColumn(name string) error {
	return constants.Validationf("missing column %q", name)
}
