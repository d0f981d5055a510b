package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FactRow is one of InboundFact, OutboundFact or InventoryFact.
type FactRow interface {
	Kind() SourceKind
	factRow()
}

// MovementFact is the shared shape of inbound receipts and outbound dispatches.
// The order side is the invoice (inbound) or sales order (outbound); the fulfilled
// side is the received quantity (inbound) or delivery note (outbound).
type MovementFact struct {
	BatchID         uuid.UUID        `db:"batch_id"`
	Date            time.Time        `db:"date"`
	OrderSku        string           `db:"order_sku"`
	FulfilledSku    string           `db:"fulfilled_sku"`
	OrderQty        decimal.Decimal  `db:"order_qty"`
	FulfilledQty    decimal.Decimal  `db:"fulfilled_qty"`
	GoodQty         *decimal.Decimal `db:"good_qty"`
	Warehouse       string           `db:"warehouse"`
	ItemGroup       string           `db:"item_group"`
	CbmPerUnit      decimal.Decimal  `db:"cbm_per_unit"`
	OrderCbm        decimal.Decimal  `db:"order_cbm"`
	TotalCbm        decimal.Decimal  `db:"total_cbm"`
	ProductCategory ProductCategory  `db:"product_category"`
}

// Product is the identifier the fact is ranked under.
func (f *MovementFact) Product() string {
	if f.FulfilledSku != "" {
		return f.FulfilledSku
	}
	return f.OrderSku
}

type InboundFact struct {
	MovementFact
}

func (InboundFact) Kind() SourceKind { return SourceKindInbound }
func (InboundFact) factRow()         {}

type OutboundFact struct {
	MovementFact
}

func (OutboundFact) Kind() SourceKind { return SourceKindOutbound }
func (OutboundFact) factRow()         {}

type DailyQty struct {
	Date time.Time
	Qty  decimal.Decimal
}

type InventoryFact struct {
	BatchID         uuid.UUID
	Item            string
	Warehouse       string
	ItemGroup       string
	CbmPerUnit      decimal.Decimal
	IsTotalRow      bool
	ProductCategory ProductCategory
	Daily           []DailyQty
}

func (InventoryFact) Kind() SourceKind { return SourceKindInventory }
func (InventoryFact) factRow()         {}
