package domain

import "github.com/shopspring/decimal"

// UnknownItemGroup is the item group assigned to SKUs missing from the catalog.
const UnknownItemGroup = "Others"

type CatalogEntry struct {
	SkuID      string          `db:"sku_id" json:"sku_id"`
	ItemGroup  string          `db:"item_group" json:"item_group"`
	CbmPerUnit decimal.Decimal `db:"cbm_per_unit" json:"cbm_per_unit"`
}
