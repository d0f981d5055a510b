package ingest

import (
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/service/category"
	"github.com/shopspring/decimal"
)

// Joined holds the catalog-derived fields of a fact row.
type Joined struct {
	ItemGroup  string
	CbmPerUnit decimal.Decimal
	Cbm        decimal.Decimal
	Category   domain.ProductCategory
}

// Join derives volume and category for qty units of a resolved catalog entry.
// It is shared by every fact variant.
func Join(entry domain.CatalogEntry, qty decimal.Decimal) Joined {
	return Joined{
		ItemGroup:  entry.ItemGroup,
		CbmPerUnit: entry.CbmPerUnit,
		Cbm:        qty.Mul(entry.CbmPerUnit),
		Category:   category.Normalize(entry.ItemGroup),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
