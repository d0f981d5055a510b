package domain

type ProductCategory string

const (
	CategoryEdel                  ProductCategory = "EDEL"
	CategoryHomeAndKitchen        ProductCategory = "HOME_AND_KITCHEN"
	CategoryElectronics           ProductCategory = "ELECTRONICS"
	CategoryHealthAndPersonalCare ProductCategory = "HEALTH_AND_PERSONAL_CARE"
	CategoryAutomotiveAndTools    ProductCategory = "AUTOMOTIVE_AND_TOOLS"
	CategoryToysAndGames          ProductCategory = "TOYS_AND_GAMES"
	CategoryBrandPrivateLabel     ProductCategory = "BRAND_PRIVATE_LABEL"
	CategoryECommerce             ProductCategory = "E_COMMERCE"
	CategoryOffline               ProductCategory = "OFFLINE"
	CategoryQuickCommerce         ProductCategory = "QUICK_COMMERCE"
	CategoryOthers                ProductCategory = "OTHERS"
)

// CategoryTotal labels the synthetic row of a category table. It is never stored.
const CategoryTotal ProductCategory = "TOTAL"

// Categories lists every storable category in display order.
var Categories = []ProductCategory{
	CategoryEdel,
	CategoryHomeAndKitchen,
	CategoryElectronics,
	CategoryHealthAndPersonalCare,
	CategoryAutomotiveAndTools,
	CategoryToysAndGames,
	CategoryBrandPrivateLabel,
	CategoryECommerce,
	CategoryOffline,
	CategoryQuickCommerce,
	CategoryOthers,
}

func (c ProductCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
