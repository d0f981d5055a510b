// Package category maps free-text item groups onto the fixed product categories.
package category

import (
	"strings"

	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
)

var aliases = map[string]domain.ProductCategory{
	"edel": domain.CategoryEdel,

	"home and kitchen": domain.CategoryHomeAndKitchen,
	"home & kitchen":   domain.CategoryHomeAndKitchen,
	"home kitchen":     domain.CategoryHomeAndKitchen,
	"home":             domain.CategoryHomeAndKitchen,
	"kitchen":          domain.CategoryHomeAndKitchen,

	"electronics": domain.CategoryElectronics,
	"electronic":  domain.CategoryElectronics,

	"health and personal care": domain.CategoryHealthAndPersonalCare,
	"health & personal care":   domain.CategoryHealthAndPersonalCare,
	"health personal care":     domain.CategoryHealthAndPersonalCare,
	"personal care":            domain.CategoryHealthAndPersonalCare,
	"health":                   domain.CategoryHealthAndPersonalCare,

	"automotive and tools": domain.CategoryAutomotiveAndTools,
	"automotive & tools":   domain.CategoryAutomotiveAndTools,
	"automotive tools":     domain.CategoryAutomotiveAndTools,
	"automotive":           domain.CategoryAutomotiveAndTools,
	"tools":                domain.CategoryAutomotiveAndTools,

	"toys and games": domain.CategoryToysAndGames,
	"toys & games":   domain.CategoryToysAndGames,
	"toys games":     domain.CategoryToysAndGames,
	"toys":           domain.CategoryToysAndGames,

	"brand private label":   domain.CategoryBrandPrivateLabel,
	"brand - private label": domain.CategoryBrandPrivateLabel,
	"private label":         domain.CategoryBrandPrivateLabel,
	"brand":                 domain.CategoryBrandPrivateLabel,

	"e-commerce": domain.CategoryECommerce,
	"e commerce": domain.CategoryECommerce,
	"ecommerce":  domain.CategoryECommerce,
	"ecom":       domain.CategoryECommerce,

	"offline": domain.CategoryOffline,

	"quick-commerce": domain.CategoryQuickCommerce,
	"quick commerce": domain.CategoryQuickCommerce,
	"quickcommerce":  domain.CategoryQuickCommerce,
	"q-commerce":     domain.CategoryQuickCommerce,
	"qcomm":          domain.CategoryQuickCommerce,

	"others": domain.CategoryOthers,
	"other":  domain.CategoryOthers,
}

func init() {
	// enum names such as HOME_AND_KITCHEN
	for _, c := range domain.Categories {
		aliases[key(string(c))] = c
	}
}

func key(raw string) string {
	raw = strings.ReplaceAll(raw, "_", " ")
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// Normalize never fails: anything unknown, empty included, is OTHERS.
func Normalize(raw string) domain.ProductCategory {
	if c, ok := aliases[key(raw)]; ok {
		return c
	}
	return domain.CategoryOthers
}

// Parse is the strict form used for query parameters.
func Parse(raw string) (domain.ProductCategory, error) {
	c, ok := aliases[key(raw)]
	if !ok {
		return "", constants.Validationf("unknown product category %q", raw)
	}
	return c, nil
}

// All returns the categories in display order.
func All() []domain.ProductCategory {
	out := make([]domain.ProductCategory, len(domain.Categories))
	copy(out, domain.Categories)
	return out
}
