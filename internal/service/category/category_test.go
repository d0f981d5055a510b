package category

import (
	"testing"

	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]domain.ProductCategory{
		"Electronics":           domain.CategoryElectronics,
		"  ELECTRONICS ":        domain.CategoryElectronics,
		"Home & Kitchen":        domain.CategoryHomeAndKitchen,
		"home   and kitchen":    domain.CategoryHomeAndKitchen,
		"HOME_AND_KITCHEN":      domain.CategoryHomeAndKitchen,
		"E-Commerce":            domain.CategoryECommerce,
		"Offline":               domain.CategoryOffline,
		"Quick-Commerce":        domain.CategoryQuickCommerce,
		"Toys & Games":          domain.CategoryToysAndGames,
		"Brand - Private Label": domain.CategoryBrandPrivateLabel,
		"EDEL":                  domain.CategoryEdel,
		"Others":                domain.CategoryOthers,
		"":                      domain.CategoryOthers,
		"garden furniture":      domain.CategoryOthers,
		"Electronics2":          domain.CategoryOthers,
	}

	for raw, want := range cases {
		assert.Equal(t, want, Normalize(raw), "raw=%q", raw)
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	inputs := []string{"\x00", "🙂", "TOTAL", "null", "Home &", "-"}
	for k := range aliases {
		inputs = append(inputs, k)
	}

	for _, raw := range inputs {
		got := Normalize(raw)
		assert.True(t, got.Valid(), "raw=%q produced %q", raw, got)
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("health_and_personal_care")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryHealthAndPersonalCare, c)

	_, err = Parse("furniture")
	assert.ErrorIs(t, err, constants.ErrValidation)
}

func TestAllIsACopy(t *testing.T) {
	all := All()
	require.Len(t, all, len(domain.Categories))
	all[0] = "MUTATED"
	assert.Equal(t, domain.CategoryEdel, domain.Categories[0])
}
