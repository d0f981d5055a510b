package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	tenThous = decimal.NewFromInt(10000)
)

// Shares returns each metric as a percentage of total, rounded to 2 places.
// When metrics cover the whole total, largest-remainder rounding makes the
// shares add up to exactly 100; a partial list is rounded item by item.
func Shares(metrics []decimal.Decimal, total decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(metrics))
	if total.Sign() <= 0 || len(metrics) == 0 {
		for i := range out {
			out[i] = decimal.Zero
		}
		return out
	}

	listed := decimal.Zero
	for _, m := range metrics {
		listed = listed.Add(m)
	}
	if !listed.Equal(total) {
		for i, m := range metrics {
			out[i] = m.Mul(hundred).Div(total).Round(2)
		}
		return out
	}

	// work in hundredths of a percent
	type share struct {
		index int
		floor decimal.Decimal
		frac  decimal.Decimal
	}
	shares := make([]share, len(metrics))

	floorSum := decimal.Zero
	for i, m := range metrics {
		exact := m.Mul(tenThous).Div(total)
		floor := exact.Floor()
		shares[i] = share{index: i, floor: floor, frac: exact.Sub(floor)}
		floorSum = floorSum.Add(floor)
	}

	remaining := tenThous.Sub(floorSum).IntPart()

	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return shares[order[a]].frac.GreaterThan(shares[order[b]].frac)
	})
	for i := 0; remaining > 0 && i < len(order); i++ {
		shares[order[i]].floor = shares[order[i]].floor.Add(decimal.NewFromInt(1))
		remaining--
	}

	for _, s := range shares {
		out[s.index] = s.floor.Div(hundred).Round(2)
	}
	return out
}
