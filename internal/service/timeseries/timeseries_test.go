package timeseries

import (
	"testing"
	"time"

	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(constants.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func day(s string, qty, cbm int64) domain.DayPoint {
	return domain.DayPoint{
		Date:     date(s),
		Qty:      decimal.NewFromInt(qty),
		OrderQty: decimal.NewFromInt(qty + 1),
		Cbm:      decimal.NewFromInt(cbm),
	}
}

func TestBucketWeekUsesObservedBounds(t *testing.T) {
	// 2024-01-01 is a Monday and 2024-01-07 the Sunday of ISO week 1
	points := Bucket([]domain.DayPoint{
		day("2024-01-07", 5, 1),
		day("2024-01-01", 10, 2),
	}, domain.GranularityWeek)

	require.Len(t, points, 1)
	p := points[0]
	assert.Equal(t, "2024-W01", p.Key)
	assert.Equal(t, "Week 01, 2024", p.Label)
	assert.Equal(t, date("2024-01-01"), p.BucketStart)
	assert.Equal(t, date("2024-01-07"), p.BucketEnd)
	assert.Equal(t, 2, p.DayCount)
	assert.True(t, p.Qty.Equal(decimal.NewFromInt(15)))
	assert.True(t, p.Cbm.Equal(decimal.NewFromInt(3)))
}

func TestBucketWeekObservedBoundsAreNotCalendarWeek(t *testing.T) {
	points := Bucket([]domain.DayPoint{
		day("2024-01-03", 1, 1),
		day("2024-01-04", 1, 1),
	}, domain.GranularityWeek)

	require.Len(t, points, 1)
	assert.Equal(t, date("2024-01-03"), points[0].BucketStart)
	assert.Equal(t, date("2024-01-04"), points[0].BucketEnd)
}

func TestBucketWeekISOYearBoundary(t *testing.T) {
	// 2024-12-30 belongs to ISO week 1 of 2025, 2021-01-03 to week 53 of 2020
	points := Bucket([]domain.DayPoint{
		day("2024-12-30", 1, 0),
		day("2021-01-03", 1, 0),
	}, domain.GranularityWeek)

	require.Len(t, points, 2)
	assert.Equal(t, "2020-W53", points[0].Key)
	assert.Equal(t, "2025-W01", points[1].Key)
}

func TestBucketMonth(t *testing.T) {
	points := Bucket([]domain.DayPoint{
		day("2024-02-10", 3, 1),
		day("2024-01-05", 10, 5),
		day("2024-02-29", 4, 2),
	}, domain.GranularityMonth)

	require.Len(t, points, 2)

	assert.Equal(t, "2024-01", points[0].Key)
	assert.Equal(t, "Jan 2024", points[0].Label)
	assert.Equal(t, date("2024-01-01"), points[0].BucketStart)
	assert.Equal(t, date("2024-01-31"), points[0].BucketEnd)

	assert.Equal(t, "2024-02", points[1].Key)
	assert.Equal(t, "Feb 2024", points[1].Label)
	assert.Equal(t, date("2024-02-01"), points[1].BucketStart)
	assert.Equal(t, date("2024-02-29"), points[1].BucketEnd)
	assert.Equal(t, 2, points[1].DayCount)
	assert.True(t, points[1].Qty.Equal(decimal.NewFromInt(7)))
}

func TestBucketDay(t *testing.T) {
	points := Bucket([]domain.DayPoint{
		day("2024-03-02", 1, 1),
		day("2024-03-01", 2, 2),
	}, domain.GranularityDay)

	require.Len(t, points, 2)
	assert.Equal(t, "2024-03-01", points[0].Key)
	assert.Equal(t, "01 Mar 2024", points[0].Label)
	assert.Equal(t, points[0].BucketStart, points[0].BucketEnd)
}

func TestBucketReconcilesWithTotals(t *testing.T) {
	days := []domain.DayPoint{
		day("2023-12-31", 7, 3),
		day("2024-01-01", 10, 2),
		day("2024-01-15", 4, 9),
		day("2024-02-03", 1, 1),
		day("2024-03-31", 12, 6),
	}
	totals := Totals(days)

	for _, g := range []domain.Granularity{domain.GranularityDay, domain.GranularityWeek, domain.GranularityMonth} {
		qty, orderQty, cbm := decimal.Zero, decimal.Zero, decimal.Zero
		for _, p := range Bucket(days, g) {
			qty = qty.Add(p.Qty)
			orderQty = orderQty.Add(p.OrderQty)
			cbm = cbm.Add(p.Cbm)
		}
		assert.True(t, qty.Equal(totals.Qty), "granularity %s qty", g)
		assert.True(t, orderQty.Equal(totals.OrderQty), "granularity %s order qty", g)
		assert.True(t, cbm.Equal(totals.Cbm), "granularity %s cbm", g)
	}

	require.Len(t, totals.DayData, len(days))
	assert.Equal(t, date("2023-12-31"), totals.DayData[0].Date)
}

func TestBucketEmpty(t *testing.T) {
	assert.Empty(t, Bucket(nil, domain.GranularityMonth))
	totals := Totals(nil)
	assert.True(t, totals.Qty.IsZero())
	assert.NotNil(t, totals.DayData)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, domain.GranularityMonth, g)

	g, err = ParseGranularity("week")
	require.NoError(t, err)
	assert.Equal(t, domain.GranularityWeek, g)

	_, err = ParseGranularity("quarter")
	assert.ErrorIs(t, err, constants.ErrValidation)
}
