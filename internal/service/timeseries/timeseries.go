// Package timeseries groups per-day sums into day, week or month buckets.
package timeseries

import (
	"fmt"
	"sort"
	"time"

	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/shopspring/decimal"
)

// ParseGranularity defaults to month for an empty value.
func ParseGranularity(s string) (domain.Granularity, error) {
	switch g := domain.Granularity(s); g {
	case "":
		return domain.GranularityMonth, nil
	case domain.GranularityDay, domain.GranularityWeek, domain.GranularityMonth:
		return g, nil
	}
	return "", constants.Validationf("unsupported time granularity %q", s)
}

// bucketOf returns key, label and the calendar bounds of the bucket holding day.
func bucketOf(day time.Time, g domain.Granularity) (key, label string, start, end time.Time) {
	day = truncateDay(day)

	switch g {
	case domain.GranularityWeek:
		year, week := day.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week), fmt.Sprintf("Week %02d, %d", week, year), day, day
	case domain.GranularityMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first.Format(constants.MonthLayout), first.Format("Jan 2006"), first, first.AddDate(0, 1, -1)
	default:
		return day.Format(constants.DateLayout), day.Format("02 Jan 2006"), day, day
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Bucket sums the day points into buckets sorted by key. Week buckets span the
// observed dates only, not the whole Monday..Sunday range.
func Bucket(days []domain.DayPoint, g domain.Granularity) []domain.SeriesPoint {
	byKey := make(map[string]*domain.SeriesPoint)
	seen := make(map[string]map[time.Time]struct{})

	for _, d := range days {
		key, label, start, end := bucketOf(d.Date, g)

		p, ok := byKey[key]
		if !ok {
			p = &domain.SeriesPoint{
				Key:         key,
				Label:       label,
				BucketStart: start,
				BucketEnd:   end,
				Qty:         decimal.Zero,
				OrderQty:    decimal.Zero,
				Cbm:         decimal.Zero,
			}
			byKey[key] = p
			seen[key] = make(map[time.Time]struct{})
		}

		if g == domain.GranularityWeek {
			if start.Before(p.BucketStart) {
				p.BucketStart = start
			}
			if end.After(p.BucketEnd) {
				p.BucketEnd = end
			}
		}

		seen[key][truncateDay(d.Date)] = struct{}{}

		p.Qty = p.Qty.Add(d.Qty)
		p.OrderQty = p.OrderQty.Add(d.OrderQty)
		p.Cbm = p.Cbm.Add(d.Cbm)
	}

	points := make([]domain.SeriesPoint, 0, len(byKey))
	for key, p := range byKey {
		p.DayCount = len(seen[key])
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Key < points[j].Key
	})

	return points
}

// Totals sums the same day points the series is built from.
func Totals(days []domain.DayPoint) domain.SummaryTotals {
	totals := domain.SummaryTotals{
		Qty:      decimal.Zero,
		OrderQty: decimal.Zero,
		Cbm:      decimal.Zero,
		DayData:  make([]domain.DayPoint, 0, len(days)),
	}

	for _, d := range days {
		totals.Qty = totals.Qty.Add(d.Qty)
		totals.OrderQty = totals.OrderQty.Add(d.OrderQty)
		totals.Cbm = totals.Cbm.Add(d.Cbm)
		totals.DayData = append(totals.DayData, d)
	}
	sort.SliceStable(totals.DayData, func(i, j int) bool {
		return totals.DayData[i].Date.Before(totals.DayData[j].Date)
	})

	return totals
}
