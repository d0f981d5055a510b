package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

type RankBy string

const (
	RankByCbm RankBy = "cbm"
	RankByQty RankBy = "qty"
)

type SortOrder string

const (
	SortOrderTop    SortOrder = "top"
	SortOrderBottom SortOrder = "bottom"
)

// ReportFilter is a validated, batch-resolved filter set.
type ReportFilter struct {
	Kind       SourceKind
	BatchID    uuid.UUID
	From       *time.Time
	To         *time.Time
	Categories []ProductCategory
	Warehouse  *string
}

// MovementCards are the inbound/outbound headline metrics.
type MovementCards struct {
	OrderSkuCount     int64           `db:"order_sku_count" json:"order_sku_count"`
	FulfilledSkuCount int64           `db:"fulfilled_sku_count" json:"fulfilled_sku_count"`
	OrderQtyTotal     decimal.Decimal `db:"order_qty" json:"order_qty_total"`
	FulfilledQtyTotal decimal.Decimal `db:"fulfilled_qty" json:"fulfilled_qty_total"`
	GoodQtyTotal      decimal.Decimal `db:"good_qty" json:"good_qty_total"`
	OrderCbmTotal     decimal.Decimal `db:"order_cbm" json:"order_cbm_total"`
	TotalCbm          decimal.Decimal `db:"total_cbm" json:"total_cbm"`
	PendingQty        decimal.Decimal `db:"-" json:"pending_qty"`
}

// InventoryCards are averages over the days in range, not sums.
type InventoryCards struct {
	InventoryQty decimal.Decimal `json:"inventory_qty"`
	TotalCbm     decimal.Decimal `json:"total_cbm"`
	SkuCount     int64           `json:"sku_count"`
	UsedTotalRow bool            `json:"used_total_row"`
	DaysWithData int64           `json:"days_with_data"`
}

type Cards struct {
	Movement  *MovementCards  `json:"movement,omitempty"`
	Inventory *InventoryCards `json:"inventory,omitempty"`
}

type CategoryRow struct {
	Category          ProductCategory `db:"product_category" json:"category"`
	OrderSkuCount     int64           `db:"order_sku_count" json:"order_sku_count"`
	FulfilledSkuCount int64           `db:"fulfilled_sku_count" json:"fulfilled_sku_count"`
	OrderQty          decimal.Decimal `db:"order_qty" json:"order_qty"`
	FulfilledQty      decimal.Decimal `db:"fulfilled_qty" json:"fulfilled_qty"`
	OrderCbm          decimal.Decimal `db:"order_cbm" json:"order_cbm"`
	FulfilledCbm      decimal.Decimal `db:"total_cbm" json:"fulfilled_cbm"`
	Pending           decimal.Decimal `db:"-" json:"pending"`
}

type DateRange struct {
	MinDate *time.Time `db:"min_date" json:"min_date"`
	MaxDate *time.Time `db:"max_date" json:"max_date"`
}

// DayPoint is the pushdown per-day sum the series is built from.
type DayPoint struct {
	Date     time.Time       `db:"date" json:"date"`
	Qty      decimal.Decimal `db:"qty" json:"qty"`
	OrderQty decimal.Decimal `db:"order_qty" json:"order_qty"`
	Cbm      decimal.Decimal `db:"cbm" json:"cbm"`
}

type SeriesPoint struct {
	Key         string          `json:"key"`
	Label       string          `json:"label"`
	BucketStart time.Time       `json:"bucket_start"`
	BucketEnd   time.Time       `json:"bucket_end"`
	DayCount    int             `json:"day_count"`
	Qty         decimal.Decimal `json:"qty"`
	OrderQty    decimal.Decimal `json:"order_qty"`
	Cbm         decimal.Decimal `json:"cbm"`
}

type TimeSeries struct {
	Granularity Granularity   `json:"granularity"`
	Points      []SeriesPoint `json:"points"`
}

type SummaryTotals struct {
	Qty      decimal.Decimal `json:"qty"`
	OrderQty decimal.Decimal `json:"order_qty"`
	Cbm      decimal.Decimal `json:"cbm"`
	DayData  []DayPoint      `json:"day_data"`
}

type Report struct {
	Kind              SourceKind        `json:"kind"`
	BatchID           uuid.UUID         `json:"batch_id"`
	Cards             Cards             `json:"cards"`
	CategoryTable     []CategoryRow     `json:"category_table"`
	AvailableDates    DateRange         `json:"available_dates"`
	AvailableMonths   []string          `json:"available_months"`
	ProductCategories []ProductCategory `json:"product_categories"`
	Warehouses        []string          `json:"warehouses"`
	TimeSeries        TimeSeries        `json:"time_series"`
	SummaryTotals     SummaryTotals     `json:"summary_totals"`
}

type RankedProduct struct {
	Rank              int             `json:"rank"`
	Product           string          `db:"product" json:"product"`
	Category          ProductCategory `db:"product_category" json:"category"`
	Metric            decimal.Decimal `db:"metric" json:"metric"`
	PercentageOfTotal decimal.Decimal `db:"-" json:"percentage_of_total"`
}

type Ranking struct {
	Kind      SourceKind      `json:"kind"`
	BatchID   uuid.UUID       `json:"batch_id"`
	RankBy    RankBy          `json:"rank_by"`
	SortOrder SortOrder       `json:"sort_order"`
	Limit     int             `json:"limit"`
	Total     decimal.Decimal `json:"total"`
	Products  []RankedProduct `json:"products"`
}
