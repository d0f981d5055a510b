package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/store/xpgx"
	"github.com/shopspring/decimal"
)

type Pool = xpgx.Pool

type BatchStore interface {
	CreateBatch(ctx context.Context, batch *domain.UploadBatch) error
	FinishBatch(ctx context.Context, id uuid.UUID, status domain.BatchStatus, rowCount int64, errMsg *string) error
	GetBatch(ctx context.Context, id uuid.UUID) (*domain.UploadBatch, error)
	LatestProcessedBatch(ctx context.Context, kind domain.SourceKind) (*domain.UploadBatch, error)
	ListBatches(ctx context.Context, opts ListBatchesOpts) ([]*domain.UploadBatch, error)
	DeleteBatch(ctx context.Context, id uuid.UUID) error
}

type CatalogStore interface {
	UpsertCatalog(ctx context.Context, entries []domain.CatalogEntry) error
	GetCatalogEntry(ctx context.Context, skuID string) (*domain.CatalogEntry, error)
	GetCatalogEntries(ctx context.Context, skuIDs []string) ([]domain.CatalogEntry, error)
}

type FactStore interface {
	InsertMovementFacts(ctx context.Context, kind domain.SourceKind, facts []domain.MovementFact) error
	InsertInventoryFacts(ctx context.Context, facts []domain.InventoryFact) error
}

type MetricsStore interface {
	MovementCards(ctx context.Context, f domain.ReportFilter) (*domain.MovementCards, error)
	MovementCategoryTable(ctx context.Context, f domain.ReportFilter) ([]domain.CategoryRow, error)
	MovementDaily(ctx context.Context, f domain.ReportFilter) ([]domain.DayPoint, error)
	MovementRanking(ctx context.Context, f domain.ReportFilter, opts RankingOpts) ([]domain.RankedProduct, decimal.Decimal, error)

	InventoryCards(ctx context.Context, f domain.ReportFilter) (*domain.InventoryCards, error)
	InventoryCategoryTable(ctx context.Context, f domain.ReportFilter) ([]domain.CategoryRow, error)
	InventoryDaily(ctx context.Context, f domain.ReportFilter, useTotalRow bool) ([]domain.DayPoint, error)
	InventoryRanking(ctx context.Context, f domain.ReportFilter, opts RankingOpts) ([]domain.RankedProduct, decimal.Decimal, error)

	AvailableDates(ctx context.Context, f domain.ReportFilter) (*domain.DateRange, error)
	AvailableMonths(ctx context.Context, f domain.ReportFilter) ([]string, error)
	AvailableCategories(ctx context.Context, f domain.ReportFilter) ([]domain.ProductCategory, error)
	AvailableWarehouses(ctx context.Context, f domain.ReportFilter) ([]string, error)
}

type Store interface {
	BatchStore
	CatalogStore
	FactStore
	MetricsStore
}

type store struct {
	pool *Pool
}

func NewStore(pool *Pool) Store {
	return &store{pool}
}
