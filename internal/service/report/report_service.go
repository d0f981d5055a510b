package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/ougirez/cbmreport/internal/pkg/store"
	"github.com/ougirez/cbmreport/internal/service/cache"
	"github.com/ougirez/cbmreport/internal/service/timeseries"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Store interface {
	store.MetricsStore
	GetBatch(ctx context.Context, id uuid.UUID) (*domain.UploadBatch, error)
	LatestProcessedBatch(ctx context.Context, kind domain.SourceKind) (*domain.UploadBatch, error)
}

type Service struct {
	store    Store
	cache    cache.Cache
	validate *validator.Validate
}

func NewService(store Store, cache cache.Cache, validate *validator.Validate) *Service {
	if validate == nil {
		validate = validator.New()
	}
	return &Service{store: store, cache: cache, validate: validate}
}

// Report returns the marshalled report for kind. Identical requests between two
// data mutations get byte-identical payloads from the cache.
func (s *Service) Report(ctx context.Context, kind domain.SourceKind, p Params) ([]byte, error) {
	q, err := parseQuery(s.validate, kind, p)
	if err != nil {
		return nil, err
	}

	key := q.cacheKey("report", cache.P("granularity", string(q.granularity)))
	return s.cached(ctx, key, func(ctx context.Context) (any, error) {
		return s.build(ctx, q)
	})
}

// TopProducts returns the marshalled ranking for kind.
func (s *Service) TopProducts(ctx context.Context, kind domain.SourceKind, p Params) ([]byte, error) {
	q, err := parseQuery(s.validate, kind, p)
	if err != nil {
		return nil, err
	}

	key := q.cacheKey("top-products",
		cache.P("rank_by", string(q.rankBy)),
		cache.P("sort_order", string(q.sortOrder)),
		cache.P("limit", fmt.Sprint(q.limit)),
	)
	return s.cached(ctx, key, func(ctx context.Context) (any, error) {
		return s.rank(ctx, q)
	})
}

// BuildReport computes the report without consulting the cache.
func (s *Service) BuildReport(ctx context.Context, kind domain.SourceKind, p Params) (*domain.Report, error) {
	q, err := parseQuery(s.validate, kind, p)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, q)
}

// BuildRanking computes the ranking without consulting the cache.
func (s *Service) BuildRanking(ctx context.Context, kind domain.SourceKind, p Params) (*domain.Ranking, error) {
	q, err := parseQuery(s.validate, kind, p)
	if err != nil {
		return nil, err
	}
	return s.rank(ctx, q)
}

func (s *Service) cached(ctx context.Context, key string, compute func(ctx context.Context) (any, error)) ([]byte, error) {
	ctx = logger.WithFields(ctx, zap.String("cache_key", key))

	payload, gen, ok := s.cache.Get(ctx, key)
	if ok {
		logger.Debugf(ctx, "report cache hit")
		return payload, nil
	}

	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	payload, err = sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("sonic.Marshal: %w", err)
	}
	s.cache.Put(ctx, key, gen, payload)

	return payload, nil
}

// resolveBatch picks the requested upload or the latest processed one. Only
// PROCESSED batches of the requested kind are ever in scope.
func (s *Service) resolveBatch(ctx context.Context, q *query) (*domain.UploadBatch, error) {
	if q.uploadID == nil {
		batch, err := s.store.LatestProcessedBatch(ctx, q.kind)
		if errors.Is(err, constants.ErrDBNotFound) {
			return nil, fmt.Errorf("%s: %w", q.kind, constants.ErrNoProcessedBatch)
		}
		if err != nil {
			return nil, fmt.Errorf("store.LatestProcessedBatch: %w", err)
		}
		return batch, nil
	}

	batch, err := s.store.GetBatch(ctx, *q.uploadID)
	if errors.Is(err, constants.ErrDBNotFound) {
		return nil, fmt.Errorf("upload %s: %w", q.uploadID, constants.ErrNoProcessedBatch)
	}
	if err != nil {
		return nil, fmt.Errorf("store.GetBatch: %w", err)
	}
	if batch.SourceKind != q.kind || batch.Status != domain.BatchStatusProcessed {
		return nil, fmt.Errorf("upload %s is a %s %s batch: %w", batch.ID, batch.Status, batch.SourceKind, constants.ErrNoProcessedBatch)
	}

	return batch, nil
}

func (s *Service) build(ctx context.Context, q *query) (*domain.Report, error) {
	batch, err := s.resolveBatch(ctx, q)
	if err != nil {
		return nil, err
	}
	f := q.filter(batch.ID)

	report := &domain.Report{
		Kind:    q.kind,
		BatchID: batch.ID,
	}
	var days []domain.DayPoint

	eg, egCtx := errgroup.WithContext(ctx)

	if q.kind.IsMovement() {
		eg.Go(func() error {
			cards, err := s.store.MovementCards(egCtx, f)
			if err != nil {
				return fmt.Errorf("store.MovementCards: %w", err)
			}
			report.Cards.Movement = cards
			return nil
		})
		eg.Go(func() error {
			rows, err := s.store.MovementCategoryTable(egCtx, f)
			if err != nil {
				return fmt.Errorf("store.MovementCategoryTable: %w", err)
			}
			report.CategoryTable = withTotalRow(rows)
			return nil
		})
		eg.Go(func() error {
			daily, err := s.store.MovementDaily(egCtx, f)
			if err != nil {
				return fmt.Errorf("store.MovementDaily: %w", err)
			}
			days = daily
			return nil
		})
	} else {
		// the daily series follows the card's choice of Total row versus item sum
		eg.Go(func() error {
			cards, err := s.store.InventoryCards(egCtx, f)
			if err != nil {
				return fmt.Errorf("store.InventoryCards: %w", err)
			}
			report.Cards.Inventory = cards

			days, err = s.store.InventoryDaily(egCtx, f, cards.UsedTotalRow)
			if err != nil {
				return fmt.Errorf("store.InventoryDaily: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			rows, err := s.store.InventoryCategoryTable(egCtx, f)
			if err != nil {
				return fmt.Errorf("store.InventoryCategoryTable: %w", err)
			}
			report.CategoryTable = withTotalRow(rows)
			return nil
		})
	}

	eg.Go(func() error {
		dates, err := s.store.AvailableDates(egCtx, f)
		if err != nil {
			return fmt.Errorf("store.AvailableDates: %w", err)
		}
		report.AvailableDates = *dates
		return nil
	})
	eg.Go(func() error {
		months, err := s.store.AvailableMonths(egCtx, f)
		if err != nil {
			return fmt.Errorf("store.AvailableMonths: %w", err)
		}
		report.AvailableMonths = months
		return nil
	})
	eg.Go(func() error {
		categories, err := s.store.AvailableCategories(egCtx, f)
		if err != nil {
			return fmt.Errorf("store.AvailableCategories: %w", err)
		}
		report.ProductCategories = categories
		return nil
	})
	eg.Go(func() error {
		warehouses, err := s.store.AvailableWarehouses(egCtx, f)
		if err != nil {
			return fmt.Errorf("store.AvailableWarehouses: %w", err)
		}
		report.Warehouses = warehouses
		return nil
	})

	if err = eg.Wait(); err != nil {
		logger.Errorf(ctx, "build report: %s", err.Error())
		return nil, err
	}

	report.TimeSeries = domain.TimeSeries{
		Granularity: q.granularity,
		Points:      timeseries.Bucket(days, q.granularity),
	}
	report.SummaryTotals = timeseries.Totals(days)

	return report, nil
}

// withTotalRow appends the synthetic TOTAL row summing every category row.
func withTotalRow(rows []domain.CategoryRow) []domain.CategoryRow {
	total := domain.CategoryRow{Category: domain.CategoryTotal}
	for _, r := range rows {
		total.OrderSkuCount += r.OrderSkuCount
		total.FulfilledSkuCount += r.FulfilledSkuCount
		total.OrderQty = total.OrderQty.Add(r.OrderQty)
		total.FulfilledQty = total.FulfilledQty.Add(r.FulfilledQty)
		total.OrderCbm = total.OrderCbm.Add(r.OrderCbm)
		total.FulfilledCbm = total.FulfilledCbm.Add(r.FulfilledCbm)
		total.Pending = total.Pending.Add(r.Pending)
	}

	out := make([]domain.CategoryRow, 0, len(rows)+1)
	out = append(out, rows...)
	return append(out, total)
}

func (s *Service) rank(ctx context.Context, q *query) (*domain.Ranking, error) {
	batch, err := s.resolveBatch(ctx, q)
	if err != nil {
		return nil, err
	}
	f := q.filter(batch.ID)
	opts := store.RankingOpts{RankBy: q.rankBy, SortOrder: q.sortOrder, Limit: uint64(q.limit)}

	var (
		products []domain.RankedProduct
		total    decimal.Decimal
	)
	if q.kind.IsMovement() {
		products, total, err = s.store.MovementRanking(ctx, f, opts)
	} else {
		products, total, err = s.store.InventoryRanking(ctx, f, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}

	metrics := make([]decimal.Decimal, len(products))
	for i, p := range products {
		metrics[i] = p.Metric
	}
	for i, share := range Shares(metrics, total) {
		products[i].PercentageOfTotal = share
	}

	return &domain.Ranking{
		Kind:      q.kind,
		BatchID:   batch.ID,
		RankBy:    q.rankBy,
		SortOrder: q.sortOrder,
		Limit:     q.limit,
		Total:     total,
		Products:  products,
	}, nil
}
