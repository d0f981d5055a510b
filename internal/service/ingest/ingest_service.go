package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/domain/dto"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/ougirez/cbmreport/internal/pkg/store"
	"github.com/ougirez/cbmreport/internal/service/cache"
	"github.com/ougirez/cbmreport/internal/service/catalog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Store interface {
	store.BatchStore
	store.FactStore
}

type Catalog interface {
	Resolve(ctx context.Context, skuIDs []string) (catalog.Resolver, error)
	UpsertBatch(ctx context.Context, entries []domain.CatalogEntry) (int, error)
}

type Service struct {
	store     Store
	catalog   Catalog
	cache     cache.Cache
	chunkSize int
	now       func() time.Time
}

func NewService(st Store, catalog Catalog, cache cache.Cache, chunkSize int) *Service {
	if chunkSize <= 0 {
		chunkSize = constants.DefaultChunkSize
	}
	chunkSize = min(chunkSize, store.MaxMovementChunk())
	return &Service{
		store:     st,
		catalog:   catalog,
		cache:     cache,
		chunkSize: chunkSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// run drives the batch lifecycle around load. Chunks written before a failure
// stay in place for inspection; the batch is marked FAILED and is never
// picked as a report scope. The cache is cleared whatever the outcome.
func (s *Service) run(
	ctx context.Context,
	kind domain.SourceKind,
	fileName string,
	load func(ctx context.Context, batchID uuid.UUID) (int64, error),
) (*domain.UploadBatch, error) {
	batch := &domain.UploadBatch{
		ID:         uuid.New(),
		SourceKind: kind,
		FileName:   fileName,
		Status:     domain.BatchStatusProcessing,
		UploadedAt: s.now(),
	}
	if err := s.store.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("store.CreateBatch: %w", err)
	}

	ctx = logger.WithFields(ctx, zap.String("batch_id", batch.ID.String()), zap.String("kind", string(kind)))
	defer s.cache.ClearAll(ctx)

	started := time.Now()
	rowCount, loadErr := load(ctx, batch.ID)

	// the batch has to be closed even if the request was cancelled
	finishCtx := context.WithoutCancel(ctx)
	if loadErr != nil {
		msg := loadErr.Error()
		if err := s.store.FinishBatch(finishCtx, batch.ID, domain.BatchStatusFailed, rowCount, &msg); err != nil {
			logger.Errorf(ctx, "FinishBatch failed: %s", err.Error())
		}
		logger.Errorf(ctx, "ingestion failed after %d rows: %s", rowCount, msg)

		batch.Status = domain.BatchStatusFailed
		batch.RowCount = rowCount
		batch.Error = &msg
		return batch, fmt.Errorf("batch %s: %w: %w", batch.ID, constants.ErrIngestion, loadErr)
	}

	if err := s.store.FinishBatch(finishCtx, batch.ID, domain.BatchStatusProcessed, rowCount, nil); err != nil {
		return nil, fmt.Errorf("store.FinishBatch: %w", err)
	}

	processedAt := s.now()
	batch.Status = domain.BatchStatusProcessed
	batch.RowCount = rowCount
	batch.ProcessedAt = &processedAt
	logger.Infof(ctx, "ingested %d rows from %s in %s", rowCount, fileName, time.Since(started).Round(time.Millisecond))

	return batch, nil
}

func (s *Service) IngestInbound(ctx context.Context, fileName string, src dto.Source[dto.InboundRow]) (*domain.UploadBatch, error) {
	return s.ingestMovement(ctx, domain.SourceKindInbound, fileName, src)
}

func (s *Service) IngestOutbound(ctx context.Context, fileName string, src dto.Source[dto.OutboundRow]) (*domain.UploadBatch, error) {
	return s.ingestMovement(ctx, domain.SourceKindOutbound, fileName, src)
}

func (s *Service) ingestMovement(
	ctx context.Context,
	kind domain.SourceKind,
	fileName string,
	src dto.Source[dto.MovementRow],
) (*domain.UploadBatch, error) {
	return s.run(ctx, kind, fileName, func(ctx context.Context, batchID uuid.UUID) (int64, error) {
		var written int64
		chunk := make([]dto.MovementRow, 0, s.chunkSize)

		flush := func() error {
			if len(chunk) == 0 {
				return nil
			}
			facts, err := s.joinMovement(ctx, batchID, chunk)
			if err != nil {
				return err
			}
			if err = s.store.InsertMovementFacts(ctx, kind, facts); err != nil {
				return fmt.Errorf("store.InsertMovementFacts, rows %d-%d: %w", chunk[0].Line, chunk[len(chunk)-1].Line, err)
			}
			written += int64(len(chunk))
			chunk = chunk[:0]
			return nil
		}

		err := src.Each(ctx, func(row dto.MovementRow) error {
			if err := validateMovement(row); err != nil {
				return err
			}
			chunk = append(chunk, row)
			if len(chunk) >= s.chunkSize {
				return flush()
			}
			return nil
		})
		if err != nil {
			return written, err
		}

		return written, flush()
	})
}

func validateMovement(row dto.MovementRow) error {
	if row.Date.IsZero() {
		return fmt.Errorf("row %d: missing date", row.Line)
	}
	if strings.TrimSpace(row.OrderSku) == "" && strings.TrimSpace(row.FulfilledSku) == "" {
		return fmt.Errorf("row %d: missing sku", row.Line)
	}
	return nil
}

func (s *Service) joinMovement(ctx context.Context, batchID uuid.UUID, rows []dto.MovementRow) ([]domain.MovementFact, error) {
	skus := make([]string, 0, 2*len(rows))
	for _, r := range rows {
		skus = append(skus, r.OrderSku, r.FulfilledSku)
	}

	resolver, err := s.catalog.Resolve(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("catalog.Resolve: %w", err)
	}

	facts := make([]domain.MovementFact, 0, len(rows))
	for _, r := range rows {
		orderSku := strings.TrimSpace(r.OrderSku)
		fulfilledSku := strings.TrimSpace(r.FulfilledSku)

		fulfilled := Join(resolver.Resolve(firstNonEmpty(fulfilledSku, orderSku)), r.FulfilledQty)
		order := Join(resolver.Resolve(firstNonEmpty(orderSku, fulfilledSku)), r.OrderQty)

		facts = append(facts, domain.MovementFact{
			BatchID:         batchID,
			Date:            r.Date,
			OrderSku:        orderSku,
			FulfilledSku:    fulfilledSku,
			OrderQty:        r.OrderQty,
			FulfilledQty:    r.FulfilledQty,
			GoodQty:         r.GoodQty,
			Warehouse:       strings.TrimSpace(r.Warehouse),
			ItemGroup:       fulfilled.ItemGroup,
			CbmPerUnit:      fulfilled.CbmPerUnit,
			OrderCbm:        order.Cbm,
			TotalCbm:        fulfilled.Cbm,
			ProductCategory: fulfilled.Category,
		})
	}

	return facts, nil
}

func (s *Service) IngestInventory(ctx context.Context, fileName string, src dto.Source[dto.InventoryRow]) (*domain.UploadBatch, error) {
	return s.run(ctx, domain.SourceKindInventory, fileName, func(ctx context.Context, batchID uuid.UUID) (int64, error) {
		var written int64
		chunk := make([]dto.InventoryRow, 0, s.chunkSize)

		flush := func() error {
			if len(chunk) == 0 {
				return nil
			}
			facts, err := s.joinInventory(ctx, batchID, chunk)
			if err != nil {
				return err
			}
			if err = s.store.InsertInventoryFacts(ctx, facts); err != nil {
				return fmt.Errorf("store.InsertInventoryFacts, rows %d-%d: %w", chunk[0].Line, chunk[len(chunk)-1].Line, err)
			}
			written += int64(len(chunk))
			chunk = chunk[:0]
			return nil
		}

		err := src.Each(ctx, func(row dto.InventoryRow) error {
			if strings.TrimSpace(row.Item) == "" {
				return fmt.Errorf("row %d: missing item", row.Line)
			}
			chunk = append(chunk, row)
			if len(chunk) >= s.chunkSize {
				return flush()
			}
			return nil
		})
		if err != nil {
			return written, err
		}

		return written, flush()
	})
}

func (s *Service) joinInventory(ctx context.Context, batchID uuid.UUID, rows []dto.InventoryRow) ([]domain.InventoryFact, error) {
	skus := make([]string, 0, len(rows))
	for _, r := range rows {
		if !r.IsTotalRow {
			skus = append(skus, r.Item)
		}
	}

	resolver, err := s.catalog.Resolve(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("catalog.Resolve: %w", err)
	}

	facts := make([]domain.InventoryFact, 0, len(rows))
	for _, r := range rows {
		fact := domain.InventoryFact{
			BatchID:    batchID,
			Item:       strings.TrimSpace(r.Item),
			Warehouse:  strings.TrimSpace(r.Warehouse),
			IsTotalRow: r.IsTotalRow,
			Daily:      make([]domain.DailyQty, 0, len(r.Daily)),
		}

		if r.IsTotalRow {
			fact.CbmPerUnit = decimal.Zero
			fact.ProductCategory = domain.CategoryOthers
		} else {
			joined := Join(resolver.Resolve(fact.Item), decimal.Zero)
			fact.ItemGroup = joined.ItemGroup
			fact.CbmPerUnit = joined.CbmPerUnit
			fact.ProductCategory = joined.Category
		}

		for _, d := range r.Daily {
			fact.Daily = append(fact.Daily, domain.DailyQty{Date: d.Date, Qty: d.Qty})
		}
		facts = append(facts, fact)
	}

	return facts, nil
}

// ImportCatalog records the catalog upload as a CATALOG batch and upserts its entries.
func (s *Service) ImportCatalog(ctx context.Context, fileName string, src dto.Source[dto.CatalogRow]) (*domain.UploadBatch, error) {
	return s.run(ctx, domain.SourceKindCatalog, fileName, func(ctx context.Context, _ uuid.UUID) (int64, error) {
		var entries []domain.CatalogEntry
		err := src.Each(ctx, func(row dto.CatalogRow) error {
			if strings.TrimSpace(row.SkuID) == "" {
				return fmt.Errorf("row %d: missing sku", row.Line)
			}
			entries = append(entries, domain.CatalogEntry{
				SkuID:      row.SkuID,
				ItemGroup:  row.ItemGroup,
				CbmPerUnit: row.CbmPerUnit,
			})
			return nil
		})
		if err != nil {
			return 0, err
		}

		n, err := s.catalog.UpsertBatch(ctx, entries)
		return int64(n), err
	})
}

// Delete removes a batch with all of its fact rows.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	defer s.cache.ClearAll(ctx)

	if err := s.store.DeleteBatch(ctx, id); err != nil {
		return fmt.Errorf("store.DeleteBatch: %w", err)
	}
	logger.Infof(ctx, "deleted batch %s", id)
	return nil
}

func (s *Service) List(ctx context.Context, kind *domain.SourceKind, limit uint64) ([]*domain.UploadBatch, error) {
	batches, err := s.store.ListBatches(ctx, store.ListBatchesOpts{Kind: kind, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("store.ListBatches: %w", err)
	}
	return batches, nil
}

// IsIngestionFailure reports whether err came from a failed batch.
func IsIngestionFailure(err error) bool {
	return errors.Is(err, constants.ErrIngestion)
}
