package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/ougirez/cbmreport/internal/pkg/store"
	"github.com/ougirez/cbmreport/internal/service/cache"
	"github.com/shopspring/decimal"
)

type Service struct {
	store     store.CatalogStore
	cache     cache.Cache
	chunkSize int
}

func NewService(st store.CatalogStore, cache cache.Cache, chunkSize int) *Service {
	if chunkSize <= 0 {
		chunkSize = constants.DefaultChunkSize
	}
	chunkSize = min(chunkSize, store.MaxCatalogChunk())
	return &Service{store: st, cache: cache, chunkSize: chunkSize}
}

// UpsertBatch replaces or inserts entries by SKU. A SKU repeated within one call
// keeps its last occurrence. Statements carry at most chunkSize entries.
func (s *Service) UpsertBatch(ctx context.Context, entries []domain.CatalogEntry) (int, error) {
	defer s.cache.ClearAll(ctx)

	deduped := dedupe(entries)
	for start := 0; start < len(deduped); start += s.chunkSize {
		end := min(start+s.chunkSize, len(deduped))
		if err := s.store.UpsertCatalog(ctx, deduped[start:end]); err != nil {
			return start, fmt.Errorf("store.UpsertCatalog, entries %d-%d: %w", start, end, err)
		}
	}

	logger.Infof(ctx, "catalog upserted %d entries", len(deduped))
	return len(deduped), nil
}

func dedupe(entries []domain.CatalogEntry) []domain.CatalogEntry {
	index := make(map[string]int, len(entries))
	out := make([]domain.CatalogEntry, 0, len(entries))

	for _, e := range entries {
		e.SkuID = strings.TrimSpace(e.SkuID)
		if e.SkuID == "" {
			continue
		}
		e.ItemGroup = strings.TrimSpace(e.ItemGroup)

		if i, ok := index[e.SkuID]; ok {
			out[i] = e
			continue
		}
		index[e.SkuID] = len(out)
		out = append(out, e)
	}

	return out
}

// Lookup returns constants.ErrDBNotFound for an unknown SKU.
func (s *Service) Lookup(ctx context.Context, skuID string) (*domain.CatalogEntry, error) {
	entry, err := s.store.GetCatalogEntry(ctx, strings.TrimSpace(skuID))
	if err != nil {
		return nil, fmt.Errorf("store.GetCatalogEntry, sku-%s: %w", skuID, err)
	}
	return entry, nil
}

// Resolve loads the entries for a set of SKUs in one query.
func (s *Service) Resolve(ctx context.Context, skuIDs []string) (Resolver, error) {
	unique := make(map[string]struct{}, len(skuIDs))
	keys := make([]string, 0, len(skuIDs))
	for _, sku := range skuIDs {
		sku = strings.TrimSpace(sku)
		if sku == "" {
			continue
		}
		if _, ok := unique[sku]; ok {
			continue
		}
		unique[sku] = struct{}{}
		keys = append(keys, sku)
	}

	entries, err := s.store.GetCatalogEntries(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("store.GetCatalogEntries: %w", err)
	}

	r := make(Resolver, len(entries))
	for _, e := range entries {
		r[e.SkuID] = e
	}

	return r, nil
}

// Resolver answers catalog lookups for one ingest chunk.
type Resolver map[string]domain.CatalogEntry

// Resolve never fails: an unknown SKU has no volume and the "Others" group.
func (r Resolver) Resolve(skuID string) domain.CatalogEntry {
	skuID = strings.TrimSpace(skuID)
	if e, ok := r[skuID]; ok {
		return e
	}
	return domain.CatalogEntry{
		SkuID:      skuID,
		ItemGroup:  domain.UnknownItemGroup,
		CbmPerUnit: decimal.Zero,
	}
}
