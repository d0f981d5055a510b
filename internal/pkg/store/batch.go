package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/ougirez/cbmreport/internal/pkg/store/xpgx"
)

type ListBatchesOpts struct {
	Kind  *domain.SourceKind
	Limit uint64
}

var batchColumns = []string{"id", "source_kind", "file_name", "status", "row_count", "error", "uploaded_at", "processed_at"}

func (s *store) CreateBatch(ctx context.Context, batch *domain.UploadBatch) error {
	query := builder().Insert(tableUploadBatches).
		Columns("id", "source_kind", "file_name", "status", "uploaded_at").
		Values(batch.ID, string(batch.SourceKind), batch.FileName, string(batch.Status), batch.UploadedAt)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		logger.Errorf(ctx, "CreateBatch: %s", err.Error())
		return err
	}

	return nil
}

func (s *store) FinishBatch(
	ctx context.Context,
	id uuid.UUID,
	status domain.BatchStatus,
	rowCount int64,
	errMsg *string,
) error {
	query := builder().Update(tableUploadBatches).
		Set("status", string(status)).
		Set("row_count", rowCount).
		Set("error", errMsg).
		Set("processed_at", time.Now().UTC()).
		Where(sq.Eq{"id": id})

	tag, err := s.pool.Execx(ctx, query)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("batch %s: %w", id, constants.ErrDBNotFound)
	}

	return nil
}

func (s *store) GetBatch(ctx context.Context, id uuid.UUID) (*domain.UploadBatch, error) {
	query := builder().Select(batchColumns...).
		From(tableUploadBatches).
		Where(sq.Eq{"id": id})

	selected, err := xpgx.Get[domain.UploadBatch](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}

func (s *store) LatestProcessedBatch(ctx context.Context, kind domain.SourceKind) (*domain.UploadBatch, error) {
	query := builder().Select(batchColumns...).
		From(tableUploadBatches).
		Where(sq.Eq{
			"source_kind": string(kind),
			"status":      string(domain.BatchStatusProcessed),
		}).
		OrderBy("uploaded_at DESC", "id DESC").
		Limit(1)

	selected, err := xpgx.Get[domain.UploadBatch](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}

func (s *store) ListBatches(ctx context.Context, opts ListBatchesOpts) ([]*domain.UploadBatch, error) {
	query := builder().Select(batchColumns...).
		From(tableUploadBatches).
		OrderBy("uploaded_at DESC", "id DESC")

	if opts.Kind != nil {
		query = query.Where(sq.Eq{"source_kind": string(*opts.Kind)})
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	selected, err := xpgx.Select[domain.UploadBatch](ctx, s.pool, query)
	if err != nil {
		logger.Error(ctx, err.Error())
		return nil, err
	}

	out := make([]*domain.UploadBatch, 0, len(selected))
	for i := range selected {
		out = append(out, &selected[i])
	}

	return out, nil
}

// DeleteBatch removes the batch; its fact rows go with it through ON DELETE CASCADE.
func (s *store) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	query := builder().Delete(tableUploadBatches).Where(sq.Eq{"id": id})

	tag, err := s.pool.Execx(ctx, query)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("batch %s: %w", id, constants.ErrDBNotFound)
	}

	return nil
}
