package store

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
)

const (
	tableUploadBatches  = "upload_batches"
	tableCatalogEntries = "catalog_entries"
	tableMovementFacts  = "movement_facts"
	tableInventoryFacts = "inventory_facts"
)

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder возвращает squirrel SQL Builder обьект.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func categoryStrings(categories []domain.ProductCategory) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, string(c))
	}
	return out
}

// applyScope restricts a query to the batch, date range and warehouse of the filter.
func applyScope(query squirrel.SelectBuilder, f domain.ReportFilter) squirrel.SelectBuilder {
	query = query.Where(squirrel.Eq{"batch_id": f.BatchID})
	if f.From != nil {
		query = query.Where(squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		query = query.Where(squirrel.LtOrEq{"date": *f.To})
	}
	if f.Warehouse != nil {
		query = query.Where(squirrel.Eq{"warehouse": *f.Warehouse})
	}
	return query
}

// applyFilter is applyScope plus the category filter.
func applyFilter(query squirrel.SelectBuilder, f domain.ReportFilter) squirrel.SelectBuilder {
	query = applyScope(query, f)
	if len(f.Categories) > 0 {
		query = query.Where(squirrel.Eq{"product_category": categoryStrings(f.Categories)})
		if f.Kind == domain.SourceKindInventory {
			// a Total row spans every category
			query = query.Where("NOT is_total_row")
		}
	}
	return query
}

func factsTable(kind domain.SourceKind) string {
	if kind == domain.SourceKindInventory {
		return tableInventoryFacts
	}
	return tableMovementFacts
}

// scoped selects from the fact table of the filter's kind, restricted to its scope.
func scoped(f domain.ReportFilter, columns ...string) squirrel.SelectBuilder {
	query := builder().Select(columns...).From(factsTable(f.Kind))
	if f.Kind.IsMovement() {
		query = query.Where(squirrel.Eq{"kind": string(f.Kind)})
	}
	return query
}
