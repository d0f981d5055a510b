package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/ougirez/cbmreport/internal/pkg/sheet"
)

// IngestFile parses an uploaded spreadsheet and ingests it as kind. Sheet
// level problems such as an unknown format or a missing column are reported
// before any batch is created.
func (s *Service) IngestFile(ctx context.Context, kind domain.SourceKind, fileName string, r io.Reader) (*domain.UploadBatch, error) {
	table, err := sheet.Open(fileName, r)
	if err != nil {
		return nil, fmt.Errorf("sheet.Open: %w", err)
	}

	switch kind {
	case domain.SourceKindInbound:
		src, err := sheet.Inbound(table)
		if err != nil {
			return nil, err
		}
		return s.IngestInbound(ctx, fileName, src)
	case domain.SourceKindOutbound:
		src, err := sheet.Outbound(table)
		if err != nil {
			return nil, err
		}
		return s.IngestOutbound(ctx, fileName, src)
	case domain.SourceKindInventory:
		src, err := sheet.Inventory(table)
		if err != nil {
			return nil, err
		}
		return s.IngestInventory(ctx, fileName, src)
	case domain.SourceKindCatalog:
		src, err := sheet.Catalog(table)
		if err != nil {
			return nil, err
		}
		return s.ImportCatalog(ctx, fileName, src)
	}

	return nil, constants.Validationf("unknown upload kind %q", kind)
}
