package controller

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
)

func (c *Controller) Upload(ctx echo.Context) error {
	kind, ok := domain.ParseSourceKind(ctx.Param("kind"))
	if !ok {
		return constants.Validationf("unknown upload kind %q", ctx.Param("kind"))
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return constants.Validationf("multipart field \"file\" is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	batch, err := c.ingest.IngestFile(ctx.Request().Context(), kind, fileHeader.Filename, file)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, batch)
}

type listUploadsParams struct {
	Kind  string `query:"kind" validate:"omitempty,oneof=inbound outbound inventory catalog INBOUND OUTBOUND INVENTORY CATALOG"`
	Limit uint64 `query:"limit" validate:"omitempty,max=500"`
}

func (c *Controller) ListUploads(ctx echo.Context) error {
	var params listUploadsParams
	if err := ctx.Bind(&params); err != nil {
		return err
	}
	if err := ctx.Validate(&params); err != nil {
		return err
	}

	var kind *domain.SourceKind
	if params.Kind != "" {
		k, _ := domain.ParseSourceKind(params.Kind)
		kind = &k
	}
	if params.Limit == 0 {
		params.Limit = 50
	}

	batches, err := c.ingest.List(ctx.Request().Context(), kind, params.Limit)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, batches)
}

func (c *Controller) DeleteUpload(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return constants.Validationf("invalid upload id %q", ctx.Param("id"))
	}

	if err = c.ingest.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}
