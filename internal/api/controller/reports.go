package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/ougirez/cbmreport/internal/service/report"
)

func reportKind(ctx echo.Context) (domain.SourceKind, error) {
	kind, ok := domain.ParseSourceKind(ctx.Param("kind"))
	if !ok || kind == domain.SourceKindCatalog {
		return "", constants.Validationf("unknown report kind %q", ctx.Param("kind"))
	}
	return kind, nil
}

// GetReport serves the cached payload as is.
func (c *Controller) GetReport(ctx echo.Context) error {
	kind, err := reportKind(ctx)
	if err != nil {
		return err
	}

	var params report.Params
	if err = ctx.Bind(&params); err != nil {
		return err
	}

	payload, err := c.report.Report(ctx.Request().Context(), kind, params)
	if err != nil {
		return err
	}

	return ctx.JSONBlob(http.StatusOK, payload)
}

func (c *Controller) GetTopProducts(ctx echo.Context) error {
	kind, err := reportKind(ctx)
	if err != nil {
		return err
	}

	var params report.Params
	if err = ctx.Bind(&params); err != nil {
		return err
	}

	payload, err := c.report.TopProducts(ctx.Request().Context(), kind, params)
	if err != nil {
		return err
	}

	return ctx.JSONBlob(http.StatusOK, payload)
}
