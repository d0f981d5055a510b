package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (c *Controller) GetCatalogEntry(ctx echo.Context) error {
	entry, err := c.catalog.Lookup(ctx.Request().Context(), ctx.Param("sku"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, entry)
}
