package api

import (
	"github.com/labstack/echo/v4"
	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"go.uber.org/zap"
)

// RequestContext attaches request fields to the logger carried by the request context.
func (svc *APIService) RequestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		reqCtx := logger.WithFields(req.Context(),
			zap.String("request_id", ctx.Response().Header().Get(echo.HeaderXRequestID)),
			zap.String("method", req.Method),
			zap.String("path", ctx.Path()),
		)
		ctx.SetRequest(req.WithContext(reqCtx))

		return next(ctx)
	}
}
