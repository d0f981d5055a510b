package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/ougirez/cbmreport/internal/api/controller"
	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/ougirez/cbmreport/internal/service/catalog"
	"github.com/ougirez/cbmreport/internal/service/ingest"
	"github.com/ougirez/cbmreport/internal/service/report"
)

type Options struct {
	AllowOrigins []string
	// Debug lowers echo's own log level.
	Debug bool
}

type APIService struct {
	router *echo.Echo
}

// Serve blocks until the server stops. A Shutdown is not an error.
func (svc *APIService) Serve(addr string) error {
	logger.Infof(context.Background(), "http server listening on %s", addr)
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

// Handler exposes the router, mostly for tests.
func (svc *APIService) Handler() http.Handler {
	return svc.router
}

func NewAPIService(
	opts Options,
	validate *validator.Validate,
	ingestService *ingest.Service,
	catalogService *catalog.Service,
	reportService *report.Service,
) *APIService {
	svc := &APIService{router: echo.New()}

	svc.router.HideBanner = true
	svc.router.HidePort = true
	svc.router.Logger.SetLevel(log.WARN)
	if opts.Debug {
		svc.router.Logger.SetLevel(log.DEBUG)
	}

	svc.router.Validator = NewValidator(validate)
	svc.router.Binder = NewBinder()
	svc.router.JSONSerializer = SonicSerializer{}
	svc.router.HTTPErrorHandler = httpErrorHandler

	allowOrigins := opts.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}

	svc.router.Use(middleware.Recover())
	svc.router.Use(middleware.RequestID())
	svc.router.Use(middleware.Logger())
	svc.router.Use(svc.RequestContext)
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	cntrl := controller.NewController(ingestService, catalogService, reportService)

	api := svc.router.Group("/api/v1")

	uploads := api.Group("/uploads")
	uploads.POST("/:kind", cntrl.Upload)
	uploads.GET("", cntrl.ListUploads)
	uploads.DELETE("/:id", cntrl.DeleteUpload)

	api.GET("/catalog/:sku", cntrl.GetCatalogEntry)

	reports := api.Group("/reports")
	reports.GET("/:kind", cntrl.GetReport)
	reports.GET("/:kind/top-products", cntrl.GetTopProducts)

	return svc
}
