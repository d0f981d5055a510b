package controller

import (
	"github.com/ougirez/cbmreport/internal/service/catalog"
	"github.com/ougirez/cbmreport/internal/service/ingest"
	"github.com/ougirez/cbmreport/internal/service/report"
)

type Controller struct {
	ingest  *ingest.Service
	catalog *catalog.Service
	report  *report.Service
}

func NewController(ingest *ingest.Service, catalog *catalog.Service, report *report.Service) *Controller {
	return &Controller{ingest: ingest, catalog: catalog, report: report}
}
