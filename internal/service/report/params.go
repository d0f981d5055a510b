package report

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ougirez/cbmreport/internal/domain"
	"github.com/ougirez/cbmreport/internal/pkg/constants"
	"github.com/ougirez/cbmreport/internal/service/cache"
	"github.com/ougirez/cbmreport/internal/service/category"
	"github.com/ougirez/cbmreport/internal/service/timeseries"
)

const (
	DefaultLimit = 10
	MaxLimit     = 500
)

// Params are the report query parameters as they arrive over HTTP.
type Params struct {
	UploadID        string   `query:"uploadId" validate:"omitempty,uuid"`
	FromDate        string   `query:"fromDate" validate:"omitempty,datetime=2006-01-02"`
	ToDate          string   `query:"toDate" validate:"omitempty,datetime=2006-01-02"`
	Month           string   `query:"month" validate:"omitempty,datetime=2006-01"`
	ProductCategory []string `query:"productCategory"`
	TimeGranularity string   `query:"timeGranularity" validate:"omitempty,oneof=day week month"`
	Warehouse       string   `query:"warehouse" validate:"max=255"`
	RankBy          string   `query:"rankBy" validate:"omitempty,oneof=cbm qty"`
	SortOrder       string   `query:"sortOrder" validate:"omitempty,oneof=top bottom"`
	Limit           int      `query:"limit" validate:"omitempty,min=1,max=500"`
}

// query is Params after validation, before the batch is resolved.
type query struct {
	kind        domain.SourceKind
	uploadID    *uuid.UUID
	from        *time.Time
	to          *time.Time
	categories  []domain.ProductCategory
	warehouse   *string
	granularity domain.Granularity
	rankBy      domain.RankBy
	sortOrder   domain.SortOrder
	limit       int
}

func parseQuery(v *validator.Validate, kind domain.SourceKind, p Params) (*query, error) {
	if !kind.IsMovement() && kind != domain.SourceKindInventory {
		return nil, constants.Validationf("reports are not available for %s", kind)
	}

	if err := v.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return nil, constants.Validationf("parameter %s fails %s", fe.Field(), fe.Tag())
		}
		return nil, constants.Validationf("%s", err.Error())
	}

	q := &query{
		kind:      kind,
		rankBy:    domain.RankByCbm,
		sortOrder: domain.SortOrderTop,
		limit:     DefaultLimit,
	}

	if p.UploadID != "" {
		id, err := uuid.Parse(p.UploadID)
		if err != nil {
			return nil, constants.Validationf("invalid uploadId %q", p.UploadID)
		}
		q.uploadID = &id
	}

	if err := q.parseRange(p); err != nil {
		return nil, err
	}

	for _, raw := range p.ProductCategory {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			c, err := category.Parse(part)
			if err != nil {
				return nil, err
			}
			if !slices.Contains(q.categories, c) {
				q.categories = append(q.categories, c)
			}
		}
	}

	if w := strings.TrimSpace(p.Warehouse); w != "" {
		q.warehouse = &w
	}

	g, err := timeseries.ParseGranularity(p.TimeGranularity)
	if err != nil {
		return nil, err
	}
	q.granularity = g

	if p.RankBy != "" {
		q.rankBy = domain.RankBy(p.RankBy)
	}
	if p.SortOrder != "" {
		q.sortOrder = domain.SortOrder(p.SortOrder)
	}
	if p.Limit > 0 {
		q.limit = min(p.Limit, MaxLimit)
	}

	return q, nil
}

// parseRange applies fromDate/toDate; month takes precedence over both.
func (q *query) parseRange(p Params) error {
	if p.Month != "" {
		start, err := time.Parse(constants.MonthLayout, p.Month)
		if err != nil {
			return constants.Validationf("invalid month %q", p.Month)
		}
		end := start.AddDate(0, 1, -1)
		q.from, q.to = &start, &end
		return nil
	}

	if p.FromDate != "" {
		from, err := time.Parse(constants.DateLayout, p.FromDate)
		if err != nil {
			return constants.Validationf("invalid fromDate %q", p.FromDate)
		}
		q.from = &from
	}
	if p.ToDate != "" {
		to, err := time.Parse(constants.DateLayout, p.ToDate)
		if err != nil {
			return constants.Validationf("invalid toDate %q", p.ToDate)
		}
		q.to = &to
	}
	if q.from != nil && q.to != nil && q.from.After(*q.to) {
		return constants.Validationf("fromDate %s is after toDate %s", p.FromDate, p.ToDate)
	}

	return nil
}

func (q *query) filter(batchID uuid.UUID) domain.ReportFilter {
	return domain.ReportFilter{
		Kind:       q.kind,
		BatchID:    batchID,
		From:       q.from,
		To:         q.to,
		Categories: q.categories,
		Warehouse:  q.warehouse,
	}
}

// cacheKey identifies a request by its normalized parameters. The batch is
// named as requested, "latest" included, which stays correct because every
// upload and deletion clears the whole cache.
func (q *query) cacheKey(op string, extra ...cache.Part) string {
	upload := "latest"
	if q.uploadID != nil {
		upload = q.uploadID.String()
	}

	categories := make([]string, 0, len(q.categories))
	for _, c := range q.categories {
		categories = append(categories, string(c))
	}

	parts := []cache.Part{
		cache.P("op", op),
		cache.P("kind", string(q.kind)),
		cache.P("upload", upload),
		cache.P("from", formatDate(q.from)),
		cache.P("to", formatDate(q.to)),
		cache.P("category", categories...),
		cache.P("warehouse", deref(q.warehouse)),
	}
	return cache.Key(append(parts, extra...)...)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(constants.DateLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
