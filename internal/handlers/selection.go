package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"

	"superstore-dashboard/internal/dataset"
	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/pipeline"
	"superstore-dashboard/internal/services"
)

const (
	cacheControl = "public, max-age=300"

	// Query keys accepted by the REST, chart and export endpoints.
	paramStart    = "start"
	paramEnd      = "end"
	paramCategory = "category"
	paramSegment  = "segment"
	paramRegion   = "region"

	// datastar sends GET signals as JSON in this query parameter.
	datastarParam = "datastar"
)

var cacheHeaders = map[string]string{
	"Cache-Control": cacheControl,
}

// filterSignals mirrors the filter widgets on the dashboard page. A nil slice
// means the widget was not sent and defaults to every value; an empty slice
// means nothing is selected.
type filterSignals struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Categories []string `json:"categories"`
	Segments   []string `json:"segments"`
	Regions    []string `json:"regions"`
}

// chartSignals carries the per-run chart inputs to the page. The leading
// underscore keeps them local to the browser: datastar leaves such signals out
// of the requests it sends, so a refresh only carries the filter widgets.
type chartSignals struct {
	HasData       bool                      `json:"_hasData"`
	RowCount      int                       `json:"_rowCount"`
	TotalQuantity int                       `json:"_totalQuantity"`
	CategoryData  []models.CategoryQuantity `json:"_categoryData"`
	CityData      []models.CityQuantity     `json:"_cityData"`
	ScatterData   []models.SalesProfitPoint `json:"_scatterData"`
}

type heatmapSignals struct {
	HeatmapData *models.ProfitHeatmap `json:"_heatmapData"`
}

type pageSignals struct {
	filterSignals
	chartSignals
	heatmapSignals
}

func emptyCharts() chartSignals {
	return chartSignals{
		CategoryData: []models.CategoryQuantity{},
		CityData:     []models.CityQuantity{},
		ScatterData:  []models.SalesProfitPoint{},
	}
}

func resultCharts(res *pipeline.Result) chartSignals {
	return chartSignals{
		HasData:       true,
		RowCount:      len(res.Filtered),
		TotalQuantity: res.TotalQuantity(),
		CategoryData:  res.Categories(),
		CityData:      res.TopCities,
		ScatterData:   res.Points,
	}
}

// InitialSignals is the signal object the dashboard page starts with: every
// widget set to its full domain and no chart data yet.
func InitialSignals(dom models.Domain) ([]byte, error) {
	sel := pipeline.DefaultSelection(dom)
	return json.Marshal(pageSignals{
		filterSignals: filterSignals{
			StartDate:  formatDay(sel.Start),
			EndDate:    formatDay(sel.End),
			Categories: nonNil(sel.Categories),
			Segments:   nonNil(sel.Segments),
			Regions:    nonNil(sel.Regions),
		},
		chartSignals: emptyCharts(),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func signalsFromQuery(q url.Values) filterSignals {
	return filterSignals{
		StartDate:  strings.TrimSpace(q.Get(paramStart)),
		EndDate:    strings.TrimSpace(q.Get(paramEnd)),
		Categories: q[paramCategory],
		Segments:   q[paramSegment],
		Regions:    q[paramRegion],
	}
}

// selection resolves the signals against the dataset domain. Absent fields
// take the domain default.
func (f filterSignals) selection(dom models.Domain) (models.Selection, error) {
	sel := pipeline.DefaultSelection(dom)

	if f.StartDate != "" {
		start, err := dataset.ParseDate(f.StartDate)
		if err != nil {
			return models.Selection{}, errors.ValidationWrap(err, "Invalid start date")
		}
		sel.Start = start
	}
	if f.EndDate != "" {
		end, err := dataset.ParseDate(f.EndDate)
		if err != nil {
			return models.Selection{}, errors.ValidationWrap(err, "Invalid end date")
		}
		sel.End = end
	}
	if f.Categories != nil {
		sel.Categories = f.Categories
	}
	if f.Segments != nil {
		sel.Segments = f.Segments
	}
	if f.Regions != nil {
		sel.Regions = f.Regions
	}
	return sel, nil
}

// base is shared by every handler group that runs the pipeline.
type base struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func newBase(dashboard *services.Dashboard, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{dashboard: dashboard, logger: logger}
}

// run parses the filter query of r and executes one pipeline run.
func (b base) run(r *http.Request) (*pipeline.Result, error) {
	sel, err := signalsFromQuery(r.URL.Query()).selection(b.dashboard.Domain())
	if err != nil {
		return nil, err
	}
	return b.dashboard.Run(r.Context(), sel)
}

func (b base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, b.logger, appError(err), observability.GetRequestID(r.Context()))
}

// appError maps pipeline outcomes onto the API error taxonomy.
func appError(err error) error {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, pipeline.ErrEmptySelection):
		return errors.EmptySelection(err)
	case stderrors.Is(err, services.ErrNotLoaded):
		return errors.ServiceUnavailable(err, "Order data is not loaded yet")
	default:
		return errors.InternalWrap(err, "Failed to compute dashboard")
	}
}

func renderHTML(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
