package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"superstore-dashboard/internal/charts"
	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/pipeline"
	"superstore-dashboard/internal/services"
)

const (
	minChartSize = 100
	maxChartSize = 2000
)

// ChartHandlers serve server-rendered PNG versions of the filtered views.
type ChartHandlers struct {
	base
}

func NewChartHandlers(dashboard *services.Dashboard, logger *slog.Logger) *ChartHandlers {
	return &ChartHandlers{
		base: newBase(dashboard, logger),
	}
}

type drawFunc func(w io.Writer, size charts.Size, res *pipeline.Result) error

func (h *ChartHandlers) HandleCategory(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(w io.Writer, size charts.Size, res *pipeline.Result) error {
		return charts.CategoryPie(w, size, res.Categories())
	})
}

func (h *ChartHandlers) HandleTopCities(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(w io.Writer, size charts.Size, res *pipeline.Result) error {
		return charts.TopCitiesBar(w, size, res.TopCities)
	})
}

func (h *ChartHandlers) HandleSalesProfit(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(w io.Writer, size charts.Size, res *pipeline.Result) error {
		return charts.SalesProfitScatter(w, size, res.Points)
	})
}

// serve renders into memory first so a failed render still gets a JSON error.
func (h *ChartHandlers) serve(w http.ResponseWriter, r *http.Request, draw drawFunc) {
	size, err := parseSize(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.run(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := draw(&buf, size, res); err != nil {
		h.writeError(w, r, errors.InternalWrap(err, "Failed to render chart"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write chart", "error", err)
	}
}

// parseSize reads the optional width and height query values.
func parseSize(q url.Values) (charts.Size, error) {
	var size charts.Size
	for _, dim := range []struct {
		key string
		dst *int
	}{
		{"width", &size.Width},
		{"height", &size.Height},
	} {
		raw := q.Get(dim.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < minChartSize || n > maxChartSize {
			return charts.Size{}, errors.Validation("Invalid " + dim.key + ": must be an integer between " +
				strconv.Itoa(minChartSize) + " and " + strconv.Itoa(maxChartSize))
		}
		*dim.dst = n
	}
	return size, nil
}
