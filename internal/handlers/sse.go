package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/pipeline"
	"superstore-dashboard/internal/services"
	"superstore-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	base
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		base: newBase(dashboard, logger),
	}
}

// HandleRefresh re-runs the pipeline for the widget signals of the page and
// patches the chart data, the city table and the status panel. An empty
// selection clears every chart and shows the error panel instead.
func (h *SSEHandlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var signals filterSignals
	var readErr error
	if r.URL.Query().Has(datastarParam) {
		readErr = datastar.ReadSignals(r, &signals)
	}

	sse := datastar.NewSSE(w, r)

	if readErr != nil {
		h.logger.Warn("read signals", "error", readErr)
		h.patchFailure(sse, r, errors.BadRequestWrap(readErr, "Invalid filter signals"))
		return
	}

	sel, err := signals.selection(h.dashboard.Domain())
	if err != nil {
		h.patchFailure(sse, r, err)
		return
	}

	res, err := h.dashboard.Run(r.Context(), sel)
	if err != nil {
		if !stderrors.Is(err, pipeline.ErrEmptySelection) {
			h.logger.Error("pipeline run", "error", err)
		}
		h.patchFailure(sse, r, err)
		return
	}

	if err := h.patchCharts(sse, resultCharts(res)); err != nil {
		h.logger.Error("patch chart signals", "error", err)
		return
	}

	table, err := renderHTML(r.Context(), templates.CityTable(res.TopCities))
	if err != nil {
		h.logger.Error("render city table", "error", err)
		return
	}
	if err := sse.PatchElements(table); err != nil {
		h.logger.Error("patch city table", "error", err)
		return
	}

	h.patchStatus(sse, r, templates.Status{
		Title:   fmt.Sprintf("%d orders, %d products sold", len(res.Filtered), res.TotalQuantity()),
		Details: fmt.Sprintf("%s to %s", formatDay(sel.Start), formatDay(sel.End)),
	})
}

// HandleHeatmap patches the full-dataset heat-map. The page requests it once.
func (h *SSEHandlers) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	heatmap := h.dashboard.Heatmap()
	jsonData, err := json.Marshal(heatmapSignals{HeatmapData: &heatmap})
	if err != nil {
		h.logger.Error("marshal heatmap data", "error", err)
		return
	}
	if err := sse.PatchSignals(jsonData); err != nil {
		h.logger.Error("patch heatmap signals", "error", err)
	}
}

func (h *SSEHandlers) patchCharts(sse *datastar.ServerSentEventGenerator, charts chartSignals) error {
	jsonData, err := json.Marshal(charts)
	if err != nil {
		return fmt.Errorf("marshal chart signals: %w", err)
	}
	return sse.PatchSignals(jsonData)
}

// patchFailure clears the charts and shows err in the status panel. The run
// stops here; nothing downstream is drawn.
func (h *SSEHandlers) patchFailure(sse *datastar.ServerSentEventGenerator, r *http.Request, err error) {
	if patchErr := h.patchCharts(sse, emptyCharts()); patchErr != nil {
		h.logger.Error("clear chart signals", "error", patchErr)
		return
	}

	table, renderErr := renderHTML(r.Context(), templates.CityTable(nil))
	if renderErr == nil {
		renderErr = sse.PatchElements(table)
	}
	if renderErr != nil {
		h.logger.Error("clear city table", "error", renderErr)
		return
	}

	var appErr *errors.AppError
	if !stderrors.As(appError(err), &appErr) {
		return
	}
	h.patchStatus(sse, r, templates.Status{
		Error:   true,
		Title:   appErr.Message,
		Details: appErr.Details,
	})
}

func (h *SSEHandlers) patchStatus(sse *datastar.ServerSentEventGenerator, r *http.Request, status templates.Status) {
	html, err := renderHTML(r.Context(), templates.StatusPanel(status))
	if err != nil {
		h.logger.Error("render status panel", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Error("patch status panel", "error", err)
	}
}
