package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/services"
)

type APIHandlers struct {
	base
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		base: newBase(dashboard, logger),
	}
}

// dashboardResponse is one full pipeline run plus the unfiltered heat-map.
type dashboardResponse struct {
	Selection        models.Selection          `json:"selection"`
	RowCount         int                       `json:"row_count"`
	TotalQuantity    int                       `json:"total_quantity"`
	CategoryQuantity []models.CategoryQuantity `json:"category_quantity"`
	TopCities        []models.CityQuantity     `json:"top_cities"`
	SalesProfit      []models.SalesProfitPoint `json:"sales_profit"`
	ProfitHeatmap    models.ProfitHeatmap      `json:"profit_heatmap"`
}

func (h *APIHandlers) HandleDomain(w http.ResponseWriter, r *http.Request) {
	data := h.dashboard.Domain()

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	res, err := h.run(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data := dashboardResponse{
		Selection:        res.Selection,
		RowCount:         len(res.Filtered),
		TotalQuantity:    res.TotalQuantity(),
		CategoryQuantity: res.Categories(),
		TopCities:        res.TopCities,
		SalesProfit:      res.Points,
		ProfitHeatmap:    h.dashboard.Heatmap(),
	}

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleCategoryQuantity(w http.ResponseWriter, r *http.Request) {
	res, err := h.run(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, res.Categories(), cacheHeaders)
}

func (h *APIHandlers) HandleTopCities(w http.ResponseWriter, r *http.Request) {
	res, err := h.run(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, res.TopCities, cacheHeaders)
}

func (h *APIHandlers) HandleSalesProfit(w http.ResponseWriter, r *http.Request) {
	res, err := h.run(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, res.Points, cacheHeaders)
}

// HandleProfitHeatmap serves the heat-map of the full dataset. Filter
// parameters are ignored.
func (h *APIHandlers) HandleProfitHeatmap(w http.ResponseWriter, r *http.Request) {

	data := h.dashboard.Heatmap()

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.dashboard.Stats()

	errors.WriteSuccess(w, stats)
}
