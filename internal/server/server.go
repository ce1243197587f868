package server

import (
	"log/slog"
	"net/http"

	"superstore-dashboard/internal/export"
	"superstore-dashboard/internal/handlers"
	"superstore-dashboard/internal/services"
	"superstore-dashboard/internal/ui/static"
)

type Server struct {
	dashboard      *services.Dashboard
	mux            *http.ServeMux
	logger         *slog.Logger
	apiHandlers    *handlers.APIHandlers
	sseHandlers    *handlers.SSEHandlers
	chartHandlers  *handlers.ChartHandlers
	exportHandlers *handlers.ExportHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(dashboard *services.Dashboard, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		dashboard:      dashboard,
		mux:            http.NewServeMux(),
		logger:         logger,
		apiHandlers:    handlers.NewAPIHandlers(dashboard, logger),
		sseHandlers:    handlers.NewSSEHandlers(dashboard, logger),
		chartHandlers:  handlers.NewChartHandlers(dashboard, logger),
		exportHandlers: handlers.NewExportHandlers(dashboard, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static.FS)))
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/domain", s.apiHandlers.HandleDomain)
	s.mux.HandleFunc("GET /api/dashboard", s.apiHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /api/category-quantity", s.apiHandlers.HandleCategoryQuantity)
	s.mux.HandleFunc("GET /api/top-cities", s.apiHandlers.HandleTopCities)
	s.mux.HandleFunc("GET /api/sales-profit", s.apiHandlers.HandleSalesProfit)
	s.mux.HandleFunc("GET /api/profit-heatmap", s.apiHandlers.HandleProfitHeatmap)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/refresh", s.sseHandlers.HandleRefresh)
	s.mux.HandleFunc("GET /sse/heatmap", s.sseHandlers.HandleHeatmap)

	// Server-rendered charts
	s.mux.HandleFunc("GET /charts/category.png", s.chartHandlers.HandleCategory)
	s.mux.HandleFunc("GET /charts/top-cities.png", s.chartHandlers.HandleTopCities)
	s.mux.HandleFunc("GET /charts/sales-profit.png", s.chartHandlers.HandleSalesProfit)

	// Downloads of the filtered orders
	s.mux.HandleFunc("GET /export/orders.xlsx", s.exportHandlers.Handle(export.FormatExcel))
	s.mux.HandleFunc("GET /export/orders.csv", s.exportHandlers.Handle(export.FormatCSV))
	s.mux.HandleFunc("GET /export/orders.pdf", s.exportHandlers.Handle(export.FormatPDF))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
