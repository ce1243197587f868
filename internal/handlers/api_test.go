package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func order(id string, date time.Time, category, segment, region, city, shipMode, product string, sales, profit string, qty int) models.OrderRecord {
	return models.OrderRecord{
		OrderID:     id,
		OrderDate:   date,
		ShipDate:    date.AddDate(0, 0, 4),
		Category:    category,
		Segment:     segment,
		Region:      region,
		City:        city,
		ShipMode:    shipMode,
		ProductName: product,
		Sales:       decimal.RequireFromString(sales),
		Profit:      decimal.RequireFromString(profit),
		Quantity:    qty,
	}
}

func createTestDashboard() *services.Dashboard {
	d := services.NewDashboard(testLogger())
	d.SetData([]models.OrderRecord{
		order("O1", time.Date(2015, 1, 10, 0, 0, 0, 0, time.UTC), "Furniture", "Consumer", "West", "Los Angeles", "Second Class", "Chair", "100", "20", 3),
		order("O2", time.Date(2015, 2, 15, 0, 0, 0, 0, time.UTC), "Technology", "Corporate", "East", "New York City", "Standard Class", "Phone", "500", "-50", 5),
		order("O3", time.Date(2016, 6, 1, 0, 0, 0, 0, time.UTC), "Office Supplies", "Home Office", "West", "Seattle", "First Class", "Paper", "20", "5", 10),
		order("O4", time.Date(2016, 7, 4, 0, 0, 0, 0, time.UTC), "Technology", "Consumer", "East", "New York City", "Standard Class", "Monitor", "300", "60", 2),
	})
	return d
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return env
}

func TestNewAPIHandlers(t *testing.T) {
	dashboard := createTestDashboard()
	logger := slog.Default()
	handlers := NewAPIHandlers(dashboard, logger)

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}

	if handlers.dashboard != dashboard {
		t.Error("NewAPIHandlers() should set dashboard field")
	}

	if handlers.logger != logger {
		t.Error("NewAPIHandlers() should set logger field")
	}
}

func TestAPIHandlers_HandleDashboard(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	w := httptest.NewRecorder()

	handlers.HandleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Fatal("expected success=true in response")
	}

	var data dashboardResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	if data.RowCount != 4 {
		t.Errorf("row_count = %d, want 4", data.RowCount)
	}
	if data.TotalQuantity != 20 {
		t.Errorf("total_quantity = %d, want 20", data.TotalQuantity)
	}
	if len(data.SalesProfit) != 4 {
		t.Errorf("sales_profit has %d points, want 4", len(data.SalesProfit))
	}
	if len(data.ProfitHeatmap.Facets) != 3 {
		t.Errorf("heatmap has %d facets, want 3", len(data.ProfitHeatmap.Facets))
	}
}

func TestAPIHandlers_Filters(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	tests := []struct {
		name     string
		query    string
		wantRows int
		wantQty  int
	}{
		{"no filters", "", 4, 20},
		{"region", "?region=West", 2, 13},
		{"several regions", "?region=West&region=East", 4, 20},
		{"start only", "?start=2016-01-01", 2, 12},
		{"end only", "?end=2015-12-31", 2, 8},
		{"single inclusive day", "?start=2015-02-15&end=2015-02-15", 1, 5},
		{"category and segment", "?category=Technology&segment=Consumer", 1, 2},
		{"us date layout", "?start=6/1/2016&end=6/1/2016", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard"+tt.query, nil)
			w := httptest.NewRecorder()

			handlers.HandleDashboard(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}

			var data dashboardResponse
			if err := json.Unmarshal(decodeEnvelope(t, w).Data, &data); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if data.RowCount != tt.wantRows {
				t.Errorf("row_count = %d, want %d", data.RowCount, tt.wantRows)
			}
			if data.TotalQuantity != tt.wantQty {
				t.Errorf("total_quantity = %d, want %d", data.TotalQuantity, tt.wantQty)
			}
		})
	}
}

func TestAPIHandlers_HandleCategoryQuantity(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/category-quantity", nil)
	w := httptest.NewRecorder()

	handlers.HandleCategoryQuantity(w, req)

	var data []models.CategoryQuantity
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	expected := []models.CategoryQuantity{
		{Category: "Furniture", Quantity: 3},
		{Category: "Office Supplies", Quantity: 10},
		{Category: "Technology", Quantity: 7},
	}
	if len(data) != len(expected) {
		t.Fatalf("expected %d categories, got %d", len(expected), len(data))
	}
	for i := range expected {
		if data[i] != expected[i] {
			t.Errorf("category[%d] = %+v, want %+v", i, data[i], expected[i])
		}
	}
}

func TestAPIHandlers_HandleTopCities(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/top-cities", nil)
	w := httptest.NewRecorder()

	handlers.HandleTopCities(w, req)

	var data []models.CityQuantity
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	expected := []models.CityQuantity{
		{City: "Seattle", Region: "West", Quantity: 10},
		{City: "New York City", Region: "East", Quantity: 7},
		{City: "Los Angeles", Region: "West", Quantity: 3},
	}
	if len(data) != len(expected) {
		t.Fatalf("expected %d cities, got %d", len(expected), len(data))
	}
	for i := range expected {
		if data[i] != expected[i] {
			t.Errorf("city[%d] = %+v, want %+v", i, data[i], expected[i])
		}
	}
}

func TestAPIHandlers_HandleSalesProfit(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/sales-profit?region=East", nil)
	w := httptest.NewRecorder()

	handlers.HandleSalesProfit(w, req)

	var data []models.SalesProfitPoint
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	if len(data) != 2 {
		t.Fatalf("expected 2 points, got %d", len(data))
	}
	if data[0].OrderID != "O2" || data[0].Sales != 500 || data[0].Profit != -50 || data[0].Quantity != 5 {
		t.Errorf("unexpected first point %+v", data[0])
	}
	if data[1].ProductName != "Monitor" {
		t.Errorf("second point product = %q, want Monitor", data[1].ProductName)
	}
}

func TestAPIHandlers_HandleProfitHeatmap(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	// Filters do not apply to the heat-map.
	req := httptest.NewRequest(http.MethodGet, "/api/profit-heatmap?region=Nowhere", nil)
	w := httptest.NewRecorder()

	handlers.HandleProfitHeatmap(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var data models.ProfitHeatmap
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	if len(data.SalesBins) != 4 {
		t.Errorf("expected 4 sales bins, got %d", len(data.SalesBins))
	}
	if strings.Join(data.Regions, ",") != "East,West" {
		t.Errorf("regions = %v", data.Regions)
	}
	modes := make([]string, len(data.Facets))
	for i, f := range data.Facets {
		modes[i] = f.ShipMode
	}
	if strings.Join(modes, ",") != "First Class,Second Class,Standard Class" {
		t.Errorf("facets = %v", modes)
	}
}

func TestAPIHandlers_HandleDomain(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/domain", nil)
	w := httptest.NewRecorder()

	handlers.HandleDomain(w, req)

	var data models.Domain
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	if !data.MinDate.Equal(time.Date(2015, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("min_date = %v", data.MinDate)
	}
	if !data.MaxDate.Equal(time.Date(2016, 7, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("max_date = %v", data.MaxDate)
	}
	if strings.Join(data.Segments, ",") != "Consumer,Corporate,Home Office" {
		t.Errorf("segments = %v", data.Segments)
	}
}

func TestAPIHandlers_EmptySelection(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		query   string
	}{
		{"dates after the data", handlers.HandleDashboard, "?start=2020-01-01"},
		{"start after end", handlers.HandleDashboard, "?start=2016-01-01&end=2015-01-01"},
		{"unknown category", handlers.HandleCategoryQuantity, "?category=Toys"},
		{"empty region value", handlers.HandleTopCities, "?region="},
		{"disjoint filters", handlers.HandleSalesProfit, "?region=West&category=Technology"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/test"+tt.query, nil)
			w := httptest.NewRecorder()

			tt.handler(w, req)

			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected status 422, got %d", w.Code)
			}

			env := decodeEnvelope(t, w)
			if env.Success {
				t.Error("expected success=false")
			}
			if env.Error == nil || env.Error.Code != "EMPTY_SELECTION" {
				t.Fatalf("expected EMPTY_SELECTION error, got %+v", env.Error)
			}
			if env.Error.Message != "No data for this selection" {
				t.Errorf("message = %q", env.Error.Message)
			}
		})
	}
}

func TestAPIHandlers_InvalidDates(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	for _, query := range []string{"?start=yesterday", "?end=2016-13-45"} {
		t.Run(query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard"+query, nil)
			w := httptest.NewRecorder()

			handlers.HandleDashboard(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
			env := decodeEnvelope(t, w)
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("expected VALIDATION_ERROR error, got %+v", env.Error)
			}
		})
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var health map[string]string
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &health); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	if health["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %q", health["status"])
	}
	if _, err := time.Parse(time.RFC3339, health["timestamp"]); err != nil {
		t.Errorf("timestamp should be RFC3339: %v", err)
	}
	if health["version"] == "" {
		t.Error("health response should include version")
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	dashboard := createTestDashboard()
	handlers := NewAPIHandlers(dashboard, testLogger())

	// One successful run, one empty selection.
	handlers.HandleDashboard(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	handlers.HandleDashboard(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/dashboard?region=Nowhere", nil))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()

	handlers.HandleStats(w, req)

	var stats map[string]any
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &stats); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	checks := map[string]float64{
		"record_count":     4,
		"categories":       3,
		"regions":          2,
		"ship_modes":       3,
		"runs":             2,
		"empty_selections": 1,
	}
	for key, want := range checks {
		if got, ok := stats[key].(float64); !ok || got != want {
			t.Errorf("%s = %v, want %v", key, stats[key], want)
		}
	}
	if stats["min_order_date"] != "2015-01-10" {
		t.Errorf("min_order_date = %v", stats["min_order_date"])
	}
}

// Test that data handlers set the same headers
func TestAPIHandlers_HeaderConsistency(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), testLogger())

	apiEndpoints := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"domain", handlers.HandleDomain},
		{"dashboard", handlers.HandleDashboard},
		{"category-quantity", handlers.HandleCategoryQuantity},
		{"top-cities", handlers.HandleTopCities},
		{"sales-profit", handlers.HandleSalesProfit},
		{"profit-heatmap", handlers.HandleProfitHeatmap},
	}

	for _, endpoint := range apiEndpoints {
		t.Run(endpoint.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			endpoint.handler(w, req)

			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected content-type 'application/json', got %q", ct)
			}

			if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
				t.Errorf("expected cache-control 'public, max-age=300', got %q", cc)
			}

			if !decodeEnvelope(t, w).Success {
				t.Error("expected success=true in response")
			}
		})
	}
}

// Test that health endpoint doesn't set cache headers
func TestAPIHandlers_HealthNoCaching(t *testing.T) {
	handlers := NewAPIHandlers(createTestDashboard(), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if cc := w.Header().Get("Cache-Control"); cc != "" {
		t.Errorf("health endpoint should not set cache-control, got %q", cc)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}
}

func TestAPIHandlers_EmptyDataset(t *testing.T) {
	handlers := NewAPIHandlers(services.NewDashboard(testLogger()), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	w := httptest.NewRecorder()

	handlers.HandleDashboard(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 before the dataset is loaded, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Errorf("expected SERVICE_UNAVAILABLE error, got %+v", env.Error)
	}
}
