package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bike-analytics/internal/config"
	"bike-analytics/internal/models"
	"bike-analytics/internal/server"
	"bike-analytics/internal/services"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	date := func(s string) time.Time {
		d, err := time.Parse(models.DateLayout, s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	records := []models.SalesRecord{
		{
			Date: date("2024-01-10"), Day: 10, Month: "January", Year: 2024,
			CustomerAge: 19, AgeGroup: "Youth (<25)", CustomerGender: "M",
			Country: "Canada", State: "British Columbia",
			ProductCategory: "Bikes", SubCategory: "Road Bikes", Product: "Road-150",
			OrderQuantity: 1, Revenue: 2000, Cost: 1200, Profit: 800,
		},
		{
			Date: date("2024-02-05"), Day: 5, Month: "February", Year: 2024,
			CustomerAge: 42, AgeGroup: "Adults (35-64)", CustomerGender: "F",
			Country: "Germany", State: "Bayern",
			ProductCategory: "Clothing", SubCategory: "Jerseys", Product: "Jersey",
			OrderQuantity: 2, Revenue: 150, Cost: 90, Profit: 60,
		},
	}

	cfg := &config.Config{
		Analytics: config.AnalyticsConfig{TopProductsLimit: 10},
	}

	store := services.NewStore(records, logger)
	analytics := services.NewAnalytics(store, nil, logger)
	kpis := services.NewKPIService(analytics, logger)
	return server.NewServer(analytics, kpis, cfg, logger)
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/", http.StatusOK},
		{"GET", "/health", http.StatusOK},
		{"GET", "/admin/stats", http.StatusOK},
		{"GET", "/api/analytics/products/top", http.StatusOK},
		{"POST", "/api/analytics/products/top", http.StatusOK},
		{"GET", "/api/analytics/seasonal", http.StatusOK},
		{"GET", "/api/analytics/customer-segments", http.StatusOK},
		{"GET", "/api/analytics/filters/options", http.StatusOK},
		{"GET", "/api/dashboard/summary", http.StatusOK},
		{"POST", "/api/dashboard/summary", http.StatusOK},
		{"GET", "/api/dashboard/revenue-trend", http.StatusOK},
		{"GET", "/api/dashboard/geographic", http.StatusOK},
		{"GET", "/api/dashboard/age-groups", http.StatusOK},
		{"GET", "/api/kpi/main", http.StatusOK},
		{"GET", "/api/kpi/performance", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, "application/json") {
				t.Errorf("content-type = %q, want application/json", ct)
			}

			var result map[string]any
			if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
				t.Errorf("invalid json: %v", err)
			}
			if success, ok := result["success"].(bool); !ok || !success {
				t.Error("expected success=true envelope")
			}
		})
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{"DELETE", "/health"},
		{"PUT", "/api/dashboard/summary"},
		{"PATCH", "/api/kpi/main"},
		{"POST", "/api/analytics/filters/options"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
			}
		})
	}
}

func TestServer_NotFound(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/does-not-exist", nil)
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestServer_SSERoutes(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/sse/dashboard", "/sse/refresh-all"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}
			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("cache-control = %q, want 'no-cache'", cc)
			}
		})
	}
}

func TestServer_FilteredRequest(t *testing.T) {
	srv := newTestServer(t)

	body := `{"countries": ["Canada"], "start_date": "2024-01-01", "end_date": "2024-12-31"}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/dashboard/summary", strings.NewReader(body))
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var response struct {
		Data    models.SummaryStats `json:"data"`
		Success bool                `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Data.TotalRevenue != 2000 {
		t.Errorf("expected Canada-only revenue 2000, got %f", response.Data.TotalRevenue)
	}
	if response.Data.TotalOrders != 1 {
		t.Errorf("expected 1 order, got %d", response.Data.TotalOrders)
	}
}

func TestServer_BadFilterBody(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/dashboard/summary", strings.NewReader(`{"start_date": "bad"}`))
	srv.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if success, ok := response["success"].(bool); !ok || success {
		t.Error("expected success=false envelope")
	}
}
