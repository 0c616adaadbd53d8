package server

import (
	"log/slog"
	"net/http"

	"bike-analytics/internal/config"
	"bike-analytics/internal/handlers"
	"bike-analytics/internal/services"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

func NewServer(analytics *services.Analytics, kpis *services.KPIService, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, kpis, cfg.Analytics.TopProductsLimit, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, kpis, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /{$}", s.apiHandlers.HandleRoot)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// Analytics endpoints: GET serves the unfiltered view, POST accepts an
	// optional filter body.
	s.mux.HandleFunc("GET /api/analytics/products/top", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("POST /api/analytics/products/top", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/analytics/seasonal", s.apiHandlers.HandleSeasonalTrends)
	s.mux.HandleFunc("POST /api/analytics/seasonal", s.apiHandlers.HandleSeasonalTrends)
	s.mux.HandleFunc("GET /api/analytics/customer-segments", s.apiHandlers.HandleCustomerSegments)
	s.mux.HandleFunc("POST /api/analytics/customer-segments", s.apiHandlers.HandleCustomerSegments)
	s.mux.HandleFunc("GET /api/analytics/filters/options", s.apiHandlers.HandleFilterOptions)

	// Dashboard endpoints
	s.mux.HandleFunc("GET /api/dashboard/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("POST /api/dashboard/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/dashboard/revenue-trend", s.apiHandlers.HandleRevenueTrend)
	s.mux.HandleFunc("POST /api/dashboard/revenue-trend", s.apiHandlers.HandleRevenueTrend)
	s.mux.HandleFunc("GET /api/dashboard/geographic", s.apiHandlers.HandleGeographic)
	s.mux.HandleFunc("POST /api/dashboard/geographic", s.apiHandlers.HandleGeographic)
	s.mux.HandleFunc("GET /api/dashboard/age-groups", s.apiHandlers.HandleAgeGroups)
	s.mux.HandleFunc("POST /api/dashboard/age-groups", s.apiHandlers.HandleAgeGroups)

	// KPI endpoints
	s.mux.HandleFunc("GET /api/kpi/main", s.apiHandlers.HandleMainKPIs)
	s.mux.HandleFunc("POST /api/kpi/main", s.apiHandlers.HandleMainKPIs)
	s.mux.HandleFunc("GET /api/kpi/performance", s.apiHandlers.HandlePerformanceMetrics)
	s.mux.HandleFunc("POST /api/kpi/performance", s.apiHandlers.HandlePerformanceMetrics)

	// Datastar SSE endpoints for live dashboard refresh
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
