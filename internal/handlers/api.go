package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"bike-analytics/internal/errors"
	"bike-analytics/internal/models"
	"bike-analytics/internal/observability"
	"bike-analytics/internal/services"
)

type APIHandlers struct {
	analytics        *services.Analytics
	kpis             *services.KPIService
	logger           *slog.Logger
	topProductsLimit int
}

func NewAPIHandlers(analytics *services.Analytics, kpis *services.KPIService, topProductsLimit int, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics:        analytics,
		kpis:             kpis,
		logger:           logger,
		topProductsLimit: topProductsLimit,
	}
}

// filterFromRequest decodes the optional filter body on POST requests. GET
// requests and empty bodies mean "no filter". Malformed JSON or dates are
// caller errors.
func (h *APIHandlers) filterFromRequest(r *http.Request) (*models.Filter, error) {
	if r.Method != http.MethodPost {
		return nil, nil
	}

	var req models.FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.BadRequestWrap(err, "malformed filter body")
	}

	f, err := req.Parse()
	if err != nil {
		return nil, errors.BadRequestWrap(err, "invalid filter")
	}
	return f, nil
}

func (h *APIHandlers) writeFilterError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

// respond writes the success envelope; unfiltered GET responses are
// cacheable, filtered POST responses are not.
func (h *APIHandlers) respond(w http.ResponseWriter, r *http.Request, data any) {
	if r.Method == http.MethodGet {
		errors.WriteSuccessWithHeaders(w, data, map[string]string{
			"Cache-Control": "public, max-age=300",
		})
		return
	}
	errors.WriteSuccess(w, data)
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromRequest(r)
	if err != nil {
		h.writeFilterError(w, r, err)
		return
	}
	h.respond(w, r, h.analytics.TopProducts(f, h.topProductsLimit))
}

func (h *APIHandlers) HandleSeasonalTrends(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromRequest(r)
	if err != nil {
		h.writeFilterError(w, r, err)
		return
	}
	h.respond(w, r, h.analytics.SeasonalTrends(f))
}

func (h *APIHandlers) HandleCustomerSegments(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromRequest(r)
	if err != nil {
		h.writeFilterError(w, r, err)
		return
	}
	h.respond(w, r, h.analytics.CustomerSegmentation(f))
}

func (h *APIHandlers) HandleFilterOptions(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.analytics.FilterOptions())
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromRequest(r)
	if err != nil {
		h.writeFilterError(w, r, err)
		return
	}
	h.respond(w, r, h.analytics.SummaryStats(f))
}

func (h *APIHandlers) HandleRevenueTrend(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromRequest(r)
	if err != nil {
		h.writeFilterError(w, r, err)
		return
	}
	h.respond(w, r, h.analytics.RevenueByMonth(f))
}

func (h *APIHandlers) HandleGeographic(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromRequest(r)
	if err != nil {
		h.writeFilterError(w, r, err)
		return
	}
	h.respond(w, r, h.analytics.GeographicPerformance(f))
}

func (h *APIHandlers) HandleAgeGroups(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromRequest(r)
	if err != nil {
		h.writeFilterError(w, r, err)
		return
	}
	h.respond(w, r, h.analytics.AgeGroupAnalysis(f))
}

func (h *APIHandlers) HandleMainKPIs(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromRequest(r)
	if err != nil {
		h.writeFilterError(w, r, err)
		return
	}
	h.respond(w, r, h.kpis.MainKPIs(f))
}

func (h *APIHandlers) HandlePerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	f, err := h.filterFromRequest(r)
	if err != nil {
		h.writeFilterError(w, r, err)
		return
	}
	h.respond(w, r, h.kpis.PerformanceMetrics(f))
}

func (h *APIHandlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"message": "Bike Company Analytics API is running",
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
