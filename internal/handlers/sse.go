package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bike-analytics/internal/services"
	"github.com/starfederation/datastar-go/datastar"
)

const sseTopProducts = 10

// SSEHandlers push current aggregate snapshots to datastar-driven dashboard
// clients as signal patches, so panels can refresh without polling the REST
// endpoints one by one.
type SSEHandlers struct {
	analytics *services.Analytics
	kpis      *services.KPIService
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, kpis *services.KPIService, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		kpis:      kpis,
		logger:    logger,
	}
}

func (h *SSEHandlers) patchSignals(w http.ResponseWriter, sse *datastar.ServerSentEventGenerator, signals map[string]any) {
	data, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal sse signals", "error", err)
		return
	}
	sse.PatchSignals(data)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	h.patchSignals(w, sse, map[string]any{
		"summary":      h.analytics.SummaryStats(nil),
		"revenueTrend": h.analytics.RevenueByMonth(nil),
		"kpis":         h.kpis.MainKPIs(nil),
	})
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	h.patchSignals(w, sse, map[string]any{
		"summary":      h.analytics.SummaryStats(nil),
		"revenueTrend": h.analytics.RevenueByMonth(nil),
		"topProducts":  h.analytics.TopProducts(nil, sseTopProducts),
		"geographic":   h.analytics.GeographicPerformance(nil),
		"segments":     h.analytics.CustomerSegmentation(nil),
		"kpis":         h.kpis.MainKPIs(nil),
	})
}
