package handlers

import (
	"net/http"

	"github.com/heidicalls/voicemail-triage/internal/application/services"
)

// AnalyticsHandler handles dashboard analytics HTTP requests
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetSummary handles GET /api/analytics/summary
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyticsService.Summary(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// GetStaffMetrics handles GET /api/analytics/staff-metrics
func (h *AnalyticsHandler) GetStaffMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, unassigned, err := h.analyticsService.StaffMetrics(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"staff_metrics":    metrics,
		"unassigned_count": unassigned,
	})
}

// GetUrgencyTimeline handles GET /api/analytics/urgency-timeline
func (h *AnalyticsHandler) GetUrgencyTimeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := h.analyticsService.UrgencyTimeline(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"timeline": timeline,
	})
}
