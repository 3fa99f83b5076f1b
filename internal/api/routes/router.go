package routes

import (
	"net/http"

	"github.com/heidicalls/voicemail-triage/internal/api/handlers"
	"github.com/heidicalls/voicemail-triage/internal/api/middleware"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	voicemailHandler *handlers.VoicemailHandler
	analyticsHandler *handlers.AnalyticsHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	voicemailHandler *handlers.VoicemailHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		voicemailHandler: voicemailHandler,
		analyticsHandler: analyticsHandler,
		cacheMiddleware:  cacheMiddleware,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Triage endpoints
	r.mux.HandleFunc("POST /api/voicemails/triage", r.voicemailHandler.TriageVoicemail)
	r.mux.HandleFunc("POST /api/voicemails/triage/batch", r.voicemailHandler.BatchTriage)

	// Voicemail workflow endpoints
	r.mux.HandleFunc("GET /api/voicemails", r.voicemailHandler.ListVoicemails)
	r.mux.HandleFunc("GET /api/voicemails/{id}", r.voicemailHandler.GetVoicemail)
	r.mux.HandleFunc("PATCH /api/voicemails/{id}", r.voicemailHandler.UpdateVoicemail)
	r.mux.HandleFunc("DELETE /api/voicemails/{id}", r.voicemailHandler.DeleteVoicemail)

	// Callback tracking endpoints
	r.mux.HandleFunc("POST /api/voicemails/{id}/callback", r.voicemailHandler.RecordCallback)
	r.mux.HandleFunc("GET /api/voicemails/callbacks/pending", r.voicemailHandler.ListPendingCallbacks)

	// Escalation workflow endpoints
	r.mux.HandleFunc("GET /api/voicemails/escalations/active", r.voicemailHandler.ListActiveEscalations)
	r.mux.HandleFunc("POST /api/voicemails/{id}/acknowledge-escalation", r.voicemailHandler.AcknowledgeEscalation)
	r.mux.HandleFunc("POST /api/voicemails/{id}/send-reminder", r.voicemailHandler.SendEscalationReminder)

	// Escalation alert delivery history
	r.mux.HandleFunc("GET /api/voicemails/{id}/alerts", r.voicemailHandler.ListAlertDeliveries)

	// Practice management system integration
	r.mux.HandleFunc("GET /api/voicemails/pms/search", r.voicemailHandler.SearchPMSPatients)
	r.mux.HandleFunc("POST /api/voicemails/{id}/link-pms", r.voicemailHandler.LinkPMS)
	r.mux.HandleFunc("POST /api/voicemails/{id}/create-appointment", r.voicemailHandler.CreatePMSAppointment)

	// Duplicate caller endpoints
	r.mux.HandleFunc("GET /api/voicemails/duplicates/by-phone/{hash}", r.voicemailHandler.ListDuplicatesByPhone)
	r.mux.HandleFunc("GET /api/voicemails/duplicates/summary", r.voicemailHandler.DuplicatesSummary)

	// Analytics endpoints
	r.mux.HandleFunc("GET /api/analytics/summary", r.analyticsHandler.GetSummary)
	r.mux.HandleFunc("GET /api/analytics/urgency-timeline", r.analyticsHandler.GetUrgencyTimeline)
	r.mux.HandleFunc("GET /api/analytics/staff-metrics", r.analyticsHandler.GetStaffMetrics)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
