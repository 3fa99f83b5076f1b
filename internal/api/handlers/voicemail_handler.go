package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/heidicalls/voicemail-triage/internal/application/services"
	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/domain/repositories"
	apperrors "github.com/heidicalls/voicemail-triage/pkg/errors"
)

const (
	maxPageSize = 100
	// Unacknowledged escalations older than this need a staff re-alert
	reAlertAfter = 15 * time.Minute
)

// VoicemailHandler handles voicemail-related HTTP requests
type VoicemailHandler struct {
	triageService     *services.TriageService
	escalationService *services.EscalationService
	pmsService        *services.PMSService
	voicemailRepo     repositories.VoicemailRepository
}

// NewVoicemailHandler creates a new voicemail handler
func NewVoicemailHandler(
	triageService *services.TriageService,
	escalationService *services.EscalationService,
	pmsService *services.PMSService,
	voicemailRepo repositories.VoicemailRepository,
) *VoicemailHandler {
	return &VoicemailHandler{
		triageService:     triageService,
		escalationService: escalationService,
		pmsService:        pmsService,
		voicemailRepo:     voicemailRepo,
	}
}

// TriageVoicemail handles POST /api/voicemails/triage
func (h *VoicemailHandler) TriageVoicemail(w http.ResponseWriter, r *http.Request) {
	var input entities.VoicemailInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.triageService.Triage(r.Context(), &input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

type batchTriageRequest struct {
	Voicemails []entities.VoicemailInput `json:"voicemails"`
}

type batchTriageError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BatchTriage handles POST /api/voicemails/triage/batch. Failures are
// collected per item, a bad transcript never aborts the batch.
func (h *VoicemailHandler) BatchTriage(w http.ResponseWriter, r *http.Request) {
	var req batchTriageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Voicemails) == 0 {
		respondWithError(w, http.StatusBadRequest, "voicemails is required")
		return
	}

	results := []*entities.TriagedVoicemail{}
	errors := []batchTriageError{}
	for i := range req.Voicemails {
		result, err := h.triageService.Triage(r.Context(), &req.Voicemails[i])
		if err != nil {
			errors = append(errors, batchTriageError{Index: i, Error: err.Error()})
			continue
		}
		results = append(results, result)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results":         results,
		"errors":          errors,
		"processed_count": len(results),
		"failed_count":    len(errors),
	})
}

// ListVoicemails handles GET /api/voicemails
func (h *VoicemailHandler) ListVoicemails(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.VoicemailFilter{
		Status:          query.Get("status"),
		Intent:          query.Get("intent"),
		UrgencyMin:      parseIntParam(query.Get("urgency_min"), 0),
		UrgencyMax:      parseIntParam(query.Get("urgency_max"), 0),
		AmbiguousOnly:   query.Get("ambiguous_only") == "true",
		Phone:           query.Get("phone"),
		Symptom:         query.Get("symptom"),
		Medication:      query.Get("medication"),
		Doctor:          query.Get("doctor"),
		HideOldActioned: query.Get("hide_old_actioned") != "false",
		SortBy:          query.Get("sort_by"),
		SortOrder:       query.Get("sort_order"),
		Page:            parseIntParam(query.Get("page"), 1),
		PageSize:        parseIntParam(query.Get("page_size"), 20),
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	if filter.Intent != "" && !entities.ValidIntent(filter.Intent) {
		respondWithError(w, http.StatusBadRequest, "unknown intent: "+filter.Intent)
		return
	}

	items, total, err := h.voicemailRepo.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"voicemails": items,
		"total":      total,
		"page":       filter.Page,
		"page_size":  filter.PageSize,
	})
}

// GetVoicemail handles GET /api/voicemails/{id}
func (h *VoicemailHandler) GetVoicemail(w http.ResponseWriter, r *http.Request) {
	voicemailID := r.PathValue("id")
	if voicemailID == "" {
		respondWithError(w, http.StatusBadRequest, "voicemail ID is required")
		return
	}

	voicemail, err := h.voicemailRepo.GetByID(r.Context(), voicemailID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, voicemail)
}

// UpdateVoicemail handles PATCH /api/voicemails/{id}
func (h *VoicemailHandler) UpdateVoicemail(w http.ResponseWriter, r *http.Request) {
	voicemailID := r.PathValue("id")
	if voicemailID == "" {
		respondWithError(w, http.StatusBadRequest, "voicemail ID is required")
		return
	}

	var req entities.UpdateVoicemailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	voicemail, err := h.voicemailRepo.GetByID(r.Context(), voicemailID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	applyUpdate(voicemail, &req)

	if err := h.voicemailRepo.Update(r.Context(), voicemail); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, voicemail)
}

// applyUpdate folds a partial update into the record. Callback status
// transitions stamp the matching timestamps.
func applyUpdate(v *entities.TriagedVoicemail, req *entities.UpdateVoicemailRequest) {
	now := time.Now().UTC()

	if req.Status != nil {
		v.Status = *req.Status
	}
	if req.AssignedTo != nil {
		v.AssignedTo = *req.AssignedTo
	}
	if req.Notes != nil {
		v.Notes = *req.Notes
	}
	if req.CallbackBy != nil {
		v.CallbackBy = *req.CallbackBy
	}
	if req.CallbackNotes != nil {
		v.CallbackNotes = *req.CallbackNotes
	}
	if req.CallbackStatus != nil {
		v.CallbackStatus = *req.CallbackStatus
		switch *req.CallbackStatus {
		case entities.CallbackAttempted, entities.CallbackNoAnswer:
			v.CallbackAttemptedAt = &now
		case entities.CallbackSuccessful, entities.CallbackLeftMessage, entities.CallbackWrongNumber:
			v.CallbackCompletedAt = &now
		}
	}
	if req.AcknowledgeEscalation != nil && *req.AcknowledgeEscalation {
		v.EscalationAcknowledged = true
		v.EscalationAcknowledgedAt = &now
		if req.AcknowledgedBy != nil {
			v.EscalationAcknowledgedBy = *req.AcknowledgedBy
		}
	}
}

// DeleteVoicemail handles DELETE /api/voicemails/{id}
func (h *VoicemailHandler) DeleteVoicemail(w http.ResponseWriter, r *http.Request) {
	voicemailID := r.PathValue("id")
	if voicemailID == "" {
		respondWithError(w, http.StatusBadRequest, "voicemail ID is required")
		return
	}

	if err := h.voicemailRepo.Delete(r.Context(), voicemailID); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"deleted": voicemailID})
}

// RecordCallback handles POST /api/voicemails/{id}/callback. A
// successful callback also marks the voicemail actioned.
func (h *VoicemailHandler) RecordCallback(w http.ResponseWriter, r *http.Request) {
	voicemailID := r.PathValue("id")
	if voicemailID == "" {
		respondWithError(w, http.StatusBadRequest, "voicemail ID is required")
		return
	}

	query := r.URL.Query()
	callbackStatus := entities.CallbackStatus(query.Get("callback_status"))
	switch callbackStatus {
	case entities.CallbackAttempted, entities.CallbackSuccessful, entities.CallbackNoAnswer,
		entities.CallbackLeftMessage, entities.CallbackWrongNumber:
	default:
		respondWithError(w, http.StatusBadRequest, "invalid callback_status")
		return
	}

	voicemail, err := h.voicemailRepo.GetByID(r.Context(), voicemailID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	now := time.Now().UTC()
	voicemail.CallbackStatus = callbackStatus
	voicemail.CallbackBy = query.Get("callback_by")
	if notes := query.Get("notes"); notes != "" {
		voicemail.CallbackNotes = notes
	}

	switch callbackStatus {
	case entities.CallbackAttempted, entities.CallbackNoAnswer:
		voicemail.CallbackAttemptedAt = &now
	default:
		voicemail.CallbackCompletedAt = &now
	}
	if callbackStatus == entities.CallbackSuccessful {
		voicemail.Status = entities.StatusActioned
	}

	if err := h.voicemailRepo.Update(r.Context(), voicemail); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, voicemail)
}

// ListPendingCallbacks handles GET /api/voicemails/callbacks/pending
func (h *VoicemailHandler) ListPendingCallbacks(w http.ResponseWriter, r *http.Request) {
	items, err := h.voicemailRepo.ListPendingCallbacks(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"callbacks": items,
		"count":     len(items),
	})
}

type activeEscalation struct {
	Voicemail     *entities.TriagedVoicemail `json:"voicemail"`
	MinutesSince  float64                    `json:"minutes_since"`
	NeedsReAlert  bool                       `json:"needs_re_alert"`
	ReminderCount int                        `json:"reminder_count"`
}

// ListActiveEscalations handles GET /api/voicemails/escalations/active
func (h *VoicemailHandler) ListActiveEscalations(w http.ResponseWriter, r *http.Request) {
	items, err := h.voicemailRepo.ListActiveEscalations(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	now := time.Now().UTC()
	escalations := make([]activeEscalation, 0, len(items))
	for _, v := range items {
		since := now.Sub(v.CreatedAt.UTC())
		escalations = append(escalations, activeEscalation{
			Voicemail:     v,
			MinutesSince:  since.Minutes(),
			NeedsReAlert:  since > reAlertAfter,
			ReminderCount: v.EscalationReminderCount,
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"escalations": escalations,
		"count":       len(escalations),
	})
}

// AcknowledgeEscalation handles POST /api/voicemails/{id}/acknowledge-escalation
func (h *VoicemailHandler) AcknowledgeEscalation(w http.ResponseWriter, r *http.Request) {
	voicemailID := r.PathValue("id")
	if voicemailID == "" {
		respondWithError(w, http.StatusBadRequest, "voicemail ID is required")
		return
	}

	voicemail, err := h.voicemailRepo.GetByID(r.Context(), voicemailID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if voicemail.Escalation == nil || !voicemail.Escalation.EscalationTriggered {
		respondWithError(w, http.StatusConflict, "voicemail has no active escalation")
		return
	}

	now := time.Now().UTC()
	voicemail.EscalationAcknowledged = true
	voicemail.EscalationAcknowledgedAt = &now
	voicemail.EscalationAcknowledgedBy = r.URL.Query().Get("acknowledged_by")

	if err := h.voicemailRepo.Update(r.Context(), voicemail); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, voicemail)
}

// SendEscalationReminder handles POST /api/voicemails/{id}/send-reminder
func (h *VoicemailHandler) SendEscalationReminder(w http.ResponseWriter, r *http.Request) {
	voicemailID := r.PathValue("id")
	if voicemailID == "" {
		respondWithError(w, http.StatusBadRequest, "voicemail ID is required")
		return
	}

	voicemail, err := h.voicemailRepo.GetByID(r.Context(), voicemailID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if voicemail.Escalation == nil || !voicemail.Escalation.EscalationTriggered {
		respondWithError(w, http.StatusConflict, "voicemail has no active escalation")
		return
	}
	if voicemail.EscalationAcknowledged {
		respondWithError(w, http.StatusConflict, "escalation already acknowledged")
		return
	}

	if err := h.escalationService.SendReminder(r.Context(), voicemail); err != nil {
		respondWithError(w, http.StatusBadGateway, "failed to send reminder")
		return
	}

	now := time.Now().UTC()
	voicemail.EscalationReminderCount++
	voicemail.EscalationLastReminderAt = &now

	if err := h.voicemailRepo.Update(r.Context(), voicemail); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"voicemail_id":   voicemail.VoicemailID,
		"reminder_count": voicemail.EscalationReminderCount,
	})
}

// ListDuplicatesByPhone handles GET /api/voicemails/duplicates/by-phone/{hash}
func (h *VoicemailHandler) ListDuplicatesByPhone(w http.ResponseWriter, r *http.Request) {
	phoneHash := r.PathValue("hash")
	if phoneHash == "" {
		respondWithError(w, http.StatusBadRequest, "phone hash is required")
		return
	}

	items, err := h.voicemailRepo.ListByPhoneHash(r.Context(), phoneHash)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"voicemails": items,
		"count":      len(items),
	})
}

type repeatCaller struct {
	PhoneHash    string   `json:"phone_hash"`
	CallCount    int      `json:"call_count"`
	VoicemailIDs []string `json:"voicemail_ids"`
	MaxUrgency   int      `json:"max_urgency"`
}

// DuplicatesSummary handles GET /api/voicemails/duplicates/summary. It
// groups voicemails by caller phone hash and reports repeat callers.
func (h *VoicemailHandler) DuplicatesSummary(w http.ResponseWriter, r *http.Request) {
	items, err := h.voicemailRepo.ListAll(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	groups := map[string]*repeatCaller{}
	for _, v := range items {
		if v.CallerPhoneHash == "" {
			continue
		}
		group, ok := groups[v.CallerPhoneHash]
		if !ok {
			group = &repeatCaller{PhoneHash: v.CallerPhoneHash}
			groups[v.CallerPhoneHash] = group
		}
		group.CallCount++
		group.VoicemailIDs = append(group.VoicemailIDs, v.VoicemailID)
		if v.Urgency.Level > group.MaxUrgency {
			group.MaxUrgency = v.Urgency.Level
		}
	}

	repeatCallers := []*repeatCaller{}
	for _, group := range groups {
		if group.CallCount >= 2 {
			repeatCallers = append(repeatCallers, group)
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"repeat_callers": repeatCallers,
		"count":          len(repeatCallers),
	})
}

// SearchPMSPatients handles GET /api/voicemails/pms/search. An unknown
// PMS system is reported in the response body rather than failing the
// request, so the frontend can show the message inline.
func (h *VoicemailHandler) SearchPMSPatients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pmsSystem := query.Get("pms_system")
	if pmsSystem == "" {
		respondWithError(w, http.StatusBadRequest, "pms_system is required")
		return
	}

	if !h.pmsService.KnownSystem(pmsSystem) {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"error":    "unknown PMS system: " + pmsSystem,
			"patients": []entities.PMSPatient{},
			"count":    0,
		})
		return
	}

	patients, err := h.pmsService.SearchPatients(pmsSystem, query.Get("phone"), query.Get("name"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"pms_system": pmsSystem,
		"patients":   patients,
		"count":      len(patients),
	})
}

// LinkPMS handles POST /api/voicemails/{id}/link-pms
func (h *VoicemailHandler) LinkPMS(w http.ResponseWriter, r *http.Request) {
	voicemailID := r.PathValue("id")
	if voicemailID == "" {
		respondWithError(w, http.StatusBadRequest, "voicemail ID is required")
		return
	}

	query := r.URL.Query()
	voicemail, err := h.pmsService.Link(r.Context(), voicemailID, query.Get("pms_system"), query.Get("pms_patient_id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, voicemail)
}

// CreatePMSAppointment handles POST /api/voicemails/{id}/create-appointment
func (h *VoicemailHandler) CreatePMSAppointment(w http.ResponseWriter, r *http.Request) {
	voicemailID := r.PathValue("id")
	if voicemailID == "" {
		respondWithError(w, http.StatusBadRequest, "voicemail ID is required")
		return
	}

	query := r.URL.Query()
	appointment, err := h.pmsService.CreateAppointment(
		r.Context(),
		voicemailID,
		query.Get("appointment_type"),
		query.Get("preferred_date"),
		query.Get("notes"),
	)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, appointment)
}

// ListAlertDeliveries handles GET /api/voicemails/{id}/alerts. It
// returns the recorded escalation alert deliveries for one voicemail.
func (h *VoicemailHandler) ListAlertDeliveries(w http.ResponseWriter, r *http.Request) {
	voicemailID := r.PathValue("id")
	if voicemailID == "" {
		respondWithError(w, http.StatusBadRequest, "voicemail ID is required")
		return
	}

	if _, err := h.voicemailRepo.GetByID(r.Context(), voicemailID); err != nil {
		respondWithAppError(w, err)
		return
	}

	entries, err := h.escalationService.DeliveryHistory(r.Context(), voicemailID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"voicemail_id": voicemailID,
		"alerts":       entries,
		"count":        len(entries),
	})
}

func parseIntParam(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
		case apperrors.ErrorTypeExternal:
			respondWithError(w, http.StatusBadGateway, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
