package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heidicalls/voicemail-triage/internal/adapters/classifier"
	"github.com/heidicalls/voicemail-triage/internal/adapters/memory"
	"github.com/heidicalls/voicemail-triage/internal/api/handlers"
	"github.com/heidicalls/voicemail-triage/internal/api/routes"
	"github.com/heidicalls/voicemail-triage/internal/application/services"
	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/domain/providers"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/observability"
)

type silentSender struct{}

func (silentSender) NotifyManager(ctx context.Context, alert *providers.ManagerAlert) error {
	return nil
}

func (silentSender) CallPatient(ctx context.Context, phone, script string) error {
	return nil
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	directory := services.DefaultClinicDirectory()
	store := memory.NewVoicemailStore()
	escalation := services.NewEscalationService(silentSender{}, "+61400000001", nil)
	triage := services.NewTriageService(
		classifier.NewRuleBased(),
		services.NewRedactionService(),
		services.NewExtractionService(directory),
		services.NewRoutingService(directory),
		escalation,
		store,
	)
	analytics := services.NewAnalyticsService(store, nil)

	metrics, err := observability.InitMetrics()
	assert.NoError(t, err)

	router := routes.NewRouter(
		handlers.NewVoicemailHandler(triage, escalation, services.NewPMSService(store), store),
		handlers.NewAnalyticsHandler(analytics),
		nil,
		metrics,
	)
	return router.SetupRoutes()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	var decoded map[string]interface{}
	if recorder.Body.Len() > 0 {
		_ = json.Unmarshal(recorder.Body.Bytes(), &decoded)
	}
	return recorder, decoded
}

func triageOne(t *testing.T, handler http.Handler, transcript string) string {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"transcript": transcript})
	assert.NoError(t, err)

	recorder, body := doJSON(t, handler, http.MethodPost, "/api/voicemails/triage", string(payload))
	assert.Equal(t, http.StatusCreated, recorder.Code)

	id, _ := body["voicemail_id"].(string)
	assert.NotEmpty(t, id)
	return id
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", recorder.Body.String())
}

func TestTriageEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	recorder, body := doJSON(t, handler, http.MethodPost, "/api/voicemails/triage",
		`{"transcript": "I'm having chest pain, call me on 0412 345 678"}`)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, string(entities.IntentEmergency), body["intent"])
	assert.NotContains(t, body["redacted_transcript"], "0412")
}

func TestTriageEndpoint_EmptyTranscript(t *testing.T) {
	handler := newTestHandler(t)

	recorder, body := doJSON(t, handler, http.MethodPost, "/api/voicemails/triage", `{"transcript": ""}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, body["error"], "transcript")
}

func TestTriageEndpoint_MalformedBody(t *testing.T) {
	handler := newTestHandler(t)

	recorder, _ := doJSON(t, handler, http.MethodPost, "/api/voicemails/triage", `{not json`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestBatchTriageEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	recorder, body := doJSON(t, handler, http.MethodPost, "/api/voicemails/triage/batch",
		`{"voicemails": [
			{"transcript": "I need a refill on my medication"},
			{"transcript": ""},
			{"transcript": "Can I book an appointment"}
		]}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(2), body["processed_count"])
	assert.Equal(t, float64(1), body["failed_count"])
}

func TestGetVoicemail_NotFound(t *testing.T) {
	handler := newTestHandler(t)

	recorder, _ := doJSON(t, handler, http.MethodGet, "/api/voicemails/vm_missing", "")

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetVoicemail(t *testing.T) {
	handler := newTestHandler(t)
	id := triageOne(t, handler, "Just calling to book an appointment at the harbour clinic")

	recorder, body := doJSON(t, handler, http.MethodGet, "/api/voicemails/"+id, "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, id, body["voicemail_id"])
}

func TestListVoicemails_UrgencyFilter(t *testing.T) {
	handler := newTestHandler(t)
	triageOne(t, handler, "I'm having chest pain, please help")
	triageOne(t, handler, "Can I book a checkup next week")

	recorder, body := doJSON(t, handler, http.MethodGet, "/api/voicemails?urgency_min=5", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), body["total"])
}

func TestListVoicemails_UnknownIntentRejected(t *testing.T) {
	handler := newTestHandler(t)

	recorder, _ := doJSON(t, handler, http.MethodGet, "/api/voicemails?intent=Gossip", "")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateVoicemail_CallbackTimestamps(t *testing.T) {
	handler := newTestHandler(t)
	id := triageOne(t, handler, "Please call me about my test results")

	recorder, body := doJSON(t, handler, http.MethodPatch, "/api/voicemails/"+id,
		`{"callback_status": "attempted", "callback_by": "nurse_amy"}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "attempted", body["callback_status"])
	assert.NotNil(t, body["callback_attempted_at"])
	assert.Equal(t, "nurse_amy", body["callback_by"])
}

func TestRecordCallback_SuccessfulMarksActioned(t *testing.T) {
	handler := newTestHandler(t)
	id := triageOne(t, handler, "Please call me about my test results")

	recorder, body := doJSON(t, handler, http.MethodPost,
		"/api/voicemails/"+id+"/callback?callback_status=successful&callback_by=nurse_amy", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, string(entities.StatusActioned), body["status"])
	assert.Equal(t, string(entities.CallbackSuccessful), body["callback_status"])
	assert.NotNil(t, body["callback_completed_at"])
}

func TestRecordCallback_InvalidStatus(t *testing.T) {
	handler := newTestHandler(t)
	id := triageOne(t, handler, "Please call me about my test results")

	recorder, _ := doJSON(t, handler, http.MethodPost,
		"/api/voicemails/"+id+"/callback?callback_status=teleported", "")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPendingCallbacks(t *testing.T) {
	handler := newTestHandler(t)
	triageOne(t, handler, "Please call me about my test results")

	recorder, body := doJSON(t, handler, http.MethodGet, "/api/voicemails/callbacks/pending", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestEscalationWorkflow(t *testing.T) {
	handler := newTestHandler(t)
	id := triageOne(t, handler, "I'm having severe chest pain, call me on 0412 345 678")

	recorder, body := doJSON(t, handler, http.MethodGet, "/api/voicemails/escalations/active", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), body["count"])

	recorder, _ = doJSON(t, handler, http.MethodPost,
		"/api/voicemails/"+id+"/send-reminder", "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, body = doJSON(t, handler, http.MethodPost,
		"/api/voicemails/"+id+"/acknowledge-escalation?acknowledged_by=dr_chen", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, body["escalation_acknowledged"])
	assert.Equal(t, "dr_chen", body["escalation_acknowledged_by"])

	// acknowledged escalations leave the active list and refuse reminders
	recorder, body = doJSON(t, handler, http.MethodGet, "/api/voicemails/escalations/active", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(0), body["count"])

	recorder, _ = doJSON(t, handler, http.MethodPost,
		"/api/voicemails/"+id+"/send-reminder", "")
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestAcknowledgeEscalation_NoEscalation(t *testing.T) {
	handler := newTestHandler(t)
	id := triageOne(t, handler, "Can I book a checkup next week")

	recorder, _ := doJSON(t, handler, http.MethodPost,
		"/api/voicemails/"+id+"/acknowledge-escalation", "")

	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestDuplicatesSummary(t *testing.T) {
	handler := newTestHandler(t)
	triageOne(t, handler, "Please call me back on 0412 345 678 about my results")
	triageOne(t, handler, "Calling again on 0412 345 678, still waiting")
	triageOne(t, handler, "Different caller on 0498 765 432")

	recorder, body := doJSON(t, handler, http.MethodGet, "/api/voicemails/duplicates/summary", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), body["count"])

	repeatCallers := body["repeat_callers"].([]interface{})
	group := repeatCallers[0].(map[string]interface{})
	assert.Equal(t, float64(2), group["call_count"])
}

func TestDeleteVoicemail(t *testing.T) {
	handler := newTestHandler(t)
	id := triageOne(t, handler, "Can I book a checkup next week")

	recorder, _ := doJSON(t, handler, http.MethodDelete, "/api/voicemails/"+id, "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, _ = doJSON(t, handler, http.MethodGet, "/api/voicemails/"+id, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestPMSSearch_ByPhone(t *testing.T) {
	handler := newTestHandler(t)

	recorder, body := doJSON(t, handler, http.MethodGet,
		"/api/voicemails/pms/search?pms_system=best_practice&phone=0412345678", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), body["count"])

	patients := body["patients"].([]interface{})
	patient := patients[0].(map[string]interface{})
	assert.Equal(t, "BP-001", patient["patient_id"])
	assert.Equal(t, "phone", patient["match_type"])
}

func TestPMSSearch_UnknownSystemReportedInBody(t *testing.T) {
	handler := newTestHandler(t)

	recorder, body := doJSON(t, handler, http.MethodGet,
		"/api/voicemails/pms/search?pms_system=genie&name=smith", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, body["error"], "genie")
	assert.Empty(t, body["patients"])
}

func TestPMSSearch_MissingSystem(t *testing.T) {
	handler := newTestHandler(t)

	recorder, _ := doJSON(t, handler, http.MethodGet, "/api/voicemails/pms/search?name=smith", "")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCreateAppointment_RequiresLink(t *testing.T) {
	handler := newTestHandler(t)
	id := triageOne(t, handler, "Can I book a checkup next week")

	recorder, _ := doJSON(t, handler, http.MethodPost,
		"/api/voicemails/"+id+"/create-appointment", "")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPMSLinkAndAppointmentFlow(t *testing.T) {
	handler := newTestHandler(t)
	id := triageOne(t, handler, "Hi, it's John Smith, I'd like to book an appointment")

	recorder, body := doJSON(t, handler, http.MethodPost,
		"/api/voicemails/"+id+"/link-pms?pms_system=cliniko&pms_patient_id=CL-001", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, body["pms_linked"])
	assert.Equal(t, "cliniko", body["pms_system"])
	assert.NotNil(t, body["pms_last_sync"])

	recorder, body = doJSON(t, handler, http.MethodPost,
		"/api/voicemails/"+id+"/create-appointment?preferred_date=2026-09-04", "")
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "General Consultation", body["appointment_type"])
	assert.Equal(t, "CL-001", body["pms_patient_id"])
	assert.Equal(t, "requested", body["status"])

	appointmentID, _ := body["appointment_id"].(string)
	assert.Equal(t, "APT-"+id[len(id)-8:], appointmentID)

	recorder, body = doJSON(t, handler, http.MethodGet, "/api/voicemails/"+id, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, appointmentID, body["pms_appointment_id"])
}

func TestPMSLink_UnknownSystemRejected(t *testing.T) {
	handler := newTestHandler(t)
	id := triageOne(t, handler, "Can I book a checkup next week")

	recorder, _ := doJSON(t, handler, http.MethodPost,
		"/api/voicemails/"+id+"/link-pms?pms_system=genie&pms_patient_id=GN-001", "")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAlertDeliveries_UnknownVoicemail(t *testing.T) {
	handler := newTestHandler(t)

	recorder, _ := doJSON(t, handler, http.MethodGet, "/api/voicemails/vm_missing/alerts", "")

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAlertDeliveries_EmptyWithoutLog(t *testing.T) {
	handler := newTestHandler(t)
	id := triageOne(t, handler, "I'm having severe chest pain, call me on 0412 345 678")

	recorder, body := doJSON(t, handler, http.MethodGet, "/api/voicemails/"+id+"/alerts", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, id, body["voicemail_id"])
	assert.Equal(t, float64(0), body["count"])
}

func TestStaffMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	assigned := triageOne(t, handler, "Please call me about my test results")
	triageOne(t, handler, "Can I book a checkup next week")

	recorder, _ := doJSON(t, handler, http.MethodPatch, "/api/voicemails/"+assigned,
		`{"assigned_to": "nurse_amy", "status": "actioned"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, body := doJSON(t, handler, http.MethodGet, "/api/analytics/staff-metrics", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), body["unassigned_count"])

	staff := body["staff_metrics"].(map[string]interface{})
	amy := staff["nurse_amy"].(map[string]interface{})
	assert.Equal(t, float64(1), amy["total"])
	assert.Equal(t, float64(1), amy["actioned"])
	assert.Equal(t, float64(0), amy["pending"])
}

func TestAnalyticsSummaryEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	triageOne(t, handler, "I'm having chest pain, please help")

	recorder, body := doJSON(t, handler, http.MethodGet, "/api/analytics/summary", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), body["total_voicemails"])

	urgency := body["urgency_distribution"].(map[string]interface{})
	assert.Equal(t, float64(1), urgency["critical"])
}

func TestUrgencyTimelineEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	recorder, body := doJSON(t, handler, http.MethodGet, "/api/analytics/urgency-timeline", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	timeline := body["timeline"].([]interface{})
	assert.Len(t, timeline, 25)
}
