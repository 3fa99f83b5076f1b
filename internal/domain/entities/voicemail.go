package entities

import (
	"time"
)

// VoicemailStatus represents the workflow state of a triaged voicemail
type VoicemailStatus string

const (
	StatusPending   VoicemailStatus = "pending"
	StatusProcessed VoicemailStatus = "processed"
	StatusActioned  VoicemailStatus = "actioned"
	StatusArchived  VoicemailStatus = "archived"
)

// CallbackStatus tracks the state of a staff callback attempt
type CallbackStatus string

const (
	CallbackPending     CallbackStatus = "pending"
	CallbackAttempted   CallbackStatus = "attempted"
	CallbackSuccessful  CallbackStatus = "successful"
	CallbackNoAnswer    CallbackStatus = "no_answer"
	CallbackLeftMessage CallbackStatus = "left_message"
	CallbackWrongNumber CallbackStatus = "wrong_number"
)

// VoicemailInput is a new voicemail submission
type VoicemailInput struct {
	Transcript        string     `json:"transcript"`
	CallerPhone       string     `json:"caller_phone,omitempty"`
	CallTimestamp     *time.Time `json:"call_timestamp,omitempty"`
	DurationSeconds   *int       `json:"duration_seconds,omitempty"`
	AudioFileURL      string     `json:"audio_file_url,omitempty"`
	AudioQualityScore *float64   `json:"audio_quality_score,omitempty"`
}

// LanguageInfo carries language detection results and interpreter requirements
type LanguageInfo struct {
	Detected            string `json:"detected"`
	Code                string `json:"code,omitempty"`
	RequiresInterpreter bool   `json:"requires_interpreter"`
}

// UrgencyInfo is the urgency classification with reasoning and confidence
type UrgencyInfo struct {
	Level      int     `json:"level"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// UIState holds display hints for frontend rendering
type UIState struct {
	IsAmbiguous          bool   `json:"is_ambiguous"`
	NeedsManualListening bool   `json:"needs_manual_listening"`
	HighlightUrgent      bool   `json:"highlight_urgent"`
	TimeSinceCall        string `json:"time_since_call,omitempty"`
}

// TriagedVoicemail is the core output of the triage pipeline
type TriagedVoicemail struct {
	VoicemailID string `json:"voicemail_id" db:"voicemail_id"`

	Language     string        `json:"language" db:"language"`
	LanguageInfo *LanguageInfo `json:"language_info,omitempty" db:"-"`

	Urgency    UrgencyInfo `json:"urgency" db:"-"`
	Intent     Intent      `json:"intent" db:"intent"`
	Summary    string      `json:"summary" db:"summary"`
	ActionItem string      `json:"action_item" db:"action_item"`

	ExtractedEntities *ExtractedEntities `json:"extracted_entities,omitempty" db:"-"`

	LocationInfo *LocationInfo     `json:"location_info,omitempty" db:"-"`
	PatientMatch *PatientMatchInfo `json:"patient_match,omitempty" db:"-"`

	UIState *UIState `json:"ui_state,omitempty" db:"-"`

	Escalation *EscalationInfo `json:"escalation,omitempty" db:"-"`

	AudioFileURL string `json:"audio_file_url,omitempty" db:"audio_file_url"`

	IsPIISafe           bool   `json:"is_pii_safe" db:"is_pii_safe"`
	RedactedTranscript  string `json:"redacted_transcript,omitempty" db:"redacted_transcript"`
	CallerPhoneRedacted string `json:"caller_phone_redacted,omitempty" db:"caller_phone_redacted"`

	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
	Status      VoicemailStatus `json:"status" db:"status"`
	AssignedTo  string          `json:"assigned_to,omitempty" db:"assigned_to"`
	Notes       string          `json:"notes,omitempty" db:"notes"`

	CallbackStatus      CallbackStatus `json:"callback_status,omitempty" db:"callback_status"`
	CallbackAttemptedAt *time.Time     `json:"callback_attempted_at,omitempty" db:"callback_attempted_at"`
	CallbackCompletedAt *time.Time     `json:"callback_completed_at,omitempty" db:"callback_completed_at"`
	CallbackBy          string         `json:"callback_by,omitempty" db:"callback_by"`
	CallbackNotes       string         `json:"callback_notes,omitempty" db:"callback_notes"`

	CallerPhoneHash     string   `json:"caller_phone_hash,omitempty" db:"caller_phone_hash"`
	RelatedVoicemailIDs []string `json:"related_voicemail_ids,omitempty" db:"-"`
	CallCountToday      int      `json:"call_count_today" db:"call_count_today"`
	IsRepeatCaller      bool     `json:"is_repeat_caller" db:"is_repeat_caller"`

	EscalationAcknowledged   bool       `json:"escalation_acknowledged" db:"escalation_acknowledged"`
	EscalationAcknowledgedAt *time.Time `json:"escalation_acknowledged_at,omitempty" db:"escalation_acknowledged_at"`
	EscalationAcknowledgedBy string     `json:"escalation_acknowledged_by,omitempty" db:"escalation_acknowledged_by"`
	EscalationReminderCount  int        `json:"escalation_reminder_count" db:"escalation_reminder_count"`
	EscalationLastReminderAt *time.Time `json:"escalation_last_reminder_at,omitempty" db:"escalation_last_reminder_at"`

	PMSSystem        string     `json:"pms_system,omitempty" db:"pms_system"`
	PMSPatientID     string     `json:"pms_patient_id,omitempty" db:"pms_patient_id"`
	PMSLinked        bool       `json:"pms_linked" db:"pms_linked"`
	PMSLastSync      *time.Time `json:"pms_last_sync,omitempty" db:"pms_last_sync"`
	PMSAppointmentID string     `json:"pms_appointment_id,omitempty" db:"pms_appointment_id"`
}

// PMSPatient is a patient record surfaced from a practice management system
type PMSPatient struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	DOB       string `json:"dob"`
	Phone     string `json:"phone"`
	MatchType string `json:"match_type,omitempty"`
}

// PMSAppointment is an appointment request raised against a linked
// practice management system record
type PMSAppointment struct {
	AppointmentID   string    `json:"appointment_id"`
	VoicemailID     string    `json:"voicemail_id"`
	PMSSystem       string    `json:"pms_system"`
	PMSPatientID    string    `json:"pms_patient_id"`
	AppointmentType string    `json:"appointment_type"`
	PreferredDate   string    `json:"preferred_date,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// UpdateVoicemailRequest carries partial updates for a voicemail record
type UpdateVoicemailRequest struct {
	Status     *VoicemailStatus `json:"status,omitempty"`
	AssignedTo *string          `json:"assigned_to,omitempty"`
	Notes      *string          `json:"notes,omitempty"`

	CallbackStatus *CallbackStatus `json:"callback_status,omitempty"`
	CallbackBy     *string         `json:"callback_by,omitempty"`
	CallbackNotes  *string         `json:"callback_notes,omitempty"`

	AcknowledgeEscalation *bool   `json:"acknowledge_escalation,omitempty"`
	AcknowledgedBy        *string `json:"acknowledged_by,omitempty"`
}

// AnalyticsSummary holds aggregate dashboard metrics
type AnalyticsSummary struct {
	TotalVoicemails      int            `json:"total_voicemails"`
	PendingCount         int            `json:"pending_count"`
	ProcessedToday       int            `json:"processed_today"`
	UrgencyDistribution  map[string]int `json:"urgency_distribution"`
	IntentDistribution   map[string]int `json:"intent_distribution"`
	AvgProcessingTimeMs  float64        `json:"avg_processing_time_ms"`
	LanguageDistribution map[string]int `json:"language_distribution"`
	AmbiguousCount       int            `json:"ambiguous_count"`
	LowConfidenceCount   int            `json:"low_confidence_count"`
}
