package entities

// Intervention statuses produced by the escalation state machine
const (
	InterventionVoiceAlertSent   = "Voice_Alert_Sent"
	InterventionSMSAlertOnly     = "SMS_Alert_Only"
	InterventionEscalationFailed = "Escalation_Failed"
	InterventionNone             = "None"
)

// Escalation action tags
const (
	ActionSMSAlertSentToManager   = "SMS_Alert_Sent_To_Manager"
	ActionVoiceAlertSentToPatient = "Voice_Alert_Sent_To_Patient"
)

// EscalationResult is the outcome of a single escalation attempt
type EscalationResult struct {
	Triggered          bool     `json:"escalation_triggered"`
	InterventionStatus string   `json:"intervention_status"`
	TimestampEscalated string   `json:"timestamp_escalated,omitempty"`
	EmergencyScript    string   `json:"emergency_script,omitempty"`
	SMSSentTo          string   `json:"sms_sent_to,omitempty"`
	ActionsTaken       []string `json:"actions_taken"`
}

// EscalationInfo is the escalation record attached to a triaged voicemail
type EscalationInfo struct {
	EscalationTriggered bool     `json:"escalation_triggered"`
	EmergencyAlertSent  bool     `json:"emergency_alert_sent"`
	InterventionStatus  string   `json:"intervention_status,omitempty"`
	TimestampEscalated  string   `json:"timestamp_escalated,omitempty"`
	EmergencyScript     string   `json:"emergency_script,omitempty"`
	SMSSentTo           string   `json:"sms_sent_to,omitempty"`
	ActionsTaken        []string `json:"actions_taken"`
}
