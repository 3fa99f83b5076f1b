package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/domain/providers"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/notifications"
)

// Emergency voice alert scripts. The bilingual form covers the clinic
// group's two most common patient languages.
const (
	EmergencyScriptEN = `We have detected that your symptoms may require emergency medical attention.
Please hang up immediately and call 000, or proceed to your nearest emergency department.
Clinic staff have been notified of your situation.`

	EmergencyScriptZH = `我們偵測到您的症狀可能需要緊急醫療協助。
請立即掛斷電話並撥打 000，或前往最近的急診中心。
診所人員已收到您的通知。`

	EmergencyScriptBilingual = "[ENGLISH]\n" + EmergencyScriptEN + "\n\n[中文]\n" + EmergencyScriptZH
)

// EscalationService handles critical voicemails: it notifies the clinic
// manager and places an automated voice alert to the patient. Each
// escalation fires exactly once; re-alerts are explicit staff actions.
type EscalationService struct {
	sender       providers.AlertSender
	managerPhone string
	alertLog     *notifications.AlertLog
}

// NewEscalationService creates an escalation service. The alert log is
// optional; without it deliveries are not persisted.
func NewEscalationService(sender providers.AlertSender, managerPhone string, alertLog *notifications.AlertLog) *EscalationService {
	return &EscalationService{
		sender:       sender,
		managerPhone: managerPhone,
		alertLog:     alertLog,
	}
}

// ShouldEscalate reports whether a voicemail requires emergency
// escalation: urgency 5, or urgency 4 with Emergency intent
func (s *EscalationService) ShouldEscalate(urgencyLevel int, intent entities.Intent) bool {
	if urgencyLevel >= 5 {
		return true
	}
	if urgencyLevel >= 4 && intent == entities.IntentEmergency {
		return true
	}
	return false
}

// Process runs the escalation state machine for one voicemail. The
// manager notification is always attempted; the patient voice alert
// only when a callback number is known. Delivery failures map to the
// intervention status, they never abort the triage pipeline.
func (s *EscalationService) Process(ctx context.Context, voicemailID string, urgencyLevel int, intent entities.Intent, summary, patientPhone string) *entities.EscalationResult {
	if !s.ShouldEscalate(urgencyLevel, intent) {
		return &entities.EscalationResult{
			Triggered:          false,
			InterventionStatus: entities.InterventionNone,
			ActionsTaken:       []string{},
		}
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	actionsTaken := []string{}

	alert := &providers.ManagerAlert{
		VoicemailID:  voicemailID,
		PatientPhone: patientPhone,
		Summary:      summary,
		UrgencyLevel: urgencyLevel,
	}
	if alert.PatientPhone == "" {
		alert.PatientPhone = "Unknown"
	}

	smsSent := false
	if err := s.sender.NotifyManager(ctx, alert); err != nil {
		log.Error().Err(err).Str("voicemail_id", voicemailID).Msg("failed to notify manager")
		s.recordDelivery(ctx, voicemailID, notifications.AlertTypeSMS, s.managerPhone, "failed")
	} else {
		smsSent = true
		actionsTaken = append(actionsTaken, entities.ActionSMSAlertSentToManager)
		s.recordDelivery(ctx, voicemailID, notifications.AlertTypeSMS, s.managerPhone, "sent")
	}

	voiceSent := false
	if patientPhone != "" {
		if err := s.sender.CallPatient(ctx, patientPhone, EmergencyScriptBilingual); err != nil {
			log.Error().Err(err).Str("voicemail_id", voicemailID).Msg("failed to place patient voice alert")
			s.recordDelivery(ctx, voicemailID, notifications.AlertTypeVoice, patientPhone, "failed")
		} else {
			voiceSent = true
			actionsTaken = append(actionsTaken, entities.ActionVoiceAlertSentToPatient)
			s.recordDelivery(ctx, voicemailID, notifications.AlertTypeVoice, patientPhone, "sent")
		}
	}

	var status string
	switch {
	case voiceSent && smsSent:
		status = entities.InterventionVoiceAlertSent
	case smsSent:
		status = entities.InterventionSMSAlertOnly
	default:
		status = entities.InterventionEscalationFailed
	}

	return &entities.EscalationResult{
		Triggered:          true,
		InterventionStatus: status,
		TimestampEscalated: timestamp,
		EmergencyScript:    EmergencyScriptBilingual,
		SMSSentTo:          s.managerPhone,
		ActionsTaken:       actionsTaken,
	}
}

// SendReminder re-alerts the manager about an unacknowledged escalation
func (s *EscalationService) SendReminder(ctx context.Context, voicemail *entities.TriagedVoicemail) error {
	alert := &providers.ManagerAlert{
		VoicemailID:  voicemail.VoicemailID,
		PatientPhone: "Unknown",
		Summary:      "REMINDER: unacknowledged escalation. " + voicemail.Summary,
		UrgencyLevel: voicemail.Urgency.Level,
	}
	if voicemail.ExtractedEntities != nil && voicemail.ExtractedEntities.CallbackNumber != "" {
		alert.PatientPhone = voicemail.ExtractedEntities.CallbackNumber
	}

	if err := s.sender.NotifyManager(ctx, alert); err != nil {
		s.recordDelivery(ctx, voicemail.VoicemailID, notifications.AlertTypeSMS, s.managerPhone, "failed")
		return err
	}
	s.recordDelivery(ctx, voicemail.VoicemailID, notifications.AlertTypeSMS, s.managerPhone, "sent")
	return nil
}

// DeliveryHistory returns the recorded alert deliveries for a
// voicemail, newest first. Without an alert log there is no history.
func (s *EscalationService) DeliveryHistory(ctx context.Context, voicemailID string) ([]notifications.AlertEntry, error) {
	if s.alertLog == nil {
		return []notifications.AlertEntry{}, nil
	}
	return s.alertLog.ListByVoicemail(ctx, voicemailID)
}

func (s *EscalationService) recordDelivery(ctx context.Context, voicemailID, alertType, recipient, status string) {
	if s.alertLog == nil {
		return
	}
	if err := s.alertLog.Record(ctx, voicemailID, alertType, recipient, status); err != nil {
		log.Warn().Err(err).Str("voicemail_id", voicemailID).Msg("failed to record escalation delivery")
	}
}
