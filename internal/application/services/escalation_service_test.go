package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heidicalls/voicemail-triage/internal/application/services"
	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/domain/providers"
)

type stubAlertSender struct {
	managerAlerts []*providers.ManagerAlert
	patientCalls  []string
	failSMS       bool
	failVoice     bool
}

func (s *stubAlertSender) NotifyManager(ctx context.Context, alert *providers.ManagerAlert) error {
	if s.failSMS {
		return errors.New("sms gateway unavailable")
	}
	s.managerAlerts = append(s.managerAlerts, alert)
	return nil
}

func (s *stubAlertSender) CallPatient(ctx context.Context, phone, script string) error {
	if s.failVoice {
		return errors.New("voice gateway unavailable")
	}
	s.patientCalls = append(s.patientCalls, phone)
	return nil
}

func TestShouldEscalate(t *testing.T) {
	service := services.NewEscalationService(&stubAlertSender{}, "+61400000001", nil)

	cases := []struct {
		urgency  int
		intent   entities.Intent
		expected bool
	}{
		{5, entities.IntentOther, true},
		{5, entities.IntentEmergency, true},
		{4, entities.IntentEmergency, true},
		{4, entities.IntentPrescription, false},
		{3, entities.IntentEmergency, false},
		{1, entities.IntentBooking, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, service.ShouldEscalate(tc.urgency, tc.intent),
			"urgency %d intent %s", tc.urgency, tc.intent)
	}
}

func TestProcess_NotTriggered(t *testing.T) {
	sender := &stubAlertSender{}
	service := services.NewEscalationService(sender, "+61400000001", nil)

	result := service.Process(context.Background(), "vm_1", 3, entities.IntentBooking, "booking request", "0412345678")

	assert.False(t, result.Triggered)
	assert.Equal(t, entities.InterventionNone, result.InterventionStatus)
	assert.Empty(t, sender.managerAlerts)
	assert.Empty(t, sender.patientCalls)
}

func TestProcess_FullEscalation(t *testing.T) {
	sender := &stubAlertSender{}
	service := services.NewEscalationService(sender, "+61400000001", nil)

	result := service.Process(context.Background(), "vm_1", 5, entities.IntentEmergency, "chest pain reported", "0412345678")

	assert.True(t, result.Triggered)
	assert.Equal(t, entities.InterventionVoiceAlertSent, result.InterventionStatus)
	assert.Equal(t, "+61400000001", result.SMSSentTo)
	assert.Equal(t, []string{
		entities.ActionSMSAlertSentToManager,
		entities.ActionVoiceAlertSentToPatient,
	}, result.ActionsTaken)
	assert.NotEmpty(t, result.TimestampEscalated)
	assert.Contains(t, result.EmergencyScript, "000")

	assert.Len(t, sender.managerAlerts, 1)
	assert.Equal(t, "0412345678", sender.managerAlerts[0].PatientPhone)
	assert.Equal(t, []string{"0412345678"}, sender.patientCalls)
}

func TestProcess_NoPhoneSMSOnly(t *testing.T) {
	sender := &stubAlertSender{}
	service := services.NewEscalationService(sender, "+61400000001", nil)

	result := service.Process(context.Background(), "vm_1", 5, entities.IntentEmergency, "emergency without number", "")

	assert.True(t, result.Triggered)
	assert.Equal(t, entities.InterventionSMSAlertOnly, result.InterventionStatus)
	assert.Equal(t, []string{entities.ActionSMSAlertSentToManager}, result.ActionsTaken)
	assert.Equal(t, "Unknown", sender.managerAlerts[0].PatientPhone)
	assert.Empty(t, sender.patientCalls)
}

func TestProcess_DeliveryFailure(t *testing.T) {
	sender := &stubAlertSender{failSMS: true, failVoice: true}
	service := services.NewEscalationService(sender, "+61400000001", nil)

	result := service.Process(context.Background(), "vm_1", 5, entities.IntentEmergency, "everything down", "0412345678")

	assert.True(t, result.Triggered)
	assert.Equal(t, entities.InterventionEscalationFailed, result.InterventionStatus)
	assert.Empty(t, result.ActionsTaken)
}

func TestProcess_VoiceFailureFallsBackToSMSOnly(t *testing.T) {
	sender := &stubAlertSender{failVoice: true}
	service := services.NewEscalationService(sender, "+61400000001", nil)

	result := service.Process(context.Background(), "vm_1", 5, entities.IntentEmergency, "voice line down", "0412345678")

	assert.True(t, result.Triggered)
	assert.Equal(t, entities.InterventionSMSAlertOnly, result.InterventionStatus)
	assert.Equal(t, []string{entities.ActionSMSAlertSentToManager}, result.ActionsTaken)
}

func TestSendReminder(t *testing.T) {
	sender := &stubAlertSender{}
	service := services.NewEscalationService(sender, "+61400000001", nil)

	voicemail := &entities.TriagedVoicemail{
		VoicemailID: "vm_1",
		Summary:     "chest pain reported",
		Urgency:     entities.UrgencyInfo{Level: 5},
		ExtractedEntities: &entities.ExtractedEntities{
			CallbackNumber: "0412345678",
		},
	}

	err := service.SendReminder(context.Background(), voicemail)

	assert.NoError(t, err)
	assert.Len(t, sender.managerAlerts, 1)
	assert.Contains(t, sender.managerAlerts[0].Summary, "REMINDER")
	assert.Equal(t, "0412345678", sender.managerAlerts[0].PatientPhone)
}

func TestDeliveryHistory_EmptyWithoutLog(t *testing.T) {
	service := services.NewEscalationService(&stubAlertSender{}, "+61400000001", nil)

	entries, err := service.DeliveryHistory(context.Background(), "vm_1")

	assert.NoError(t, err)
	assert.Empty(t, entries)
}
