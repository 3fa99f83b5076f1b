package notifications

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/heidicalls/voicemail-triage/internal/domain/providers"
)

// SimulatedSender logs alert deliveries instead of sending them. It is
// the default transport when no SMS gateway is configured.
type SimulatedSender struct {
	managerPhone string
}

// NewSimulatedSender creates a simulated alert sender
func NewSimulatedSender(managerPhone string) *SimulatedSender {
	return &SimulatedSender{managerPhone: managerPhone}
}

// NotifyManager logs the manager alert and always succeeds
func (s *SimulatedSender) NotifyManager(ctx context.Context, alert *providers.ManagerAlert) error {
	log.Warn().
		Str("recipient", s.managerPhone).
		Str("voicemail_id", alert.VoicemailID).
		Str("patient_phone", alert.PatientPhone).
		Int("urgency_level", alert.UrgencyLevel).
		Str("summary", alert.Summary).
		Msg("SIMULATED SMS alert to clinic manager")
	return nil
}

// CallPatient logs the voice alert and always succeeds
func (s *SimulatedSender) CallPatient(ctx context.Context, phone, script string) error {
	log.Warn().
		Str("recipient", phone).
		Str("script", script).
		Msg("SIMULATED voice alert to patient")
	return nil
}
