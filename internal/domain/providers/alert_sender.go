package providers

import (
	"context"
)

// ManagerAlert is the payload delivered to the on-call clinic manager
type ManagerAlert struct {
	VoicemailID  string
	PatientPhone string
	Summary      string
	UrgencyLevel int
}

// AlertSender delivers emergency escalation alerts. Implementations
// report delivery failure through the returned error; the escalation
// state machine decides the intervention status.
type AlertSender interface {
	// NotifyManager sends an alert to the clinic manager
	NotifyManager(ctx context.Context, alert *ManagerAlert) error

	// CallPatient places an automated voice alert to the patient
	CallPatient(ctx context.Context, phone, script string) error
}
