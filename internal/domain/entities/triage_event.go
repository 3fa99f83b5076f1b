package entities

import (
	"time"
)

// Triage event types published to the event bus
const (
	TriageEventProcessed = "triage.processed"
	TriageEventEscalated = "triage.escalated"
)

// TriageEvent is the payload published for real-time dashboard consumers
type TriageEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	VoicemailID  string    `json:"voicemail_id"`
	UrgencyLevel int       `json:"urgency_level"`
	Intent       Intent    `json:"intent"`
	Location     string    `json:"location,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
