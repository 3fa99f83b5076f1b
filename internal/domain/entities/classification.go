package entities

// Intent is the primary classification of a voicemail
type Intent string

const (
	IntentBooking      Intent = "Booking"
	IntentPrescription Intent = "Prescription"
	IntentResults      Intent = "Results"
	IntentEmergency    Intent = "Emergency"
	IntentBilling      Intent = "Billing"
	IntentReferral     Intent = "Referral"
	IntentAmbiguous    Intent = "Ambiguous"
	IntentOther        Intent = "Other"
)

// ValidIntent reports whether s is a recognised intent value
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentBooking, IntentPrescription, IntentResults, IntentEmergency,
		IntentBilling, IntentReferral, IntentAmbiguous, IntentOther:
		return true
	}
	return false
}

// Classification is the structured result produced by a clinical classifier.
// Urgency levels run from 1 (low) to 5 (critical).
type Classification struct {
	Language            string  `json:"language"`
	LanguageCode        string  `json:"language_code,omitempty"`
	RequiresInterpreter bool    `json:"requires_interpreter"`
	UrgencyLevel        int     `json:"urgency_level"`
	UrgencyReasoning    string  `json:"urgency_reasoning"`
	Confidence          float64 `json:"confidence"`
	Intent              Intent  `json:"intent"`
	Summary             string  `json:"summary"`
	ActionItem          string  `json:"action_item"`
}

// DefaultClassification is the safe fallback used when a classifier
// response cannot be parsed. It forces a manual review path.
func DefaultClassification() *Classification {
	return &Classification{
		Language:         "Unknown",
		UrgencyLevel:     3,
		UrgencyReasoning: "Unable to parse classifier response",
		Confidence:       0.0,
		Intent:           IntentOther,
		Summary:          "Message requires manual review",
		ActionItem:       "Manual review required - classifier processing error",
	}
}
