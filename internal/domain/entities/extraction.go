package entities

// ExtractedEntities are the structured entities pulled from a transcript
type ExtractedEntities struct {
	CallbackNumber       string   `json:"callback_number,omitempty"`
	CallbackNumberMasked string   `json:"callback_number_raw,omitempty"`
	UrgencyKeywords      []string `json:"urgency_keywords"`
	MedicationNames      []string `json:"medication_names"`
	Symptoms             []string `json:"symptoms"`
	MedicareNumber       string   `json:"medicare_number,omitempty"`
	MedicareNumberMasked string   `json:"medicare_number_masked,omitempty"`
	MentionedDoctor      string   `json:"mentioned_doctor,omitempty"`
	MentionedLocation    string   `json:"mentioned_location,omitempty"`
}

// MedicareResult is the outcome of a Medicare number extraction
type MedicareResult struct {
	Number string `json:"medicare_number,omitempty"`
	Masked string `json:"medicare_masked,omitempty"`
	Valid  bool   `json:"is_valid"`
}
