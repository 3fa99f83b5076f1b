package entities

// Routing reasons, ordered by descending confidence
const (
	RoutingReasonSiteMentioned        = "site_mentioned"
	RoutingReasonClinicianAssociation = "clinician_association"
	RoutingReasonPatientHistory       = "patient_history"
	RoutingReasonUnassigned           = "unassigned"
)

// RoutingResult is the outcome of the clinic routing cascade
type RoutingResult struct {
	AssignedLocation  string  `json:"assigned_location,omitempty"`
	LocationName      string  `json:"location_name,omitempty"`
	Confidence        float64 `json:"confidence"`
	RoutingReason     string  `json:"routing_reason"`
	MentionedDoctor   string  `json:"mentioned_doctor,omitempty"`
	MentionedLocation string  `json:"mentioned_location,omitempty"`
}

// LocationInfo is the routing information attached to a triaged voicemail
type LocationInfo struct {
	AssignedLocation   string   `json:"assigned_location,omitempty"`
	LocationConfidence float64  `json:"location_confidence"`
	RoutingReason      string   `json:"routing_reason"`
	AvailableLocations []string `json:"available_locations"`
}

// PatientMatchResult is the outcome of a patient record lookup
type PatientMatchResult struct {
	Matched          bool    `json:"matched"`
	PatientID        string  `json:"patient_id,omitempty"`
	Confidence       float64 `json:"confidence"`
	PreviousLocation string  `json:"previous_location,omitempty"`
}

// PatientMatchInfo is the patient identification status on a triaged voicemail
type PatientMatchInfo struct {
	MedicareMatched  bool    `json:"medicare_matched"`
	PatientID        string  `json:"patient_id,omitempty"`
	MatchConfidence  float64 `json:"match_confidence"`
	PreviousLocation string  `json:"previous_location,omitempty"`
}
