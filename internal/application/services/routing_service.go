package services

import (
	"fmt"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
)

// RoutingService assigns voicemails to clinic sites using a fixed
// confidence cascade: explicit site mention, clinician home site,
// patient history, then unassigned.
type RoutingService struct {
	directory *ClinicDirectory
}

// NewRoutingService creates a routing service backed by the clinic directory
func NewRoutingService(directory *ClinicDirectory) *RoutingService {
	return &RoutingService{directory: directory}
}

// Route determines the best clinic site for a voicemail
func (s *RoutingService) Route(transcript, medicareNumber string) *entities.RoutingResult {
	if locationID := s.directory.FindLocation(transcript); locationID != "" {
		name := s.directory.LocationName(locationID)
		return &entities.RoutingResult{
			AssignedLocation:  locationID,
			LocationName:      name,
			Confidence:        0.95,
			RoutingReason:     entities.RoutingReasonSiteMentioned,
			MentionedLocation: name,
		}
	}

	clinicianName, clinicianLocation := s.directory.FindClinician(transcript)
	if clinicianLocation != "" {
		return &entities.RoutingResult{
			AssignedLocation: clinicianLocation,
			LocationName:     s.directory.LocationName(clinicianLocation),
			Confidence:       0.85,
			RoutingReason:    entities.RoutingReasonClinicianAssociation,
			MentionedDoctor:  clinicianName,
		}
	}

	if medicareNumber != "" {
		if location, ok := s.directory.PreviousLocation(medicareNumber); ok {
			return &entities.RoutingResult{
				AssignedLocation: location,
				LocationName:     s.directory.LocationName(location),
				Confidence:       0.75,
				RoutingReason:    entities.RoutingReasonPatientHistory,
			}
		}
	}

	// No routing signal. The clinician mention, if any, is still
	// reported for staff context.
	return &entities.RoutingResult{
		Confidence:      0.0,
		RoutingReason:   entities.RoutingReasonUnassigned,
		MentionedDoctor: clinicianName,
	}
}

// MatchPatient attempts to match the caller to a patient record via
// their Medicare number
func (s *RoutingService) MatchPatient(medicareNumber string) *entities.PatientMatchResult {
	if medicareNumber == "" {
		return &entities.PatientMatchResult{}
	}

	location, ok := s.directory.PreviousLocation(medicareNumber)
	if !ok {
		return &entities.PatientMatchResult{}
	}

	return &entities.PatientMatchResult{
		Matched:          true,
		PatientID:        fmt.Sprintf("PAT-%s", medicareNumber[len(medicareNumber)-6:]),
		Confidence:       0.95,
		PreviousLocation: location,
	}
}

// AvailableLocations returns all clinic site IDs
func (s *RoutingService) AvailableLocations() []string {
	return s.directory.LocationIDs()
}
