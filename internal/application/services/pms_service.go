package services

import (
	"context"
	"strings"
	"time"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/domain/repositories"
	apperrors "github.com/heidicalls/voicemail-triage/pkg/errors"
)

// Supported practice management systems
const (
	PMSBestPractice    = "best_practice"
	PMSMedicalDirector = "medical_director"
	PMSCliniko         = "cliniko"
)

const defaultAppointmentType = "General Consultation"

// pmsPatients is the demo patient directory per practice management
// system. A production deployment would replace this with live PMS API
// clients behind the same service surface.
var pmsPatients = map[string][]entities.PMSPatient{
	PMSBestPractice: {
		{PatientID: "BP-001", Name: "John Smith", DOB: "1965-03-15", Phone: "0412345678"},
		{PatientID: "BP-002", Name: "Mary Johnson", DOB: "1978-07-22", Phone: "0412345789"},
	},
	PMSMedicalDirector: {
		{PatientID: "MD-001", Name: "Sarah Chen", DOB: "1982-11-08", Phone: "0412345456"},
	},
	PMSCliniko: {
		{PatientID: "CL-001", Name: "David Wong", DOB: "1990-01-30", Phone: "0412345123"},
	},
}

// PMSService links triaged voicemails to practice management system
// patient records and raises appointment requests against them.
type PMSService struct {
	repo repositories.VoicemailRepository
}

// NewPMSService creates a practice management system service
func NewPMSService(repo repositories.VoicemailRepository) *PMSService {
	return &PMSService{repo: repo}
}

// KnownSystem reports whether a PMS identifier is supported
func (s *PMSService) KnownSystem(pmsSystem string) bool {
	_, ok := pmsPatients[pmsSystem]
	return ok
}

// SearchPatients looks up patients in one PMS by phone fragment or name
// substring. Each hit is tagged with the field that matched.
func (s *PMSService) SearchPatients(pmsSystem, phone, name string) ([]entities.PMSPatient, error) {
	patients, ok := pmsPatients[pmsSystem]
	if !ok {
		return nil, apperrors.NewValidationError("unknown PMS system: " + pmsSystem)
	}

	results := []entities.PMSPatient{}
	nameLower := strings.ToLower(name)
	for _, p := range patients {
		switch {
		case phone != "" && strings.Contains(p.Phone, phone):
			p.MatchType = "phone"
		case name != "" && strings.Contains(strings.ToLower(p.Name), nameLower):
			p.MatchType = "name"
		default:
			continue
		}
		results = append(results, p)
	}
	return results, nil
}

// Link associates a voicemail with a PMS patient record
func (s *PMSService) Link(ctx context.Context, voicemailID, pmsSystem, pmsPatientID string) (*entities.TriagedVoicemail, error) {
	if !s.KnownSystem(pmsSystem) {
		return nil, apperrors.NewValidationError("unknown PMS system: " + pmsSystem)
	}
	if pmsPatientID == "" {
		return nil, apperrors.NewValidationError("pms_patient_id is required")
	}

	voicemail, err := s.repo.GetByID(ctx, voicemailID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	voicemail.PMSSystem = pmsSystem
	voicemail.PMSPatientID = pmsPatientID
	voicemail.PMSLinked = true
	voicemail.PMSLastSync = &now

	if err := s.repo.Update(ctx, voicemail); err != nil {
		return nil, err
	}
	return voicemail, nil
}

// CreateAppointment raises an appointment request in the linked PMS.
// The voicemail must already be linked to a patient record.
func (s *PMSService) CreateAppointment(ctx context.Context, voicemailID, appointmentType, preferredDate, notes string) (*entities.PMSAppointment, error) {
	voicemail, err := s.repo.GetByID(ctx, voicemailID)
	if err != nil {
		return nil, err
	}
	if !voicemail.PMSLinked {
		return nil, apperrors.NewValidationError("voicemail is not linked to a PMS patient record")
	}

	if appointmentType == "" {
		appointmentType = defaultAppointmentType
	}
	if notes == "" {
		notes = voicemail.Summary
	}

	appointment := &entities.PMSAppointment{
		AppointmentID:   appointmentID(voicemailID),
		VoicemailID:     voicemailID,
		PMSSystem:       voicemail.PMSSystem,
		PMSPatientID:    voicemail.PMSPatientID,
		AppointmentType: appointmentType,
		PreferredDate:   preferredDate,
		Notes:           notes,
		Status:          "requested",
		CreatedAt:       time.Now().UTC(),
	}

	voicemail.PMSAppointmentID = appointment.AppointmentID
	if err := s.repo.Update(ctx, voicemail); err != nil {
		return nil, err
	}
	return appointment, nil
}

// appointmentID derives a stable appointment identifier from the
// voicemail identifier's tail.
func appointmentID(voicemailID string) string {
	tail := voicemailID
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	return "APT-" + tail
}
