package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/pkg/config"
)

// ClinicDirectory holds the immutable clinic reference data: sites,
// clinicians and the patient location history. Loaded once at startup.
type ClinicDirectory struct {
	locations      []entities.ClinicLocation
	clinicians     []entities.Clinician
	patientHistory map[string]string
}

// NewClinicDirectory builds a directory from in-memory reference data
func NewClinicDirectory(locations []entities.ClinicLocation, clinicians []entities.Clinician, patientHistory map[string]string) *ClinicDirectory {
	if patientHistory == nil {
		patientHistory = map[string]string{}
	}
	return &ClinicDirectory{
		locations:      locations,
		clinicians:     clinicians,
		patientHistory: patientHistory,
	}
}

// LoadClinicDirectory reads the reference data files configured for the
// service. Malformed or missing reference data is a fatal condition.
func LoadClinicDirectory(cfg *config.ReferenceConfig) (*ClinicDirectory, error) {
	var locations []entities.ClinicLocation
	if err := loadJSONFile(cfg.LocationsPath, &locations); err != nil {
		return nil, fmt.Errorf("failed to load clinic locations: %w", err)
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("clinic locations file %s is empty", cfg.LocationsPath)
	}

	var clinicians []entities.Clinician
	if err := loadJSONFile(cfg.CliniciansPath, &clinicians); err != nil {
		return nil, fmt.Errorf("failed to load clinicians: %w", err)
	}

	patientHistory := map[string]string{}
	if err := loadJSONFile(cfg.PatientHistoryPath, &patientHistory); err != nil {
		return nil, fmt.Errorf("failed to load patient history: %w", err)
	}

	known := make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		known[loc.ID] = struct{}{}
	}
	for _, c := range clinicians {
		if _, ok := known[c.Location]; !ok {
			return nil, fmt.Errorf("clinician %q references unknown location %q", c.Name, c.Location)
		}
	}
	for medicare, loc := range patientHistory {
		if _, ok := known[loc]; !ok {
			return nil, fmt.Errorf("patient history entry %q references unknown location %q", medicare, loc)
		}
	}

	return NewClinicDirectory(locations, clinicians, patientHistory), nil
}

func loadJSONFile(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}

// DefaultClinicDirectory returns the compiled-in directory used for
// tests and API-key-free demo runs
func DefaultClinicDirectory() *ClinicDirectory {
	return NewClinicDirectory(
		[]entities.ClinicLocation{
			{ID: "harbour", Name: "Harbour Medical Centre", Keywords: []string{"harbour", "harbor", "waterfront", "bay"}},
			{ID: "sunset", Name: "Sunset Family Practice", Keywords: []string{"sunset", "west", "evening"}},
			{ID: "central", Name: "Central City Clinic", Keywords: []string{"central", "city", "downtown", "cbd"}},
			{ID: "northside", Name: "Northside Health Hub", Keywords: []string{"north", "northside", "upper"}},
		},
		[]entities.Clinician{
			{Name: "Dr. Sarah Chen", Location: "harbour", Aliases: []string{"dr chen", "sarah chen", "chen"}},
			{Name: "Dr. Michael Wong", Location: "sunset", Aliases: []string{"dr wong", "michael wong", "wong"}},
			{Name: "Dr. Emma Thompson", Location: "central", Aliases: []string{"dr thompson", "emma thompson", "thompson"}},
			{Name: "Dr. James Nguyen", Location: "northside", Aliases: []string{"dr nguyen", "james nguyen", "nguyen"}},
			{Name: "Dr. Lisa Patel", Location: "harbour", Aliases: []string{"dr patel", "lisa patel", "patel"}},
		},
		map[string]string{
			"2345678901": "harbour",
			"3456789012": "sunset",
			"4567890123": "central",
			"5678901234": "northside",
			"6789012345": "harbour",
		},
	)
}

// LocationName returns the display name for a location ID
func (d *ClinicDirectory) LocationName(locationID string) string {
	for _, loc := range d.locations {
		if loc.ID == locationID {
			return loc.Name
		}
	}
	return ""
}

// LocationIDs returns all location IDs in directory order
func (d *ClinicDirectory) LocationIDs() []string {
	ids := make([]string, 0, len(d.locations))
	for _, loc := range d.locations {
		ids = append(ids, loc.ID)
	}
	return ids
}

// FindLocation scans text for a site keyword mention. The first keyword
// hit in directory order wins.
func (d *ClinicDirectory) FindLocation(text string) string {
	lower := strings.ToLower(text)
	for _, loc := range d.locations {
		for _, keyword := range loc.Keywords {
			if strings.Contains(lower, keyword) {
				return loc.ID
			}
		}
	}
	return ""
}

// FindClinician scans text for a clinician alias mention and returns
// the clinician name and their home site
func (d *ClinicDirectory) FindClinician(text string) (name, location string) {
	lower := strings.ToLower(text)
	for _, c := range d.clinicians {
		for _, alias := range c.Aliases {
			if strings.Contains(lower, alias) {
				return c.Name, c.Location
			}
		}
	}
	return "", ""
}

// PreviousLocation returns the historical site for a Medicare number
func (d *ClinicDirectory) PreviousLocation(medicareNumber string) (string, bool) {
	loc, ok := d.patientHistory[medicareNumber]
	return loc, ok
}
