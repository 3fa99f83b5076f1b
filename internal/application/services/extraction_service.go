package services

import (
	"regexp"
	"strings"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
)

const phoneMaskChar = "●"

// ExtractionService pulls structured entities from the raw transcript.
// It runs on the unredacted text, independent of the redaction pass,
// so extracted values can be used for routing and callbacks.
type ExtractionService struct {
	directory *ClinicDirectory

	// Phone patterns in priority order: spaced mobile, international, compact
	phonePatterns   []*regexp.Regexp
	medicareSpaced  *regexp.Regexp
	medicareCompact *regexp.Regexp
	nonDigit        *regexp.Regexp
	whitespace      *regexp.Regexp
}

// NewExtractionService creates an extraction service backed by the
// clinic directory
func NewExtractionService(directory *ClinicDirectory) *ExtractionService {
	return &ExtractionService{
		directory: directory,
		phonePatterns: []*regexp.Regexp{
			regexp.MustCompile(`0\d{3}\s?\d{3}\s?\d{3}`),
			regexp.MustCompile(`\+61\d{9}`),
			regexp.MustCompile(`04\d{8}`),
		},
		medicareSpaced:  regexp.MustCompile(`\b(\d{4})\s*(\d{5})\s*(\d{1,2})\b`),
		medicareCompact: regexp.MustCompile(`\b\d{10,11}\b`),
		nonDigit:        regexp.MustCompile(`\D`),
		whitespace:      regexp.MustCompile(`\s`),
	}
}

// ExtractPhone finds the first callback number in the transcript and
// returns the normalized number plus its masked display form
func (s *ExtractionService) ExtractPhone(text string) (normalized, masked string) {
	for _, pattern := range s.phonePatterns {
		if raw := pattern.FindString(text); raw != "" {
			normalized = s.whitespace.ReplaceAllString(raw, "")
			return normalized, s.MaskPhone(normalized)
		}
	}
	return "", ""
}

// MaskPhone masks all but the last 4 digits of a phone number
func (s *ExtractionService) MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}
	digits := s.nonDigit.ReplaceAllString(phone, "")
	if len(digits) < 4 {
		return strings.Repeat(phoneMaskChar, len(digits))
	}
	return strings.Repeat(phoneMaskChar, len(digits)-4) + digits[len(digits)-4:]
}

// ExtractMedicare finds an Australian Medicare number: 10-11 digits
// with a leading digit between 2 and 6, spaced or continuous
func (s *ExtractionService) ExtractMedicare(text string) entities.MedicareResult {
	var candidates []string

	for _, groups := range s.medicareSpaced.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, groups[1]+groups[2]+groups[3])
	}
	candidates = append(candidates, s.medicareCompact.FindAllString(text, -1)...)

	for _, digits := range candidates {
		if len(digits) < 10 || len(digits) > 11 {
			continue
		}
		if digits[0] < '2' || digits[0] > '6' {
			continue
		}
		return entities.MedicareResult{
			Number: digits,
			Masked: maskMedicare(digits),
			Valid:  true,
		}
	}

	return entities.MedicareResult{}
}

// maskMedicare shows only the last 2 digits: XXXX XXXX X##
func maskMedicare(medicare string) string {
	if len(medicare) >= 10 {
		return "XXXX XXXX X" + medicare[len(medicare)-2:]
	}
	return "XXXX XXXX XXX"
}

// ExtractClinician returns the first clinician mentioned in the text
// and their home site
func (s *ExtractionService) ExtractClinician(text string) (name, location string) {
	return s.directory.FindClinician(text)
}

// ExtractLocation returns the ID of the first clinic site mentioned
func (s *ExtractionService) ExtractLocation(text string) string {
	return s.directory.FindLocation(text)
}

// LocationName resolves a site ID to its display name
func (s *ExtractionService) LocationName(locationID string) string {
	return s.directory.LocationName(locationID)
}
