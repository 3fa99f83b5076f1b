package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heidicalls/voicemail-triage/internal/application/services"
)

func newExtractionService() *services.ExtractionService {
	return services.NewExtractionService(services.DefaultClinicDirectory())
}

func TestExtractPhone_SpacedMobile(t *testing.T) {
	service := newExtractionService()

	normalized, masked := service.ExtractPhone("please call me back on 0412 345 678 thanks")

	assert.Equal(t, "0412345678", normalized)
	assert.Equal(t, "●●●●●●5678", masked)
}

func TestExtractPhone_International(t *testing.T) {
	service := newExtractionService()

	normalized, masked := service.ExtractPhone("reach me on +61412345678")

	assert.Equal(t, "+61412345678", normalized)
	assert.Equal(t, "●●●●●●●5678", masked)
}

func TestExtractPhone_NoneFound(t *testing.T) {
	service := newExtractionService()

	normalized, masked := service.ExtractPhone("no number in this message")

	assert.Empty(t, normalized)
	assert.Empty(t, masked)
}

func TestExtractMedicare_Spaced(t *testing.T) {
	service := newExtractionService()

	result := service.ExtractMedicare("my medicare number is 2345 67890 1")

	assert.True(t, result.Valid)
	assert.Equal(t, "2345678901", result.Number)
	assert.Equal(t, "XXXX XXXX X01", result.Masked)
}

func TestExtractMedicare_Compact(t *testing.T) {
	service := newExtractionService()

	result := service.ExtractMedicare("medicare 3456789012 please")

	assert.True(t, result.Valid)
	assert.Equal(t, "3456789012", result.Number)
	assert.Equal(t, "XXXX XXXX X12", result.Masked)
}

func TestExtractMedicare_RejectsInvalidLeadingDigit(t *testing.T) {
	service := newExtractionService()

	result := service.ExtractMedicare("my number is 9876543210")

	assert.False(t, result.Valid)
	assert.Empty(t, result.Number)
}

func TestExtractClinician(t *testing.T) {
	service := newExtractionService()

	name, location := service.ExtractClinician("I need to see Dr Wong about my results")

	assert.Equal(t, "Dr. Michael Wong", name)
	assert.Equal(t, "sunset", location)
}

func TestExtractLocation(t *testing.T) {
	service := newExtractionService()

	locationID := service.ExtractLocation("I usually go to the harbour clinic")

	assert.Equal(t, "harbour", locationID)
	assert.Equal(t, "Harbour Medical Centre", service.LocationName(locationID))
}
