package services_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heidicalls/voicemail-triage/internal/application/services"
	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
)

func TestRedactionService_Medicare(t *testing.T) {
	service := services.NewRedactionService()

	redacted, matches, safe := service.Redact("My Medicare number is 2345 67890 1 thanks")

	assert.True(t, safe)
	assert.Len(t, matches, 1)
	assert.Equal(t, entities.PIIMedicare, matches[0].Kind)
	assert.Equal(t, "23"+strings.Repeat("█", 8), matches[0].Redacted)
	assert.NotContains(t, redacted, "2345 67890 1")
	assert.Contains(t, redacted, "23")
}

func TestRedactionService_PhoneKeepsLastThree(t *testing.T) {
	service := services.NewRedactionService()

	redacted, matches, _ := service.Redact("call me back on 0412 345 678 please")

	assert.Len(t, matches, 1)
	assert.Equal(t, entities.PIIPhone, matches[0].Kind)
	assert.Equal(t, strings.Repeat("█", 7)+"678", matches[0].Redacted)
	assert.NotContains(t, redacted, "0412")
	assert.Contains(t, redacted, "678")
}

func TestRedactionService_Email(t *testing.T) {
	service := services.NewRedactionService()

	_, matches, _ := service.Redact("email me at john.smith@example.com")

	assert.Len(t, matches, 1)
	assert.Equal(t, entities.PIIEmail, matches[0].Kind)
	assert.Equal(t, "j"+strings.Repeat("█", 9)+"@example.com", matches[0].Redacted)
}

func TestRedactionService_NameCue(t *testing.T) {
	service := services.NewRedactionService()

	redacted, matches, _ := service.Redact("Hello, My name is John Smith and I need a script")

	assert.Len(t, matches, 1)
	assert.Equal(t, entities.PIIName, matches[0].Kind)
	assert.Contains(t, redacted, "[NAME REDACTED]")
	assert.NotContains(t, redacted, "John Smith")
}

func TestRedactionService_DOBOverlapResolved(t *testing.T) {
	service := services.NewRedactionService()

	// The cue pattern and the bare date pattern both hit here; only the
	// longer, earlier match must survive.
	redacted, matches, _ := service.Redact("my date of birth is 12/03/1985")

	assert.Len(t, matches, 1)
	assert.Equal(t, entities.PIIDOB, matches[0].Kind)
	assert.Contains(t, redacted, "[DOB REDACTED]")
	assert.NotContains(t, redacted, "1985")
}

func TestRedactionService_TFNFullyMasked(t *testing.T) {
	service := services.NewRedactionService()

	redacted, matches, _ := service.Redact("my tax file number is 123 456 789")

	assert.Len(t, matches, 1)
	assert.Equal(t, entities.PIITFN, matches[0].Kind)
	assert.Equal(t, strings.Repeat("█", 9), matches[0].Redacted)
	assert.NotContains(t, redacted, "123")
}

func TestRedactionService_CreditCardKeepsLastFour(t *testing.T) {
	service := services.NewRedactionService()

	_, matches, _ := service.Redact("card number 4111 1111 1111 1111")

	assert.Len(t, matches, 1)
	assert.Equal(t, entities.PIICreditCard, matches[0].Kind)
	assert.Equal(t, strings.Repeat("█", 12)+"1111", matches[0].Redacted)
}

func TestRedactionService_AddressFullyMasked(t *testing.T) {
	service := services.NewRedactionService()

	redacted, matches, _ := service.Redact("I live at 42 Wallaby Street if you need it")

	assert.Len(t, matches, 1)
	assert.Equal(t, entities.PIIAddress, matches[0].Kind)
	assert.NotContains(t, redacted, "Wallaby")
}

func TestRedactionService_CleanTextUntouched(t *testing.T) {
	service := services.NewRedactionService()

	text := "Just calling to check if the clinic is open tomorrow."
	redacted, matches, safe := service.Redact(text)

	assert.True(t, safe)
	assert.Empty(t, matches)
	assert.Equal(t, text, redacted)
}

func TestRedactionService_RedactionIsIdempotent(t *testing.T) {
	service := services.NewRedactionService()

	text := "My name is John Smith, Medicare 2345 67890 1, call 0412 345 678 or john.smith@example.com, DOB 12/03/1985"
	redacted, matches, _ := service.Redact(text)
	assert.NotEmpty(t, matches)

	// A redacted transcript must pass through unchanged: the masks
	// themselves never look like PII.
	again, secondMatches, safe := service.Redact(redacted)
	assert.True(t, safe)
	assert.Empty(t, secondMatches)
	assert.Equal(t, redacted, again)
}

func TestRedactionService_CardRunShadowsShorterDigitMatches(t *testing.T) {
	service := services.NewRedactionService()

	// The longest match starting earliest wins the collision, so the
	// full card-style run is reported once, as a card, and no
	// Medicare-kind match survives inside it.
	redacted, matches, _ := service.Redact("card - 2345 6789 0123 4567")

	assert.Len(t, matches, 1)
	assert.Equal(t, entities.PIICreditCard, matches[0].Kind)
	assert.Equal(t, "card - ", redacted[:matches[0].Start])
	assert.Equal(t, strings.Repeat("█", 12)+"4567", matches[0].Redacted)
	assert.NotContains(t, redacted, "2345")
	for _, m := range matches {
		assert.NotEqual(t, entities.PIIMedicare, m.Kind)
	}
}

func TestRedactionService_MultipleKindsInOneTranscript(t *testing.T) {
	service := services.NewRedactionService()

	text := "My Medicare number is 2345 67890 1, call me back on 0412 345 678."
	redacted, matches, _ := service.Redact(text)

	summary := service.PIISummary(matches)
	assert.Equal(t, 1, summary[string(entities.PIIMedicare)])
	assert.Equal(t, 1, summary[string(entities.PIIPhone)])
	assert.NotContains(t, redacted, "67890")
	assert.NotContains(t, redacted, "0412")
}
