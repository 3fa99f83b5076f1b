package classifier_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heidicalls/voicemail-triage/internal/adapters/classifier"
	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
)

func TestClassify_EnglishEmergency(t *testing.T) {
	c := classifier.NewRuleBased()

	result, err := c.Classify(context.Background(), "I'm having chest pain and can't breathe")

	assert.NoError(t, err)
	assert.Equal(t, "English", result.Language)
	assert.Equal(t, "en", result.LanguageCode)
	assert.False(t, result.RequiresInterpreter)
	assert.Equal(t, 5, result.UrgencyLevel)
	assert.Equal(t, 0.92, result.Confidence)
	assert.Equal(t, entities.IntentEmergency, result.Intent)
	assert.Contains(t, result.ActionItem, "000")
}

func TestClassify_EnglishPrescription(t *testing.T) {
	c := classifier.NewRuleBased()

	result, err := c.Classify(context.Background(), "I need a refill on my medication please")

	assert.NoError(t, err)
	assert.Equal(t, entities.IntentPrescription, result.Intent)
	assert.Equal(t, 4, result.UrgencyLevel)
	assert.Equal(t, 0.88, result.Confidence)
	assert.Equal(t, "Patient message regarding prescription matter - requires urgent attention", result.Summary)
}

func TestClassify_EnglishBooking(t *testing.T) {
	c := classifier.NewRuleBased()

	result, err := c.Classify(context.Background(), "Could I book a checkup for next week")

	assert.NoError(t, err)
	assert.Equal(t, entities.IntentBooking, result.Intent)
	assert.Equal(t, 3, result.UrgencyLevel)
	assert.Equal(t, 0.85, result.Confidence)
}

func TestClassify_Vietnamese(t *testing.T) {
	c := classifier.NewRuleBased()

	result, err := c.Classify(context.Background(), "Xin chào, tôi muốn đặt lịch khám")

	assert.NoError(t, err)
	assert.Equal(t, "Vietnamese", result.Language)
	assert.Equal(t, "vi", result.LanguageCode)
	assert.True(t, result.RequiresInterpreter)
	assert.Equal(t, entities.IntentBooking, result.Intent)
	assert.Contains(t, result.ActionItem, "Vietnamese interpreter required")
}

func TestClassify_ChineseEmergency(t *testing.T) {
	c := classifier.NewRuleBased()

	result, err := c.Classify(context.Background(), "我胸痛，请尽快回电")

	assert.NoError(t, err)
	assert.Equal(t, "Mandarin Chinese", result.Language)
	assert.Equal(t, "zh", result.LanguageCode)
	assert.True(t, result.RequiresInterpreter)
	assert.Equal(t, 5, result.UrgencyLevel)
	assert.Equal(t, entities.IntentEmergency, result.Intent)
}

func TestClassify_GreekEmergency(t *testing.T) {
	c := classifier.NewRuleBased()

	result, err := c.Classify(context.Background(), "Έχω αιμορραγία, παρακαλώ καλέστε με")

	assert.NoError(t, err)
	assert.Equal(t, "Greek", result.Language)
	assert.Equal(t, "el", result.LanguageCode)
	assert.True(t, result.RequiresInterpreter)
	assert.Equal(t, entities.IntentEmergency, result.Intent)
}

func TestClassify_DefaultOther(t *testing.T) {
	c := classifier.NewRuleBased()

	result, err := c.Classify(context.Background(), "Hello, just returning your call")

	assert.NoError(t, err)
	assert.Equal(t, entities.IntentOther, result.Intent)
	assert.Equal(t, 3, result.UrgencyLevel)
	assert.Equal(t, 0.85, result.Confidence)
	assert.Equal(t, "Patient message regarding other matter - requires standard attention", result.Summary)
}
