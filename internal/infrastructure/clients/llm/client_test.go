package llm_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/clients/llm"
	"github.com/heidicalls/voicemail-triage/pkg/config"
)

func chatReply(content string) string {
	reply := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(reply)
	return string(data)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *llm.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := llm.NewClient(&config.ClassifierConfig{
		APIKey:         "test-key",
		Model:          "gpt-4o-mini",
		BaseURL:        server.URL,
		RateLimitRPM:   600,
		RateLimitBurst: 10,
	})
	assert.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := llm.NewClient(&config.ClassifierConfig{})
	assert.Error(t, err)

	_, err = llm.NewClient(nil)
	assert.Error(t, err)
}

func TestClassify_ParsesFencedJSON(t *testing.T) {
	content := "```json\n" + `{
		"language": "English",
		"language_code": "en",
		"requires_interpreter": false,
		"urgency_level": 5,
		"urgency_reasoning": "chest pain reported",
		"confidence": 0.95,
		"intent": "Emergency",
		"summary": "Patient reports chest pain",
		"action_item": "Call patient immediately"
	}` + "\n```"

	var gotAuth, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		fmt.Fprint(w, chatReply(content))
	})

	result, err := client.Classify(context.Background(), "redacted transcript with chest pain")

	assert.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "English", result.Language)
	assert.Equal(t, 5, result.UrgencyLevel)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, entities.IntentEmergency, result.Intent)
}

func TestClassify_ExtractsJSONFromProse(t *testing.T) {
	content := `Here is the classification you asked for: {"language": "English", "urgency_level": 2, "intent": "Booking", "summary": "routine booking", "confidence": 0.8} hope that helps`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply(content))
	})

	result, err := client.Classify(context.Background(), "some transcript")

	assert.NoError(t, err)
	assert.Equal(t, entities.IntentBooking, result.Intent)
	assert.Equal(t, 2, result.UrgencyLevel)
}

func TestClassify_MissingConfidenceDefaulted(t *testing.T) {
	content := `{"language": "English", "urgency_level": 3, "intent": "Other", "summary": "something"}`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply(content))
	})

	result, err := client.Classify(context.Background(), "some transcript")

	assert.NoError(t, err)
	assert.Equal(t, 0.85, result.Confidence)
}

func TestClassify_UnparseableFallsBackToDefault(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply("I could not process that transcript, sorry."))
	})

	result, err := client.Classify(context.Background(), "some transcript")

	assert.NoError(t, err)
	assert.Equal(t, "Unknown", result.Language)
	assert.Equal(t, 3, result.UrgencyLevel)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, entities.IntentOther, result.Intent)
	assert.Contains(t, result.Summary, "manual review")
}

func TestClassify_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	result, err := client.Classify(context.Background(), "some transcript")

	assert.Nil(t, result)
	assert.ErrorContains(t, err, "status 500")
}

func TestClassify_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	})

	result, err := client.Classify(context.Background(), "some transcript")

	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestClassify_EmptyTranscriptRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty transcript")
	})

	_, err := client.Classify(context.Background(), "   ")
	assert.Error(t, err)
}
