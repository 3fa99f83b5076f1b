package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/pkg/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the Classifier provider against an OpenAI-compatible
// chat completions API. It only ever receives redacted transcripts.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new classifier client.
func NewClient(cfg *config.ClassifierConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("classifier api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limiter := newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst)

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: limiter,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatEnvelope struct {
	Choices []chatChoice `json:"choices"`
}

// classificationPayload mirrors the JSON contract in the system prompt.
// Confidence is a pointer so a missing field can be defaulted.
type classificationPayload struct {
	Language            string   `json:"language"`
	LanguageCode        string   `json:"language_code"`
	RequiresInterpreter bool     `json:"requires_interpreter"`
	UrgencyLevel        int      `json:"urgency_level"`
	UrgencyReasoning    string   `json:"urgency_reasoning"`
	Confidence          *float64 `json:"confidence"`
	Intent              string   `json:"intent"`
	Summary             string   `json:"summary"`
	ActionItem          string   `json:"action_item"`
}

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// Classify sends the redacted transcript to the model and parses the
// structured classification from the reply.
func (c *Client) Classify(ctx context.Context, redactedTranscript string) (*entities.Classification, error) {
	if strings.TrimSpace(redactedTranscript) == "" {
		return nil, errors.New("transcript is required")
	}

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordClassifierMetric(ctx, c.model, 0, 0, err)
			return nil, err
		}
		recordClassifierRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	payload := map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: triageSystemPrompt},
			{Role: "user", Content: buildTriageUserPrompt(redactedTranscript)},
		},
		"temperature": 0.1,
		"max_tokens":  500,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordClassifierMetric(ctx, c.model, 0, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordClassifierMetric(ctx, c.model, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		return nil, fmt.Errorf("classifier request failed with status %d", resp.StatusCode)
	}

	var envelope chatEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordClassifierMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		recordClassifierMetric(ctx, c.model, resp.StatusCode, time.Since(start), errors.New("missing completion text"))
		return nil, errors.New("classifier response missing completion text")
	}

	recordClassifierMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return parseClassification(envelope.Choices[0].Message.Content), nil
}

// parseClassification extracts a Classification from the model reply.
// Unparseable replies fall back to the safe default rather than failing
// the pipeline.
func parseClassification(text string) *entities.Classification {
	// Clean Markdown code blocks if present
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(cleaned)

	var parsed classificationPayload
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		// Models sometimes wrap the JSON in prose
		match := jsonObjectPattern.FindString(cleaned)
		if match == "" {
			return entities.DefaultClassification()
		}
		if err := json.Unmarshal([]byte(match), &parsed); err != nil {
			return entities.DefaultClassification()
		}
	}

	confidence := 0.85
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}

	return &entities.Classification{
		Language:            parsed.Language,
		LanguageCode:        parsed.LanguageCode,
		RequiresInterpreter: parsed.RequiresInterpreter,
		UrgencyLevel:        parsed.UrgencyLevel,
		UrgencyReasoning:    parsed.UrgencyReasoning,
		Confidence:          confidence,
		Intent:              entities.Intent(parsed.Intent),
		Summary:             parsed.Summary,
		ActionItem:          parsed.ActionItem,
	}
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return newTokenBucketWithRate(rpm, burst)
}

type tokenBucket struct {
	tokens chan struct{}
}

func newTokenBucketWithRate(rpm int, burst int) *tokenBucket {
	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}

	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type classifierMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var llmMetricsInit = false
var llmMetrics classifierMetrics

func ensureClassifierMetrics() {
	if llmMetricsInit {
		return
	}
	meter := otel.Meter("github.com/heidicalls/voicemail-triage/llm")

	requestCount, err := meter.Int64Counter(
		"ai.classifier.request.count",
		metric.WithDescription("Number of classifier requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.classifier.request.duration",
		metric.WithDescription("Classifier request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.classifier.request.errors",
		metric.WithDescription("Number of classifier request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"ai.classifier.rate_limit.wait",
		metric.WithDescription("Time spent waiting for the classifier rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	llmMetrics = classifierMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	llmMetricsInit = true
}

func recordClassifierMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureClassifierMetrics()
	if !llmMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	llmMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	llmMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		llmMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordClassifierRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	ensureClassifierMetrics()
	if !llmMetricsInit {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	llmMetrics.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
