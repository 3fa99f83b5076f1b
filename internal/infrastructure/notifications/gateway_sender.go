package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/heidicalls/voicemail-triage/internal/domain/providers"
	"github.com/heidicalls/voicemail-triage/pkg/config"
	"github.com/heidicalls/voicemail-triage/pkg/retry"
)

// Delivery retry policy. Alerts are time-critical, so the window is
// kept short: a gateway that is down gets three quick attempts and the
// failure is surfaced to the escalation state machine.
var deliveryRetry = retry.Config{
	MaxAttempts:     3,
	InitialDelay:    500 * time.Millisecond,
	MaxDelay:        2 * time.Second,
	BackoffFactor:   2.0,
	MaxTotalTimeout: 15 * time.Second,
}

// GatewaySender delivers escalation alerts through an SMS/voice gateway
// HTTP API
type GatewaySender struct {
	baseURL      string
	apiKey       string
	senderID     string
	managerPhone string
	httpClient   *http.Client
}

// NewGatewaySender creates a gateway sender from alert configuration
func NewGatewaySender(cfg *config.AlertsConfig) (*GatewaySender, error) {
	if cfg.GatewayURL == "" || cfg.GatewayAPIKey == "" {
		return nil, errors.New("ALERTS_GATEWAY_URL and ALERTS_GATEWAY_API_KEY must be set")
	}

	return &GatewaySender{
		baseURL:      cfg.GatewayURL,
		apiKey:       cfg.GatewayAPIKey,
		senderID:     cfg.SenderID,
		managerPhone: cfg.ManagerPhone,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SMSMessage is the gateway SMS request payload
type SMSMessage struct {
	To       string `json:"to"`
	From     string `json:"from"`
	Body     string `json:"body"`
	Priority string `json:"priority,omitempty"`
}

// VoiceCallRequest is the gateway text-to-speech call request payload
type VoiceCallRequest struct {
	To     string `json:"to"`
	From   string `json:"from"`
	Script string `json:"script"`
	Voice  string `json:"voice,omitempty"`
}

// GatewayResponse is the gateway API response
type GatewayResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// NotifyManager sends an SMS alert to the clinic manager
func (g *GatewaySender) NotifyManager(ctx context.Context, alert *providers.ManagerAlert) error {
	body := fmt.Sprintf(
		"EMERGENCY ALERT\nVoicemail: %s\nPatient phone: %s\nUrgency: LEVEL %d\n%s\nAutomated voice alert sent to patient. ACTION REQUIRED: verify patient status.",
		alert.VoicemailID, alert.PatientPhone, alert.UrgencyLevel, alert.Summary,
	)

	msg := SMSMessage{
		To:       g.managerPhone,
		From:     g.senderID,
		Body:     body,
		Priority: "high",
	}

	return g.deliver(ctx, "/sms", msg)
}

// CallPatient places a text-to-speech voice alert to the patient
func (g *GatewaySender) CallPatient(ctx context.Context, phone, script string) error {
	req := VoiceCallRequest{
		To:     phone,
		From:   g.senderID,
		Script: script,
	}

	return g.deliver(ctx, "/calls", req)
}

// deliver posts a payload to the gateway with bounded retry
func (g *GatewaySender) deliver(ctx context.Context, path string, payload interface{}) error {
	return retry.DoWithLog(ctx, deliveryRetry, "alert gateway",
		func() error {
			return g.post(ctx, path, payload)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).
				Str("path", path).
				Int("attempt", attempt).
				Dur("next_delay", nextDelay).
				Msg("alert gateway delivery failed, retrying")
		},
	)
}

func (g *GatewaySender) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("gateway request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	var result GatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if result.Error != "" {
		return fmt.Errorf("gateway rejected delivery: %s", result.Error)
	}

	return nil
}
