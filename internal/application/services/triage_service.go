package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/domain/providers"
	"github.com/heidicalls/voicemail-triage/internal/domain/repositories"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/observability"
	apperrors "github.com/heidicalls/voicemail-triage/pkg/errors"
)

// TriageService orchestrates the voicemail triage pipeline: redaction,
// classification, entity extraction, routing, patient matching and
// emergency escalation.
type TriageService struct {
	classifier providers.Classifier
	redaction  *RedactionService
	extraction *ExtractionService
	routing    *RoutingService
	escalation *EscalationService
	repo       repositories.VoicemailRepository

	eventBus providers.EventBus
	metrics  *observability.Metrics
}

// NewTriageService creates the triage pipeline orchestrator
func NewTriageService(
	classifier providers.Classifier,
	redaction *RedactionService,
	extraction *ExtractionService,
	routing *RoutingService,
	escalation *EscalationService,
	repo repositories.VoicemailRepository,
) *TriageService {
	return &TriageService{
		classifier: classifier,
		redaction:  redaction,
		extraction: extraction,
		routing:    routing,
		escalation: escalation,
		repo:       repo,
	}
}

// SetEventBus enables real-time event publishing
func (s *TriageService) SetEventBus(eventBus providers.EventBus) {
	s.eventBus = eventBus
}

// SetMetrics enables pipeline metrics
func (s *TriageService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// Triage runs the full pipeline for one voicemail and persists the result.
// The classifier only ever sees the redacted transcript.
func (s *TriageService) Triage(ctx context.Context, input *entities.VoicemailInput) (*entities.TriagedVoicemail, error) {
	if input == nil || input.Transcript == "" {
		return nil, apperrors.NewValidationError("transcript is required")
	}

	ctx, span := observability.StartSpan(ctx, "triage.pipeline")
	defer span.End()
	start := time.Now()

	voicemailID := generateVoicemailID()

	redacted, piiMatches, isPIISafe := s.redaction.Redact(input.Transcript)

	classification, err := s.classifier.Classify(ctx, redacted)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewExternalError("classifier request failed", err)
	}
	normalizeClassification(classification)

	// Entity extraction runs on the original transcript
	callbackNumber, callbackMasked := s.extraction.ExtractPhone(input.Transcript)
	if callbackNumber == "" && input.CallerPhone != "" {
		callbackNumber = input.CallerPhone
		callbackMasked = s.extraction.MaskPhone(input.CallerPhone)
	}

	medicare := s.extraction.ExtractMedicare(input.Transcript)

	extracted := &entities.ExtractedEntities{
		CallbackNumber:       callbackNumber,
		CallbackNumberMasked: callbackMasked,
		UrgencyKeywords:      []string{},
		MedicationNames:      []string{},
		Symptoms:             []string{},
		MedicareNumber:       medicare.Number,
		MedicareNumberMasked: medicare.Masked,
	}

	if doctorName, _ := s.extraction.ExtractClinician(input.Transcript); doctorName != "" {
		extracted.MentionedDoctor = doctorName
	}
	if locationID := s.extraction.ExtractLocation(input.Transcript); locationID != "" {
		extracted.MentionedLocation = s.extraction.LocationName(locationID)
	}

	routingResult := s.routing.Route(input.Transcript, medicare.Number)
	var locationInfo *entities.LocationInfo
	if routingResult.AssignedLocation != "" {
		locationInfo = &entities.LocationInfo{
			AssignedLocation:   routingResult.AssignedLocation,
			LocationConfidence: routingResult.Confidence,
			RoutingReason:      routingResult.RoutingReason,
			AvailableLocations: s.routing.AvailableLocations(),
		}
	}

	matchResult := s.routing.MatchPatient(medicare.Number)
	var patientMatch *entities.PatientMatchInfo
	if matchResult.Matched {
		patientMatch = &entities.PatientMatchInfo{
			MedicareMatched:  true,
			PatientID:        matchResult.PatientID,
			MatchConfidence:  matchResult.Confidence,
			PreviousLocation: matchResult.PreviousLocation,
		}
	}

	escalationResult := s.escalation.Process(ctx, voicemailID,
		classification.UrgencyLevel, classification.Intent, classification.Summary, callbackNumber)
	var escalationInfo *entities.EscalationInfo
	if escalationResult.Triggered {
		escalationInfo = &entities.EscalationInfo{
			EscalationTriggered: true,
			EmergencyAlertSent:  true,
			InterventionStatus:  escalationResult.InterventionStatus,
			TimestampEscalated:  escalationResult.TimestampEscalated,
			EmergencyScript:     escalationResult.EmergencyScript,
			SMSSentTo:           escalationResult.SMSSentTo,
			ActionsTaken:        escalationResult.ActionsTaken,
		}
	}

	isAmbiguous := classification.Intent == entities.IntentAmbiguous || classification.Confidence < 0.5

	createdAt := time.Now().UTC()
	if input.CallTimestamp != nil {
		createdAt = *input.CallTimestamp
	}
	processedAt := time.Now().UTC()

	record := &entities.TriagedVoicemail{
		VoicemailID: voicemailID,
		Language:    classification.Language,
		LanguageInfo: &entities.LanguageInfo{
			Detected:            classification.Language,
			Code:                classification.LanguageCode,
			RequiresInterpreter: classification.RequiresInterpreter,
		},
		Urgency: entities.UrgencyInfo{
			Level:      classification.UrgencyLevel,
			Reasoning:  classification.UrgencyReasoning,
			Confidence: classification.Confidence,
		},
		Intent:            classification.Intent,
		Summary:           classification.Summary,
		ActionItem:        classification.ActionItem,
		ExtractedEntities: extracted,
		LocationInfo:      locationInfo,
		PatientMatch:      patientMatch,
		UIState: &entities.UIState{
			IsAmbiguous:          isAmbiguous,
			NeedsManualListening: isAmbiguous,
			HighlightUrgent:      classification.UrgencyLevel >= 4,
		},
		Escalation:          escalationInfo,
		AudioFileURL:        input.AudioFileURL,
		IsPIISafe:           isPIISafe,
		RedactedTranscript:  redacted,
		CallerPhoneRedacted: s.extraction.MaskPhone(input.CallerPhone),
		CreatedAt:           createdAt,
		ProcessedAt:         &processedAt,
		Status:              entities.StatusProcessed,
		CallbackStatus:      entities.CallbackPending,
		CallCountToday:      1,
	}

	s.attachCallerHistory(ctx, record, callbackNumber, input.CallerPhone)

	if s.repo != nil {
		if err := s.repo.Create(ctx, record); err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
	}

	s.publishEvents(ctx, record)

	if s.metrics != nil {
		observability.RecordTriageMetric(ctx, s.metrics,
			record.Urgency.Level, string(record.Intent), len(piiMatches),
			escalationResult.Triggered, time.Since(start))
	}
	observability.SetSpanAttributes(span,
		attribute.Int("triage.urgency_level", record.Urgency.Level),
		attribute.String("triage.intent", string(record.Intent)),
		attribute.Int("triage.pii_matches", len(piiMatches)),
		attribute.Bool("triage.escalated", escalationResult.Triggered),
	)

	return record, nil
}

// attachCallerHistory hashes the caller phone and links earlier calls
// from the same number for duplicate detection
func (s *TriageService) attachCallerHistory(ctx context.Context, record *entities.TriagedVoicemail, callbackNumber, callerPhone string) {
	phone := callbackNumber
	if phone == "" {
		phone = callerPhone
	}
	if phone == "" {
		return
	}

	record.CallerPhoneHash = HashPhone(phone)

	if s.repo == nil {
		return
	}
	previous, err := s.repo.ListByPhoneHash(ctx, record.CallerPhoneHash)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to look up caller history")
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for _, prev := range previous {
		record.RelatedVoicemailIDs = append(record.RelatedVoicemailIDs, prev.VoicemailID)
		if !prev.CreatedAt.UTC().Before(today) {
			record.CallCountToday++
		}
	}
	record.IsRepeatCaller = len(previous) > 0
}

func (s *TriageService) publishEvents(ctx context.Context, record *entities.TriagedVoicemail) {
	if s.eventBus == nil {
		return
	}

	event := &entities.TriageEvent{
		ID:           uuid.New().String(),
		Type:         entities.TriageEventProcessed,
		VoicemailID:  record.VoicemailID,
		UrgencyLevel: record.Urgency.Level,
		Intent:       record.Intent,
		Timestamp:    time.Now().UTC(),
	}
	if record.LocationInfo != nil {
		event.Location = record.LocationInfo.AssignedLocation
	}

	if err := s.eventBus.Publish(ctx, providers.EventChannelTriage, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to publish triage event")
	}

	if record.Escalation != nil && record.Escalation.EscalationTriggered {
		escalated := *event
		escalated.ID = uuid.New().String()
		escalated.Type = entities.TriageEventEscalated
		if err := s.eventBus.Publish(ctx, providers.EventChannelEscalations, &escalated); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to publish escalation event")
		}
	}
}

// normalizeClassification clamps the urgency level into the 1-5 range
// and maps unknown intents to Other
func normalizeClassification(c *entities.Classification) {
	if c.UrgencyLevel < 1 {
		c.UrgencyLevel = 1
	}
	if c.UrgencyLevel > 5 {
		c.UrgencyLevel = 5
	}
	if !entities.ValidIntent(string(c.Intent)) {
		c.Intent = entities.IntentOther
	}
	if c.Language == "" {
		c.Language = "Unknown"
	}
}

// HashPhone returns a short stable hash of a phone number for grouping
// calls from the same number without storing it
func HashPhone(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	sum := sha256.Sum256(digits)
	return hex.EncodeToString(sum[:])[:16]
}

func generateVoicemailID() string {
	return fmt.Sprintf("vm_%s_%s",
		time.Now().UTC().Format("20060102_150405"),
		uuid.New().String()[:8])
}
