package providers

import (
	"context"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
)

// Classifier analyses a redacted transcript and produces a structured
// clinical classification. Implementations must never receive raw PII.
type Classifier interface {
	// Classify returns the classification for a redacted transcript
	Classify(ctx context.Context, redactedTranscript string) (*entities.Classification, error)
}
