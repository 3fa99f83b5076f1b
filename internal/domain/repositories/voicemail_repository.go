package repositories

import (
	"context"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
)

// VoicemailFilter holds list filtering, sorting and pagination options
type VoicemailFilter struct {
	Status        string
	Intent        string
	UrgencyMin    int
	UrgencyMax    int
	AmbiguousOnly bool

	Phone      string
	Symptom    string
	Medication string
	Doctor     string

	// HideOldActioned drops actioned items older than the configured
	// retention window. Archived items are always kept.
	HideOldActioned bool

	SortBy    string // created_at, urgency, status, confidence
	SortOrder string // asc, desc

	Page     int
	PageSize int
}

// VoicemailRepository defines the interface for voicemail persistence
type VoicemailRepository interface {
	// Create stores a newly triaged voicemail
	Create(ctx context.Context, voicemail *entities.TriagedVoicemail) error

	// GetByID retrieves a voicemail by its ID
	GetByID(ctx context.Context, id string) (*entities.TriagedVoicemail, error)

	// Update replaces a stored voicemail record
	Update(ctx context.Context, voicemail *entities.TriagedVoicemail) error

	// Delete removes a voicemail record
	Delete(ctx context.Context, id string) error

	// List returns a filtered, sorted page of voicemails plus the total count
	List(ctx context.Context, filter VoicemailFilter) ([]*entities.TriagedVoicemail, int, error)

	// ListByPhoneHash returns all voicemails sharing a caller phone hash
	ListByPhoneHash(ctx context.Context, phoneHash string) ([]*entities.TriagedVoicemail, error)

	// ListPendingCallbacks returns non-archived voicemails awaiting a callback
	ListPendingCallbacks(ctx context.Context) ([]*entities.TriagedVoicemail, error)

	// ListActiveEscalations returns triggered, unacknowledged escalations
	ListActiveEscalations(ctx context.Context) ([]*entities.TriagedVoicemail, error)

	// ListAll returns every stored voicemail, for analytics aggregation
	ListAll(ctx context.Context) ([]*entities.TriagedVoicemail, error)
}
