package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/domain/repositories"
	apperrors "github.com/heidicalls/voicemail-triage/pkg/errors"
)

// Actioned items older than this are hidden from default listings.
// Archived items are always kept.
const actionedHideWindow = 48 * time.Hour

// VoicemailStore is an in-memory voicemail repository used for tests
// and database-free demo runs
type VoicemailStore struct {
	mu    sync.RWMutex
	items map[string]*entities.TriagedVoicemail
}

// NewVoicemailStore creates an empty in-memory store
func NewVoicemailStore() repositories.VoicemailRepository {
	return &VoicemailStore{
		items: make(map[string]*entities.TriagedVoicemail),
	}
}

// Create stores a newly triaged voicemail
func (s *VoicemailStore) Create(ctx context.Context, voicemail *entities.TriagedVoicemail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[voicemail.VoicemailID]; exists {
		return apperrors.NewConflictError("voicemail already exists: " + voicemail.VoicemailID)
	}
	clone := *voicemail
	s.items[voicemail.VoicemailID] = &clone
	return nil
}

// GetByID retrieves a voicemail by its ID
func (s *VoicemailStore) GetByID(ctx context.Context, id string) (*entities.TriagedVoicemail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("voicemail not found: " + id)
	}
	clone := *item
	return &clone, nil
}

// Update replaces a stored voicemail record
func (s *VoicemailStore) Update(ctx context.Context, voicemail *entities.TriagedVoicemail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[voicemail.VoicemailID]; !ok {
		return apperrors.NewNotFoundError("voicemail not found: " + voicemail.VoicemailID)
	}
	clone := *voicemail
	s.items[voicemail.VoicemailID] = &clone
	return nil
}

// Delete removes a voicemail record
func (s *VoicemailStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return apperrors.NewNotFoundError("voicemail not found: " + id)
	}
	delete(s.items, id)
	return nil
}

// List returns a filtered, sorted page of voicemails plus the total count
func (s *VoicemailStore) List(ctx context.Context, filter repositories.VoicemailFilter) ([]*entities.TriagedVoicemail, int, error) {
	s.mu.RLock()
	items := s.snapshot()
	s.mu.RUnlock()

	filtered := make([]*entities.TriagedVoicemail, 0, len(items))
	cutoff := time.Now().UTC().Add(-actionedHideWindow)

	for _, v := range items {
		if filter.HideOldActioned && v.Status == entities.StatusActioned && v.CreatedAt.Before(cutoff) {
			continue
		}
		if filter.Status != "" && string(v.Status) != filter.Status {
			continue
		}
		if filter.UrgencyMin > 0 && v.Urgency.Level < filter.UrgencyMin {
			continue
		}
		if filter.UrgencyMax > 0 && v.Urgency.Level > filter.UrgencyMax {
			continue
		}
		if filter.Intent != "" && string(v.Intent) != filter.Intent {
			continue
		}
		if filter.AmbiguousOnly && !isAmbiguous(v) {
			continue
		}
		if filter.Phone != "" && !matchesPhone(v, filter.Phone) {
			continue
		}
		if filter.Symptom != "" && !matchesKeyword(v, symptomsOf(v), filter.Symptom) {
			continue
		}
		if filter.Medication != "" && !matchesKeyword(v, medicationsOf(v), filter.Medication) {
			continue
		}
		if filter.Doctor != "" && !matchesDoctor(v, filter.Doctor) {
			continue
		}
		filtered = append(filtered, v)
	}

	sortVoicemails(filtered, filter.SortBy, filter.SortOrder)

	total := len(filtered)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []*entities.TriagedVoicemail{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return filtered[start:end], total, nil
}

// ListByPhoneHash returns all voicemails sharing a caller phone hash,
// newest first
func (s *VoicemailStore) ListByPhoneHash(ctx context.Context, phoneHash string) ([]*entities.TriagedVoicemail, error) {
	s.mu.RLock()
	items := s.snapshot()
	s.mu.RUnlock()

	var result []*entities.TriagedVoicemail
	for _, v := range items {
		if v.CallerPhoneHash != "" && v.CallerPhoneHash == phoneHash {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// ListPendingCallbacks returns non-archived voicemails awaiting a
// callback, most urgent and oldest first
func (s *VoicemailStore) ListPendingCallbacks(ctx context.Context) ([]*entities.TriagedVoicemail, error) {
	s.mu.RLock()
	items := s.snapshot()
	s.mu.RUnlock()

	var result []*entities.TriagedVoicemail
	for _, v := range items {
		if v.Status == entities.StatusArchived {
			continue
		}
		switch v.CallbackStatus {
		case entities.CallbackPending, entities.CallbackAttempted, entities.CallbackNoAnswer:
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Urgency.Level != result[j].Urgency.Level {
			return result[i].Urgency.Level > result[j].Urgency.Level
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ListActiveEscalations returns triggered, unacknowledged escalations
func (s *VoicemailStore) ListActiveEscalations(ctx context.Context) ([]*entities.TriagedVoicemail, error) {
	s.mu.RLock()
	items := s.snapshot()
	s.mu.RUnlock()

	var result []*entities.TriagedVoicemail
	for _, v := range items {
		if v.Escalation != nil && v.Escalation.EscalationTriggered && !v.EscalationAcknowledged {
			result = append(result, v)
		}
	}
	return result, nil
}

// ListAll returns every stored voicemail
func (s *VoicemailStore) ListAll(ctx context.Context) ([]*entities.TriagedVoicemail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), nil
}

func (s *VoicemailStore) snapshot() []*entities.TriagedVoicemail {
	items := make([]*entities.TriagedVoicemail, 0, len(s.items))
	for _, v := range s.items {
		clone := *v
		items = append(items, &clone)
	}
	return items
}

func isAmbiguous(v *entities.TriagedVoicemail) bool {
	return v.Intent == entities.IntentAmbiguous || (v.UIState != nil && v.UIState.IsAmbiguous)
}

func matchesPhone(v *entities.TriagedVoicemail, phone string) bool {
	needle := strings.ReplaceAll(strings.ToLower(phone), " ", "")
	if v.CallerPhoneRedacted != "" &&
		strings.Contains(strings.ReplaceAll(strings.ToLower(v.CallerPhoneRedacted), " ", ""), needle) {
		return true
	}
	if v.ExtractedEntities != nil && v.ExtractedEntities.CallbackNumber != "" &&
		strings.Contains(strings.ReplaceAll(strings.ToLower(v.ExtractedEntities.CallbackNumber), " ", ""), needle) {
		return true
	}
	return false
}

func symptomsOf(v *entities.TriagedVoicemail) []string {
	if v.ExtractedEntities == nil {
		return nil
	}
	return v.ExtractedEntities.Symptoms
}

func medicationsOf(v *entities.TriagedVoicemail) []string {
	if v.ExtractedEntities == nil {
		return nil
	}
	return v.ExtractedEntities.MedicationNames
}

// matchesKeyword checks the given entity list, falling back to a
// transcript search
func matchesKeyword(v *entities.TriagedVoicemail, values []string, keyword string) bool {
	needle := strings.ToLower(keyword)
	for _, value := range values {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return v.RedactedTranscript != "" && strings.Contains(strings.ToLower(v.RedactedTranscript), needle)
}

func matchesDoctor(v *entities.TriagedVoicemail, doctor string) bool {
	if v.ExtractedEntities == nil || v.ExtractedEntities.MentionedDoctor == "" {
		return false
	}
	return strings.Contains(strings.ToLower(v.ExtractedEntities.MentionedDoctor), strings.ToLower(doctor))
}

func sortVoicemails(items []*entities.TriagedVoicemail, sortBy, sortOrder string) {
	desc := sortOrder != "asc"

	less := func(i, j int) bool {
		switch sortBy {
		case "urgency":
			return items[i].Urgency.Level < items[j].Urgency.Level
		case "status":
			return items[i].Status < items[j].Status
		case "confidence":
			return items[i].Urgency.Confidence < items[j].Urgency.Confidence
		default:
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
}
