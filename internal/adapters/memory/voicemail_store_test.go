package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/heidicalls/voicemail-triage/internal/adapters/memory"
	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/domain/repositories"
	apperrors "github.com/heidicalls/voicemail-triage/pkg/errors"
)

func newRecord(id string, urgency int, status entities.VoicemailStatus, createdAt time.Time) *entities.TriagedVoicemail {
	return &entities.TriagedVoicemail{
		VoicemailID:    id,
		Intent:         entities.IntentOther,
		Urgency:        entities.UrgencyInfo{Level: urgency, Confidence: 0.85},
		Status:         status,
		CallbackStatus: entities.CallbackPending,
		CreatedAt:      createdAt,
	}
}

func TestCreateAndGet(t *testing.T) {
	store := memory.NewVoicemailStore()
	ctx := context.Background()

	record := newRecord("vm_1", 3, entities.StatusProcessed, time.Now().UTC())
	assert.NoError(t, store.Create(ctx, record))

	got, err := store.GetByID(ctx, "vm_1")
	assert.NoError(t, err)
	assert.Equal(t, "vm_1", got.VoicemailID)

	// stored copy must not alias the caller's struct
	record.Summary = "mutated after create"
	got, _ = store.GetByID(ctx, "vm_1")
	assert.Empty(t, got.Summary)
}

func TestCreate_DuplicateConflict(t *testing.T) {
	store := memory.NewVoicemailStore()
	ctx := context.Background()

	record := newRecord("vm_1", 3, entities.StatusProcessed, time.Now().UTC())
	assert.NoError(t, store.Create(ctx, record))

	err := store.Create(ctx, record)
	appErr, ok := err.(*apperrors.AppError)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
}

func TestGetByID_NotFound(t *testing.T) {
	store := memory.NewVoicemailStore()

	_, err := store.GetByID(context.Background(), "vm_missing")
	appErr, ok := err.(*apperrors.AppError)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestUpdateAndDelete(t *testing.T) {
	store := memory.NewVoicemailStore()
	ctx := context.Background()

	record := newRecord("vm_1", 3, entities.StatusProcessed, time.Now().UTC())
	assert.NoError(t, store.Create(ctx, record))

	record.Status = entities.StatusActioned
	assert.NoError(t, store.Update(ctx, record))

	got, _ := store.GetByID(ctx, "vm_1")
	assert.Equal(t, entities.StatusActioned, got.Status)

	assert.NoError(t, store.Delete(ctx, "vm_1"))
	_, err := store.GetByID(ctx, "vm_1")
	assert.Error(t, err)

	assert.Error(t, store.Update(ctx, record))
	assert.Error(t, store.Delete(ctx, "vm_1"))
}

func seedListFixtures(t *testing.T, store repositories.VoicemailRepository) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	critical := newRecord("vm_critical", 5, entities.StatusProcessed, now.Add(-1*time.Hour))
	critical.Intent = entities.IntentEmergency
	critical.ExtractedEntities = &entities.ExtractedEntities{CallbackNumber: "0412345678"}

	routine := newRecord("vm_routine", 2, entities.StatusProcessed, now.Add(-2*time.Hour))
	routine.Intent = entities.IntentBooking

	ambiguous := newRecord("vm_ambiguous", 3, entities.StatusProcessed, now.Add(-3*time.Hour))
	ambiguous.Intent = entities.IntentAmbiguous
	ambiguous.UIState = &entities.UIState{IsAmbiguous: true}

	oldActioned := newRecord("vm_old_actioned", 4, entities.StatusActioned, now.Add(-72*time.Hour))

	for _, v := range []*entities.TriagedVoicemail{critical, routine, ambiguous, oldActioned} {
		assert.NoError(t, store.Create(ctx, v))
	}
}

func TestList_DefaultSortAndHideOldActioned(t *testing.T) {
	store := memory.NewVoicemailStore()
	seedListFixtures(t, store)

	items, total, err := store.List(context.Background(), repositories.VoicemailFilter{
		HideOldActioned: true,
		SortBy:          "urgency",
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "vm_critical", items[0].VoicemailID)
	for _, v := range items {
		assert.NotEqual(t, "vm_old_actioned", v.VoicemailID)
	}
}

func TestList_UrgencyRange(t *testing.T) {
	store := memory.NewVoicemailStore()
	seedListFixtures(t, store)

	items, total, err := store.List(context.Background(), repositories.VoicemailFilter{
		UrgencyMin: 3,
		UrgencyMax: 4,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, v := range items {
		assert.GreaterOrEqual(t, v.Urgency.Level, 3)
		assert.LessOrEqual(t, v.Urgency.Level, 4)
	}
}

func TestList_AmbiguousOnly(t *testing.T) {
	store := memory.NewVoicemailStore()
	seedListFixtures(t, store)

	items, total, err := store.List(context.Background(), repositories.VoicemailFilter{
		AmbiguousOnly: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "vm_ambiguous", items[0].VoicemailID)
}

func TestList_PhonePartialMatch(t *testing.T) {
	store := memory.NewVoicemailStore()
	seedListFixtures(t, store)

	items, total, err := store.List(context.Background(), repositories.VoicemailFilter{
		Phone: "345 678",
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "vm_critical", items[0].VoicemailID)
}

func TestList_Pagination(t *testing.T) {
	store := memory.NewVoicemailStore()
	seedListFixtures(t, store)

	page1, total, err := store.List(context.Background(), repositories.VoicemailFilter{
		HideOldActioned: true,
		Page:            1,
		PageSize:        2,
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page1, 2)

	page2, total, err := store.List(context.Background(), repositories.VoicemailFilter{
		HideOldActioned: true,
		Page:            2,
		PageSize:        2,
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page2, 1)

	empty, total, err := store.List(context.Background(), repositories.VoicemailFilter{
		HideOldActioned: true,
		Page:            5,
		PageSize:        2,
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, empty)
}

func TestListByPhoneHash_NewestFirst(t *testing.T) {
	store := memory.NewVoicemailStore()
	ctx := context.Background()
	now := time.Now().UTC()

	older := newRecord("vm_older", 3, entities.StatusProcessed, now.Add(-2*time.Hour))
	older.CallerPhoneHash = "abc123"
	newer := newRecord("vm_newer", 3, entities.StatusProcessed, now.Add(-1*time.Hour))
	newer.CallerPhoneHash = "abc123"
	unrelated := newRecord("vm_other", 3, entities.StatusProcessed, now)
	unrelated.CallerPhoneHash = "def456"

	for _, v := range []*entities.TriagedVoicemail{older, newer, unrelated} {
		assert.NoError(t, store.Create(ctx, v))
	}

	result, err := store.ListByPhoneHash(ctx, "abc123")
	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "vm_newer", result[0].VoicemailID)
	assert.Equal(t, "vm_older", result[1].VoicemailID)
}

func TestListPendingCallbacks_Ordering(t *testing.T) {
	store := memory.NewVoicemailStore()
	ctx := context.Background()
	now := time.Now().UTC()

	lowOld := newRecord("vm_low_old", 2, entities.StatusProcessed, now.Add(-4*time.Hour))
	highNew := newRecord("vm_high_new", 5, entities.StatusProcessed, now.Add(-1*time.Hour))
	highOld := newRecord("vm_high_old", 5, entities.StatusProcessed, now.Add(-3*time.Hour))

	done := newRecord("vm_done", 5, entities.StatusProcessed, now)
	done.CallbackStatus = entities.CallbackSuccessful

	archived := newRecord("vm_archived", 5, entities.StatusArchived, now)

	for _, v := range []*entities.TriagedVoicemail{lowOld, highNew, highOld, done, archived} {
		assert.NoError(t, store.Create(ctx, v))
	}

	result, err := store.ListPendingCallbacks(ctx)
	assert.NoError(t, err)
	assert.Len(t, result, 3)
	assert.Equal(t, "vm_high_old", result[0].VoicemailID)
	assert.Equal(t, "vm_high_new", result[1].VoicemailID)
	assert.Equal(t, "vm_low_old", result[2].VoicemailID)
}

func TestListActiveEscalations(t *testing.T) {
	store := memory.NewVoicemailStore()
	ctx := context.Background()
	now := time.Now().UTC()

	active := newRecord("vm_active", 5, entities.StatusProcessed, now)
	active.Escalation = &entities.EscalationInfo{EscalationTriggered: true}

	acknowledged := newRecord("vm_acked", 5, entities.StatusProcessed, now)
	acknowledged.Escalation = &entities.EscalationInfo{EscalationTriggered: true}
	acknowledged.EscalationAcknowledged = true

	plain := newRecord("vm_plain", 3, entities.StatusProcessed, now)

	for _, v := range []*entities.TriagedVoicemail{active, acknowledged, plain} {
		assert.NoError(t, store.Create(ctx, v))
	}

	result, err := store.ListActiveEscalations(ctx)
	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "vm_active", result[0].VoicemailID)
}
