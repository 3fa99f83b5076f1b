package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/heidicalls/voicemail-triage/internal/adapters/memory"
	"github.com/heidicalls/voicemail-triage/internal/application/services"
	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
)

func TestSummary_EmptyStore(t *testing.T) {
	service := services.NewAnalyticsService(memory.NewVoicemailStore(), nil)

	summary, err := service.Summary(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, summary.TotalVoicemails)
	assert.Equal(t, 0, summary.UrgencyDistribution["critical"])
}

func TestSummary_Aggregates(t *testing.T) {
	store := memory.NewVoicemailStore()
	ctx := context.Background()
	now := time.Now().UTC()
	processed := now.Add(-30 * time.Minute)

	records := []*entities.TriagedVoicemail{
		{
			VoicemailID: "vm_1",
			Language:    "English",
			Intent:      entities.IntentEmergency,
			Urgency:     entities.UrgencyInfo{Level: 5, Confidence: 0.92},
			Status:      entities.StatusProcessed,
			CreatedAt:   now.Add(-1 * time.Hour),
			ProcessedAt: &processed,
		},
		{
			VoicemailID: "vm_2",
			Language:    "English",
			Intent:      entities.IntentBooking,
			Urgency:     entities.UrgencyInfo{Level: 3, Confidence: 0.85},
			Status:      entities.StatusPending,
			CreatedAt:   now.Add(-2 * time.Hour),
		},
		{
			VoicemailID: "vm_3",
			Language:    "Vietnamese",
			Intent:      entities.IntentAmbiguous,
			Urgency:     entities.UrgencyInfo{Level: 2, Confidence: 0.3},
			UIState:     &entities.UIState{IsAmbiguous: true},
			Status:      entities.StatusProcessed,
			CreatedAt:   now.Add(-3 * time.Hour),
		},
	}
	for _, r := range records {
		assert.NoError(t, store.Create(ctx, r))
	}

	service := services.NewAnalyticsService(store, nil)
	summary, err := service.Summary(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 3, summary.TotalVoicemails)
	assert.Equal(t, 1, summary.PendingCount)
	assert.Equal(t, 1, summary.ProcessedToday)
	assert.Equal(t, 1, summary.UrgencyDistribution["critical"])
	assert.Equal(t, 1, summary.UrgencyDistribution["standard"])
	assert.Equal(t, 1, summary.UrgencyDistribution["moderate"])
	assert.Equal(t, 1, summary.IntentDistribution[string(entities.IntentEmergency)])
	assert.Equal(t, 2, summary.LanguageDistribution["English"])
	assert.Equal(t, 1, summary.AmbiguousCount)
	assert.Equal(t, 1, summary.LowConfidenceCount)
	assert.InDelta(t, 30*60*1000, summary.AvgProcessingTimeMs, 1000)
}

func TestStaffMetrics_GroupsByAssignee(t *testing.T) {
	store := memory.NewVoicemailStore()
	ctx := context.Background()

	records := []*entities.TriagedVoicemail{
		{VoicemailID: "vm_1", AssignedTo: "nurse_amy", Status: entities.StatusActioned},
		{VoicemailID: "vm_2", AssignedTo: "nurse_amy", Status: entities.StatusPending},
		{VoicemailID: "vm_3", AssignedTo: "dr_chen", Status: entities.StatusProcessed},
		{VoicemailID: "vm_4", Status: entities.StatusPending},
		{VoicemailID: "vm_5", AssignedTo: "nurse_amy", Status: entities.StatusArchived},
	}
	for _, r := range records {
		assert.NoError(t, store.Create(ctx, r))
	}

	service := services.NewAnalyticsService(store, nil)
	metrics, unassigned, err := service.StaffMetrics(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, unassigned)
	assert.Len(t, metrics, 2)

	amy := metrics["nurse_amy"]
	assert.Equal(t, 3, amy.Total)
	assert.Equal(t, 1, amy.Actioned)
	assert.Equal(t, 1, amy.Pending)

	// processed still counts as awaiting action
	chen := metrics["dr_chen"]
	assert.Equal(t, 1, chen.Total)
	assert.Equal(t, 0, chen.Actioned)
	assert.Equal(t, 1, chen.Pending)
}

func TestUrgencyTimeline_BucketsLast24Hours(t *testing.T) {
	store := memory.NewVoicemailStore()
	ctx := context.Background()
	now := time.Now().UTC()

	recent := &entities.TriagedVoicemail{
		VoicemailID: "vm_recent",
		Intent:      entities.IntentEmergency,
		Urgency:     entities.UrgencyInfo{Level: 5},
		Status:      entities.StatusProcessed,
		CreatedAt:   now.Add(-30 * time.Minute),
	}
	stale := &entities.TriagedVoicemail{
		VoicemailID: "vm_stale",
		Intent:      entities.IntentOther,
		Urgency:     entities.UrgencyInfo{Level: 3},
		Status:      entities.StatusProcessed,
		CreatedAt:   now.Add(-48 * time.Hour),
	}
	assert.NoError(t, store.Create(ctx, recent))
	assert.NoError(t, store.Create(ctx, stale))

	service := services.NewAnalyticsService(store, nil)
	timeline, err := service.UrgencyTimeline(ctx)

	assert.NoError(t, err)
	assert.Len(t, timeline, 25)

	var totalCritical, totalAll int
	for _, bucket := range timeline {
		totalCritical += bucket.Critical
		totalAll += bucket.Total
	}
	assert.Equal(t, 1, totalCritical)
	assert.Equal(t, 1, totalAll)
}
