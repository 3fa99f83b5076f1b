package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/heidicalls/voicemail-triage/internal/domain/entities"
	"github.com/heidicalls/voicemail-triage/internal/domain/providers"
	"github.com/heidicalls/voicemail-triage/internal/domain/repositories"
	"github.com/heidicalls/voicemail-triage/internal/infrastructure/observability"
)

const (
	analyticsSummaryCacheKey = "analytics:summary"
	analyticsSummaryTTL      = 30 // seconds
)

var urgencyBuckets = map[int]string{
	5: "critical",
	4: "high",
	3: "standard",
	2: "moderate",
	1: "low",
}

// AnalyticsService aggregates dashboard metrics over the voicemail
// store. The summary is cached briefly since dashboards poll it.
type AnalyticsService struct {
	repo  repositories.VoicemailRepository
	cache providers.CacheProvider
}

// NewAnalyticsService creates an analytics service. The cache is optional.
func NewAnalyticsService(repo repositories.VoicemailRepository, cache providers.CacheProvider) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: cache}
}

// Summary returns aggregate metrics for the voicemail dashboard
func (s *AnalyticsService) Summary(ctx context.Context) (*entities.AnalyticsSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, analyticsSummaryCacheKey); err == nil {
			var summary entities.AnalyticsSummary
			if err := json.Unmarshal(cached, &summary); err == nil {
				return &summary, nil
			}
		}
	}

	voicemails, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &entities.AnalyticsSummary{
		UrgencyDistribution:  map[string]int{"critical": 0, "high": 0, "standard": 0, "moderate": 0, "low": 0},
		IntentDistribution:   map[string]int{},
		LanguageDistribution: map[string]int{},
	}

	if len(voicemails) == 0 {
		return summary, nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var totalProcessingMs float64
	var processedCount int

	for _, v := range voicemails {
		summary.TotalVoicemails++

		if v.Status == entities.StatusPending {
			summary.PendingCount++
		}
		if v.ProcessedAt != nil && !v.ProcessedAt.UTC().Before(today) {
			summary.ProcessedToday++
		}
		if bucket, ok := urgencyBuckets[v.Urgency.Level]; ok {
			summary.UrgencyDistribution[bucket]++
		}
		summary.IntentDistribution[string(v.Intent)]++
		summary.LanguageDistribution[v.Language]++

		if v.Intent == entities.IntentAmbiguous || (v.UIState != nil && v.UIState.IsAmbiguous) {
			summary.AmbiguousCount++
		}
		if v.Urgency.Confidence < 0.5 {
			summary.LowConfidenceCount++
		}
		if v.ProcessedAt != nil {
			totalProcessingMs += float64(v.ProcessedAt.Sub(v.CreatedAt).Milliseconds())
			processedCount++
		}
	}

	if processedCount > 0 {
		summary.AvgProcessingTimeMs = totalProcessingMs / float64(processedCount)
	}

	if s.cache != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, analyticsSummaryCacheKey, data, analyticsSummaryTTL); err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to cache analytics summary")
			}
		}
	}

	return summary, nil
}

// StaffMetric is one staff member's voicemail workload
type StaffMetric struct {
	Total    int `json:"total"`
	Actioned int `json:"actioned"`
	Pending  int `json:"pending"`
}

// StaffMetrics groups voicemails by the staff member they are assigned
// to. The second return value counts unassigned voicemails.
func (s *AnalyticsService) StaffMetrics(ctx context.Context) (map[string]*StaffMetric, int, error) {
	voicemails, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	metrics := map[string]*StaffMetric{}
	unassigned := 0
	for _, v := range voicemails {
		if v.AssignedTo == "" {
			unassigned++
			continue
		}
		metric, ok := metrics[v.AssignedTo]
		if !ok {
			metric = &StaffMetric{}
			metrics[v.AssignedTo] = metric
		}
		metric.Total++
		switch v.Status {
		case entities.StatusActioned:
			metric.Actioned++
		case entities.StatusPending, entities.StatusProcessed:
			metric.Pending++
		}
	}
	return metrics, unassigned, nil
}

// TimelineBucket is one hour of urgency counts
type TimelineBucket struct {
	Hour     string `json:"hour"`
	Critical int    `json:"critical"`
	High     int    `json:"high"`
	Standard int    `json:"standard"`
	Moderate int    `json:"moderate"`
	Low      int    `json:"low"`
	Total    int    `json:"total"`
}

// UrgencyTimeline returns an hourly urgency breakdown over the last 24 hours
func (s *AnalyticsService) UrgencyTimeline(ctx context.Context) ([]TimelineBucket, error) {
	voicemails, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	timeline := make([]TimelineBucket, 0, 25)

	for hoursAgo := 24; hoursAgo >= 0; hoursAgo-- {
		hourStart := now.Add(-time.Duration(hoursAgo) * time.Hour)
		hourEnd := hourStart.Add(time.Hour)

		bucket := TimelineBucket{Hour: hourStart.Format("15:04")}
		for _, v := range voicemails {
			created := v.CreatedAt.UTC()
			if created.Before(hourStart) || !created.Before(hourEnd) {
				continue
			}
			bucket.Total++
			switch v.Urgency.Level {
			case 5:
				bucket.Critical++
			case 4:
				bucket.High++
			case 3:
				bucket.Standard++
			case 2:
				bucket.Moderate++
			case 1:
				bucket.Low++
			}
		}
		timeline = append(timeline, bucket)
	}

	return timeline, nil
}
