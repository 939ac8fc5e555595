package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

const trendDays = 7

// OverallStats is the top-line dashboard summary.
type OverallStats struct {
	TotalComplaints    int64   `json:"totalComplaints"`
	ResolvedComplaints int64   `json:"resolvedComplaints"`
	ResolutionRate     float64 `json:"resolutionRate"`
	AvgResponseDays    float64 `json:"avgResponseDays"`
	ActiveAgencies     int64   `json:"activeAgencies"`
}

// TrendPoint is one calendar day's submission count.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// AgencyPerformance summarizes one agency's workload.
type AgencyPerformance struct {
	AgencyID       int64   `json:"agencyId"`
	Name           string  `json:"name"`
	Total          int64   `json:"total"`
	Resolved       int64   `json:"resolved"`
	Pending        int64   `json:"pending"`
	ResolutionRate float64 `json:"resolutionRate"`
}

// AnalyticsService computes dashboard aggregates over the complaint corpus.
// All calendar bucketing happens in UTC so the numbers do not shift with
// the server's timezone.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	agencies  repository.AgencyRepository
	logger    *zap.Logger
	now       func() time.Time
}

// AnalyticsDependencies bundles collaborators.
type AnalyticsDependencies struct {
	AnalyticsRepo repository.AnalyticsRepository
	AgencyRepo    repository.AgencyRepository
	Logger        *zap.Logger
}

// NewAnalyticsService creates the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	return &AnalyticsService{
		analytics: deps.AnalyticsRepo,
		agencies:  deps.AgencyRepo,
		logger:    deps.Logger,
		now:       time.Now,
	}
}

// Overall computes the summary block: totals, resolution rate as a
// percentage, average response time in fractional days, and the number of
// agencies with at least one assignment. Empty corpus yields zeros, never a
// division error.
func (s *AnalyticsService) Overall(ctx context.Context) (*OverallStats, error) {
	total, err := s.analytics.ComplaintCount(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	resolved, err := s.analytics.CountByStatus(ctx, domain.ComplaintStatusResolved)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	spans, err := s.analytics.ResolutionSpans(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	active, err := s.analytics.ActiveAgencyCount(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &OverallStats{
		TotalComplaints:    total,
		ResolvedComplaints: resolved,
		ActiveAgencies:     active,
	}
	if total > 0 {
		stats.ResolutionRate = float64(resolved) / float64(total) * 100
	}
	if len(spans) > 0 {
		var sumDays float64
		for _, span := range spans {
			sumDays += span.ResolvedAt.Sub(span.CreatedAt).Hours() / 24
		}
		stats.AvgResponseDays = sumDays / float64(len(spans))
	}
	return stats, nil
}

// StatusDistribution returns complaint counts per status.
func (s *AnalyticsService) StatusDistribution(ctx context.Context) ([]repository.StatusCount, error) {
	counts, err := s.analytics.StatusCounts(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return counts, nil
}

// CategoryDistribution returns complaint counts per raw category label.
// Labels are not normalized here; "Roads" and "roads" stay distinct buckets.
func (s *AnalyticsService) CategoryDistribution(ctx context.Context) ([]repository.CategoryCount, error) {
	counts, err := s.analytics.CategoryCounts(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return counts, nil
}

// Trend buckets submissions into the trailing seven UTC calendar days,
// today included, oldest first. Days without submissions appear with a zero
// count so the series always has seven entries.
func (s *AnalyticsService) Trend(ctx context.Context) ([]TrendPoint, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	windowStart := today.AddDate(0, 0, -(trendDays - 1))

	created, err := s.analytics.CreationTimesSince(ctx, windowStart)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	buckets := make(map[string]int64, trendDays)
	for _, t := range created {
		buckets[t.UTC().Format("2006-01-02")]++
	}

	points := make([]TrendPoint, 0, trendDays)
	for i := 0; i < trendDays; i++ {
		day := windowStart.AddDate(0, 0, i).Format("2006-01-02")
		points = append(points, TrendPoint{Date: day, Count: buckets[day]})
	}
	return points, nil
}

// PerAgency reports workload per registered agency. Agencies without a
// single assignment still appear, with zero counts and a zero rate.
func (s *AnalyticsService) PerAgency(ctx context.Context) ([]AgencyPerformance, error) {
	agencies, err := s.agencies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	counts, err := s.analytics.AgencyCounts(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	byAgency := make(map[int64]repository.AgencyCount, len(counts))
	for _, entry := range counts {
		byAgency[entry.AgencyID] = entry
	}

	result := make([]AgencyPerformance, 0, len(agencies))
	for _, agency := range agencies {
		entry := byAgency[agency.ID]
		perf := AgencyPerformance{
			AgencyID: agency.ID,
			Name:     agency.Name,
			Total:    entry.Total,
			Resolved: entry.Resolved,
			Pending:  entry.Total - entry.Resolved,
		}
		if entry.Total > 0 {
			perf.ResolutionRate = float64(entry.Resolved) / float64(entry.Total) * 100
		}
		result = append(result, perf)
	}
	return result, nil
}
