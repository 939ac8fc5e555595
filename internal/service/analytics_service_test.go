package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func agencyPtr(id int64) *int64 { return &id }

func resolvedComplaint(agencyID int64, createdAt time.Time, days float64) domain.Complaint {
	resolvedAt := createdAt.Add(time.Duration(days * 24 * float64(time.Hour)))
	return domain.Complaint{
		Status:     domain.ComplaintStatusResolved,
		AgencyID:   agencyPtr(agencyID),
		CreatedAt:  createdAt,
		ResolvedAt: &resolvedAt,
	}
}

func newAnalyticsFixture(t *testing.T, complaints []domain.Complaint) (*AnalyticsService, *memAgencyRepo) {
	t.Helper()
	agencies := newMemAgencyRepo()
	svc := NewAnalyticsService(AnalyticsDependencies{
		AnalyticsRepo: &memAnalyticsRepo{complaints: complaints},
		AgencyRepo:    agencies,
	})
	return svc, agencies
}

func TestOverallStats(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	complaints := []domain.Complaint{
		resolvedComplaint(1, base, 2),
		resolvedComplaint(2, base, 4),
		{Status: domain.ComplaintStatusAssigned, AgencyID: agencyPtr(1), CreatedAt: base},
		{Status: domain.ComplaintStatusUnassigned, CreatedAt: base},
	}
	svc, _ := newAnalyticsFixture(t, complaints)

	stats, err := svc.Overall(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalComplaints)
	assert.Equal(t, int64(2), stats.ResolvedComplaints)
	assert.InDelta(t, 50.0, stats.ResolutionRate, 1e-9)
	assert.InDelta(t, 3.0, stats.AvgResponseDays, 1e-9)
	assert.Equal(t, int64(2), stats.ActiveAgencies)
}

func TestOverallStatsEmptyCorpus(t *testing.T) {
	svc, _ := newAnalyticsFixture(t, nil)

	stats, err := svc.Overall(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.TotalComplaints)
	assert.Equal(t, 0.0, stats.ResolutionRate)
	assert.Equal(t, 0.0, stats.AvgResponseDays)
	assert.Equal(t, int64(0), stats.ActiveAgencies)
}

func TestTrendSevenZeroFilledDays(t *testing.T) {
	now := time.Date(2026, 8, 27, 15, 30, 0, 0, time.UTC)
	complaints := []domain.Complaint{
		{CreatedAt: now.Add(-1 * time.Hour)},
		{CreatedAt: now.Add(-1 * time.Hour)},
		{CreatedAt: now.AddDate(0, 0, -3)},
		{CreatedAt: now.AddDate(0, 0, -8)},
	}
	svc, _ := newAnalyticsFixture(t, complaints)
	svc.now = func() time.Time { return now }

	points, err := svc.Trend(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 7)

	assert.Equal(t, "2026-08-21", points[0].Date)
	assert.Equal(t, "2026-08-27", points[6].Date)
	assert.Equal(t, int64(2), points[6].Count)
	assert.Equal(t, int64(1), points[3].Count)

	var total int64
	for _, point := range points {
		total += point.Count
	}
	assert.Equal(t, int64(3), total)
}

func TestTrendDayBoundariesAreUTC(t *testing.T) {
	now := time.Date(2026, 8, 27, 0, 30, 0, 0, time.UTC)
	offset := time.FixedZone("plus5", 5*3600)
	complaints := []domain.Complaint{
		// 2026-08-27 04:00+05:00 is 2026-08-26 23:00 UTC.
		{CreatedAt: time.Date(2026, 8, 27, 4, 0, 0, 0, offset)},
	}
	svc, _ := newAnalyticsFixture(t, complaints)
	svc.now = func() time.Time { return now }

	points, err := svc.Trend(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 7)
	assert.Equal(t, int64(1), points[5].Count)
	assert.Equal(t, int64(0), points[6].Count)
}

func TestPerAgencyIncludesIdleAgencies(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	complaints := []domain.Complaint{
		resolvedComplaint(1, base, 1),
		{Status: domain.ComplaintStatusInProgress, AgencyID: agencyPtr(1), CreatedAt: base},
		{Status: domain.ComplaintStatusAssigned, AgencyID: agencyPtr(1), CreatedAt: base},
	}
	svc, agencies := newAnalyticsFixture(t, complaints)
	seedRoster(t, agencies)

	perf, err := svc.PerAgency(context.Background())
	require.NoError(t, err)
	require.Len(t, perf, 3)

	assert.Equal(t, int64(3), perf[0].Total)
	assert.Equal(t, int64(1), perf[0].Resolved)
	assert.Equal(t, int64(2), perf[0].Pending)
	assert.InDelta(t, 100.0/3.0, perf[0].ResolutionRate, 1e-9)

	// Agencies without assignments still show up, rate zero.
	assert.Equal(t, int64(0), perf[1].Total)
	assert.Equal(t, 0.0, perf[1].ResolutionRate)
	assert.Equal(t, int64(0), perf[2].Total)
}

func TestStatusAndCategoryDistribution(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	complaints := []domain.Complaint{
		{Status: domain.ComplaintStatusAssigned, Category: "roads", CreatedAt: base},
		{Status: domain.ComplaintStatusAssigned, Category: "roads", CreatedAt: base},
		{Status: domain.ComplaintStatusUnassigned, Category: "noise", CreatedAt: base},
	}
	svc, _ := newAnalyticsFixture(t, complaints)

	statuses, err := svc.StatusDistribution(context.Background())
	require.NoError(t, err)
	statusByName := map[domain.ComplaintStatus]int64{}
	for _, entry := range statuses {
		statusByName[entry.Status] = entry.Count
	}
	assert.Equal(t, int64(2), statusByName[domain.ComplaintStatusAssigned])
	assert.Equal(t, int64(1), statusByName[domain.ComplaintStatusUnassigned])

	categories, err := svc.CategoryDistribution(context.Background())
	require.NoError(t, err)
	categoryByName := map[string]int64{}
	for _, entry := range categories {
		categoryByName[entry.Category] = entry.Count
	}
	assert.Equal(t, int64(2), categoryByName["roads"])
	assert.Equal(t, int64(1), categoryByName["noise"])
}
