package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// StatusCount pairs a status value with its complaint count.
type StatusCount struct {
	Status domain.ComplaintStatus
	Count  int64
}

// CategoryCount pairs a raw category label with its complaint count.
type CategoryCount struct {
	Category string
	Count    int64
}

// AgencyCount aggregates complaints assigned to a single agency.
type AgencyCount struct {
	AgencyID int64
	Total    int64
	Resolved int64
}

// ResolutionSpan carries the two timestamps needed for response-time math.
type ResolutionSpan struct {
	CreatedAt  time.Time
	ResolvedAt time.Time
}

// AnalyticsRepository exposes the group-by-count primitives the aggregator
// needs, so the corpus is never pulled into memory wholesale.
type AnalyticsRepository interface {
	ComplaintCount(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.ComplaintStatus) (int64, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
	ResolutionSpans(ctx context.Context) ([]ResolutionSpan, error)
	CreationTimesSince(ctx context.Context, since time.Time) ([]time.Time, error)
	ActiveAgencyCount(ctx context.Context) (int64, error)
	AgencyCounts(ctx context.Context) ([]AgencyCount, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository constructs repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) ComplaintCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints`).Scan(&count)
	return count, err
}

func (r *analyticsRepository) CountByStatus(ctx context.Context, status domain.ComplaintStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints WHERE status=$1`, status).Scan(&count)
	return count, err
}

func (r *analyticsRepository) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	const query = `SELECT status, COUNT(*) FROM complaints GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var entry StatusCount
		if err := rows.Scan(&entry.Status, &entry.Count); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	const query = `SELECT category, COUNT(*) FROM complaints GROUP BY category`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryCount
	for rows.Next() {
		var entry CategoryCount
		if err := rows.Scan(&entry.Category, &entry.Count); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) ResolutionSpans(ctx context.Context) ([]ResolutionSpan, error) {
	const query = `
        SELECT created_at, resolved_at FROM complaints
        WHERE status=$1 AND resolved_at IS NOT NULL`
	rows, err := r.pool.Query(ctx, query, domain.ComplaintStatusResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ResolutionSpan
	for rows.Next() {
		var span ResolutionSpan
		if err := rows.Scan(&span.CreatedAt, &span.ResolvedAt); err != nil {
			return nil, err
		}
		result = append(result, span)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) CreationTimesSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	const query = `SELECT created_at FROM complaints WHERE created_at >= $1`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var created time.Time
		if err := rows.Scan(&created); err != nil {
			return nil, err
		}
		result = append(result, created)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) ActiveAgencyCount(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(DISTINCT agency_id) FROM complaints WHERE agency_id IS NOT NULL`
	var count int64
	err := r.pool.QueryRow(ctx, query).Scan(&count)
	return count, err
}

func (r *analyticsRepository) AgencyCounts(ctx context.Context) ([]AgencyCount, error) {
	const query = `
        SELECT agency_id, COUNT(*), COUNT(*) FILTER (WHERE status=$1)
        FROM complaints WHERE agency_id IS NOT NULL
        GROUP BY agency_id`
	rows, err := r.pool.Query(ctx, query, domain.ComplaintStatusResolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AgencyCount
	for rows.Next() {
		var entry AgencyCount
		if err := rows.Scan(&entry.AgencyID, &entry.Total, &entry.Resolved); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
