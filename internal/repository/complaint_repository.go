package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	OwnerID  *int64
	AgencyID *int64
	Statuses []domain.ComplaintStatus
	Limit    int
	Offset   int
}

// ComplaintRepository encapsulates complaint persistence.
//
// Update applies an optimistic check: the row is written only when its
// stored updated_at still equals expectedUpdatedAt, so two concurrent
// read-modify-write cycles cannot silently clobber each other. A zero-row
// outcome surfaces as pgx.ErrNoRows; callers re-read to distinguish a
// missing row from a concurrent write.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id int64) (*domain.Complaint, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	Update(ctx context.Context, complaint *domain.Complaint, expectedUpdatedAt time.Time) error
	CountByAgency(ctx context.Context, agencyID int64) (int64, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (title, description, category, status, response, attachments, owner_user_id, agency_id, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Status,
		complaint.Response,
		complaint.Attachments,
		complaint.OwnerID,
		complaint.AgencyID,
		complaint.ResolvedAt,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	const query = `
        SELECT id, title, description, category, status, response, attachments,
               owner_user_id, agency_id, created_at, updated_at, resolved_at
        FROM complaints WHERE id=$1`
	var complaint domain.Complaint
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&complaint.ID,
		&complaint.Title,
		&complaint.Description,
		&complaint.Category,
		&complaint.Status,
		&complaint.Response,
		&complaint.Attachments,
		&complaint.OwnerID,
		&complaint.AgencyID,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
		&complaint.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint, expectedUpdatedAt time.Time) error {
	const query = `
        UPDATE complaints SET category=$1, status=$2, response=$3, agency_id=$4, resolved_at=$5, updated_at=NOW()
        WHERE id=$6 AND updated_at=$7
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		complaint.Category,
		complaint.Status,
		complaint.Response,
		complaint.AgencyID,
		complaint.ResolvedAt,
		complaint.ID,
		expectedUpdatedAt,
	).Scan(&complaint.UpdatedAt)
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := `SELECT id, title, description, category, status, response, attachments,
                    owner_user_id, agency_id, created_at, updated_at, resolved_at
             FROM complaints`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_user_id=$%d", len(args)))
	}
	if filter.AgencyID != nil {
		args = append(args, *filter.AgencyID)
		clauses = append(clauses, fmt.Sprintf("agency_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) CountByAgency(ctx context.Context, agencyID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM complaints WHERE agency_id=$1`
	var count int64
	if err := r.pool.QueryRow(ctx, query, agencyID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(
			&complaint.ID,
			&complaint.Title,
			&complaint.Description,
			&complaint.Category,
			&complaint.Status,
			&complaint.Response,
			&complaint.Attachments,
			&complaint.OwnerID,
			&complaint.AgencyID,
			&complaint.CreatedAt,
			&complaint.UpdatedAt,
			&complaint.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}
