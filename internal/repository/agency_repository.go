package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// AgencyRepository manages agency persistence. List returns the roster in
// ascending-id order, the stable order the category matcher scans in.
//
// The category set is persisted as a comma-joined string; encoding and
// decoding happen only here. In-memory agencies always carry a proper label
// slice with set semantics.
type AgencyRepository interface {
	Create(ctx context.Context, agency *domain.Agency) error
	Update(ctx context.Context, agency *domain.Agency) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Agency, error)
	GetByContactEmail(ctx context.Context, email string) (*domain.Agency, error)
	List(ctx context.Context) ([]domain.Agency, error)
}

type agencyRepository struct {
	pool *pgxpool.Pool
}

// NewAgencyRepository builds the repository.
func NewAgencyRepository(pool *pgxpool.Pool) AgencyRepository {
	return &agencyRepository{pool: pool}
}

func (r *agencyRepository) Create(ctx context.Context, agency *domain.Agency) error {
	const query = `
        INSERT INTO agencies (name, contact_email, categories)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		agency.Name,
		agency.ContactEmail,
		encodeCategories(agency.Categories),
	).Scan(&agency.ID, &agency.CreatedAt, &agency.UpdatedAt)
}

func (r *agencyRepository) Update(ctx context.Context, agency *domain.Agency) error {
	const query = `
        UPDATE agencies SET name=$1, contact_email=$2, categories=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		agency.Name,
		agency.ContactEmail,
		encodeCategories(agency.Categories),
		agency.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agencyRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM agencies WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agencyRepository) GetByID(ctx context.Context, id int64) (*domain.Agency, error) {
	const query = `
        SELECT id, name, contact_email, categories, created_at, updated_at
        FROM agencies WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *agencyRepository) GetByContactEmail(ctx context.Context, email string) (*domain.Agency, error) {
	const query = `
        SELECT id, name, contact_email, categories, created_at, updated_at
        FROM agencies WHERE contact_email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *agencyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Agency, error) {
	var agency domain.Agency
	var encoded string
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&agency.ID,
		&agency.Name,
		&agency.ContactEmail,
		&encoded,
		&agency.CreatedAt,
		&agency.UpdatedAt,
	); err != nil {
		return nil, err
	}
	agency.Categories = decodeCategories(encoded)
	return &agency, nil
}

func (r *agencyRepository) List(ctx context.Context) ([]domain.Agency, error) {
	const query = `
        SELECT id, name, contact_email, categories, created_at, updated_at
        FROM agencies ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agency
	for rows.Next() {
		var agency domain.Agency
		var encoded string
		if err := rows.Scan(
			&agency.ID,
			&agency.Name,
			&agency.ContactEmail,
			&encoded,
			&agency.CreatedAt,
			&agency.UpdatedAt,
		); err != nil {
			return nil, err
		}
		agency.Categories = decodeCategories(encoded)
		result = append(result, agency)
	}
	return result, rows.Err()
}

func encodeCategories(categories []string) string {
	return strings.Join(domain.NormalizeCategories(categories), ",")
}

func decodeCategories(encoded string) []string {
	if encoded == "" {
		return nil
	}
	return domain.NormalizeCategories(strings.Split(encoded, ","))
}
