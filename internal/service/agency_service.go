package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// AgencyInput carries the fields an admin supplies for an agency.
type AgencyInput struct {
	Name         string
	ContactEmail string
	Categories   []string
}

// AgencyService manages the agency registry.
type AgencyService struct {
	agencies   repository.AgencyRepository
	complaints repository.ComplaintRepository
	logger     *zap.Logger
}

// AgencyDependencies bundles collaborators.
type AgencyDependencies struct {
	AgencyRepo    repository.AgencyRepository
	ComplaintRepo repository.ComplaintRepository
	Logger        *zap.Logger
}

// NewAgencyService creates the service.
func NewAgencyService(deps AgencyDependencies) *AgencyService {
	return &AgencyService{
		agencies:   deps.AgencyRepo,
		complaints: deps.ComplaintRepo,
		logger:     deps.Logger,
	}
}

// Create registers a new agency. Contact email must be unique and the
// category set non-empty after normalization.
func (s *AgencyService) Create(ctx context.Context, input AgencyInput) (*domain.Agency, error) {
	agency, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmailAvailable(ctx, agency.ContactEmail, 0); err != nil {
		return nil, err
	}
	if err := s.agencies.Create(ctx, agency); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.logger != nil {
		s.logger.Info("agency registered", zap.Int64("agency_id", agency.ID), zap.String("name", agency.Name))
	}
	return agency, nil
}

// Update replaces an agency's fields. Category changes take effect on the
// next assignment pass; existing assignments are never rewritten here.
func (s *AgencyService) Update(ctx context.Context, id int64, input AgencyInput) (*domain.Agency, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmailAvailable(ctx, updated.ContactEmail, id); err != nil {
		return nil, err
	}

	existing.Name = updated.Name
	existing.ContactEmail = updated.ContactEmail
	existing.Categories = updated.Categories
	if err := s.agencies.Update(ctx, existing); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agency", map[string]any{"agency_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return existing, nil
}

// Delete removes an agency. Refused while any complaint, in any status,
// still references it; those must be reassigned first.
func (s *AgencyService) Delete(ctx context.Context, id int64) error {
	referenced, err := s.complaints.CountByAgency(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if referenced > 0 {
		return apperrors.NewConflict("agency still has complaints assigned", map[string]any{
			"agency_id":  id,
			"complaints": referenced,
		})
	}
	if err := s.agencies.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("agency", map[string]any{"agency_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Get fetches one agency.
func (s *AgencyService) Get(ctx context.Context, id int64) (*domain.Agency, error) {
	agency, err := s.agencies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agency", map[string]any{"agency_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return agency, nil
}

// List returns the full roster in ascending-id order.
func (s *AgencyService) List(ctx context.Context) ([]domain.Agency, error) {
	agencies, err := s.agencies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agencies, nil
}

func (s *AgencyService) validate(input AgencyInput) (*domain.Agency, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.ContactEmail)
	categories := domain.NormalizeCategories(input.Categories)

	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("a valid contact email is required", nil)
	}
	if len(categories) == 0 {
		return nil, apperrors.NewValidationError("at least one category is required", nil)
	}
	// The persisted form is comma-joined; a comma inside a label would split
	// into two labels on the next read.
	for _, category := range categories {
		if strings.Contains(category, ",") {
			return nil, apperrors.NewValidationError("category labels must not contain commas", map[string]any{"category": category})
		}
	}
	return &domain.Agency{Name: name, ContactEmail: email, Categories: categories}, nil
}

func (s *AgencyService) checkEmailAvailable(ctx context.Context, email string, selfID int64) error {
	existing, err := s.agencies.GetByContactEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if existing.ID != selfID {
		return apperrors.NewConflict("contact email already in use", map[string]any{"contact_email": email})
	}
	return nil
}
