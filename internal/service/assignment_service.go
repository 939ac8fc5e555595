package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/matcher"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// AssignmentResult reports the outcome of an assignment evaluation.
type AssignmentResult struct {
	Complaint *domain.Complaint
	Agency    *domain.Agency
	Status    domain.ComplaintStatus
}

// AssignmentService routes complaints to the responsible agency.
type AssignmentService struct {
	complaints repository.ComplaintRepository
	agencies   repository.AgencyRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	AgencyRepo    repository.AgencyRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		complaints: deps.ComplaintRepo,
		agencies:   deps.AgencyRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Assign evaluates the complaint's category against the current agency
// roster and persists the outcome: matched agency plus assigned status, or
// unassigned with no agency. Re-running re-evaluates from scratch, so the
// operation is an idempotent overwrite rather than additive.
//
// The roster is read fresh on every call; agencies mutate independently and
// must never be memoized here.
func (s *AssignmentService) Assign(ctx context.Context, complaintID int64) (*AssignmentResult, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}

	roster, err := s.agencies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	matched := matcher.Match(complaint.Category, roster)

	expected := complaint.UpdatedAt
	if matched != nil {
		complaint.AgencyID = &matched.ID
		complaint.Status = domain.ComplaintStatusAssigned
	} else {
		complaint.AgencyID = nil
		complaint.Status = domain.ComplaintStatusUnassigned
	}

	if err := s.complaints.Update(ctx, complaint, expected); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("complaint was modified concurrently", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}

	if matched != nil {
		s.publishAssigned(ctx, complaint, matched)
	} else if s.logger != nil {
		s.logger.Info("no agency matched complaint category",
			zap.Int64("complaint_id", complaint.ID),
			zap.String("category", complaint.Category))
	}

	return &AssignmentResult{
		Complaint: complaint,
		Agency:    matched,
		Status:    complaint.Status,
	}, nil
}

func (s *AssignmentService) publishAssigned(ctx context.Context, complaint *domain.Complaint, agency *domain.Agency) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventComplaintAssigned,
		ComplaintID: complaint.ID,
		Timestamp:   time.Now(),
		Payload: events.ComplaintAssignedPayload{
			AgencyID:   complaint.AgencyID,
			AgencyName: agency.Name,
			Status:     complaint.Status,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
