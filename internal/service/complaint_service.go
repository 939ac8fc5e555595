package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// allowedTransitions enumerates the statuses a complaint may move to via a
// response update, keyed by current status. Pending rows belong to the
// router until an assignment pass has run, and resolved is terminal for
// responders; only an admin reassignment reopens it.
var allowedTransitions = map[domain.ComplaintStatus][]domain.ComplaintStatus{
	domain.ComplaintStatusPending:    {},
	domain.ComplaintStatusAssigned:   {domain.ComplaintStatusAssigned, domain.ComplaintStatusInProgress, domain.ComplaintStatusResolved},
	domain.ComplaintStatusInProgress: {domain.ComplaintStatusAssigned, domain.ComplaintStatusInProgress, domain.ComplaintStatusResolved},
	domain.ComplaintStatusUnassigned: {domain.ComplaintStatusAssigned, domain.ComplaintStatusInProgress, domain.ComplaintStatusResolved},
	domain.ComplaintStatusResolved:   {},
}

func isValidTransition(from, to domain.ComplaintStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// CreateComplaintInput carries the citizen submission.
type CreateComplaintInput struct {
	Title       string
	Description string
	Category    string
	Attachments []string
}

// RespondInput carries a status or response update. At least one of the two
// fields must be set.
type RespondInput struct {
	Status   *domain.ComplaintStatus
	Response *string
}

// ComplaintService implements complaint intake and lifecycle operations.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	agencies   repository.AgencyRepository
	assigner   *AssignmentService
	classifier *classifier.Classifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ComplaintDependencies bundles collaborators.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	AgencyRepo    repository.AgencyRepository
	Assigner      *AssignmentService
	Classifier    *classifier.Classifier
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewComplaintService creates the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		agencies:   deps.AgencyRepo,
		assigner:   deps.Assigner,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create records a citizen submission and immediately runs the assignment
// pass. The stored status is always pending first; the router decides the
// final landing state. A routing failure is logged but never fails the
// submission, the complaint stays pending for a later pass.
func (s *ComplaintService) Create(ctx context.Context, ownerID int64, input CreateComplaintInput) (*domain.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	category := strings.TrimSpace(input.Category)

	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if description == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	if len(input.Attachments) > domain.MaxAttachments {
		return nil, apperrors.NewValidationError("too many attachments", map[string]any{
			"max_attachments": domain.MaxAttachments,
			"got":             len(input.Attachments),
		})
	}

	if category == "" && s.classifier != nil {
		if predictions := s.classifier.Classifications(title + " " + description); len(predictions) > 0 {
			category = predictions[0].Category
			if s.logger != nil {
				s.logger.Info("classified complaint category",
					zap.String("category", category),
					zap.Float64("score", predictions[0].Score))
			}
		}
	}
	if category == "" {
		return nil, apperrors.NewValidationError("category is required", nil)
	}

	complaint := &domain.Complaint{
		Title:       title,
		Description: description,
		Category:    category,
		Status:      domain.ComplaintStatusPending,
		Attachments: input.Attachments,
		OwnerID:     ownerID,
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishCreated(ctx, complaint)

	result, err := s.assigner.Assign(ctx, complaint.ID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("assignment pass failed after creation",
				zap.Int64("complaint_id", complaint.ID),
				zap.Error(err))
		}
		return complaint, nil
	}
	return result.Complaint, nil
}

// Get fetches a complaint visible to the caller. Citizens see only their
// own, agency staff only their agency's, admins everything.
func (s *ComplaintService) Get(ctx context.Context, caller domain.Caller, complaintID int64) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.authorizeRead(caller, complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// List returns complaints scoped by the caller's role.
func (s *ComplaintService) List(ctx context.Context, caller domain.Caller, limit, offset int) ([]domain.Complaint, error) {
	filter := repository.ComplaintFilter{Limit: limit, Offset: offset}

	switch caller.Role {
	case domain.RoleAdmin:
	case domain.RoleAgency:
		if caller.AgencyID == nil {
			return nil, apperrors.NewForbidden("agency caller lacks an agency affiliation")
		}
		filter.AgencyID = caller.AgencyID
	default:
		ownerID := caller.UserID
		filter.OwnerID = &ownerID
	}

	complaints, err := s.complaints.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// UpdateStatus applies an agency or admin response to a complaint. The
// permission checks run before any state validation, so a citizen probing a
// resolved complaint still gets a permissions error, not a state one.
func (s *ComplaintService) UpdateStatus(ctx context.Context, caller domain.Caller, complaintID int64, input RespondInput) (*domain.Complaint, error) {
	if caller.Role != domain.RoleAdmin && caller.Role != domain.RoleAgency {
		return nil, apperrors.NewForbidden("only agency or admin callers may update complaints")
	}

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}

	if caller.Role == domain.RoleAgency {
		if caller.AgencyID == nil || complaint.AgencyID == nil || *caller.AgencyID != *complaint.AgencyID {
			return nil, apperrors.NewForbidden("complaint is not assigned to the caller's agency")
		}
	}

	if input.Status == nil && input.Response == nil {
		return nil, apperrors.NewValidationError("status or response is required", nil)
	}

	oldStatus := complaint.Status
	if input.Status != nil {
		newStatus := *input.Status
		if !newStatus.Valid() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(newStatus)})
		}
		if !isValidTransition(complaint.Status, newStatus) {
			return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
				"from": string(complaint.Status),
				"to":   string(newStatus),
			})
		}
		if newStatus == domain.ComplaintStatusAssigned && complaint.AgencyID == nil {
			return nil, apperrors.NewValidationError("assigned status requires an agency", nil)
		}
		complaint.Status = newStatus
		if newStatus == domain.ComplaintStatusResolved && complaint.ResolvedAt == nil {
			now := time.Now()
			complaint.ResolvedAt = &now
		}
	}
	if input.Response != nil {
		complaint.Response = input.Response
	}

	expected := complaint.UpdatedAt
	if err := s.complaints.Update(ctx, complaint, expected); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.conflictOrNotFound(ctx, complaintID)
		}
		return nil, apperrors.MapError(err)
	}

	s.publishStatusChanged(ctx, complaint, oldStatus)
	return complaint, nil
}

// AssignAgency manually routes a complaint to the given agency. Admin only.
// The status is forced to assigned and an existing response survives; a
// resolved complaint reopens with its resolution timestamp cleared.
func (s *ComplaintService) AssignAgency(ctx context.Context, caller domain.Caller, complaintID, agencyID int64) (*domain.Complaint, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.NewForbidden("only admins may assign agencies")
	}

	agency, err := s.agencies.GetByID(ctx, agencyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("agency does not exist", map[string]any{"agency_id": agencyID})
		}
		return nil, apperrors.MapError(err)
	}

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}

	oldStatus := complaint.Status
	complaint.AgencyID = &agency.ID
	complaint.Status = domain.ComplaintStatusAssigned
	complaint.ResolvedAt = nil

	expected := complaint.UpdatedAt
	if err := s.complaints.Update(ctx, complaint, expected); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.conflictOrNotFound(ctx, complaintID)
		}
		return nil, apperrors.MapError(err)
	}

	s.publishAssigned(ctx, complaint, agency)
	if oldStatus != complaint.Status {
		s.publishStatusChanged(ctx, complaint, oldStatus)
	}
	return complaint, nil
}

// Classify previews the category the text classifier would choose, without
// creating anything.
func (s *ComplaintService) Classify(text string) ([]classifier.Prediction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("text is required", nil)
	}
	if s.classifier == nil {
		return nil, nil
	}
	return s.classifier.Classifications(text), nil
}

func (s *ComplaintService) authorizeRead(caller domain.Caller, complaint *domain.Complaint) error {
	switch caller.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleAgency:
		if caller.AgencyID != nil && complaint.AgencyID != nil && *caller.AgencyID == *complaint.AgencyID {
			return nil
		}
		return apperrors.NewForbidden("complaint is not assigned to the caller's agency")
	default:
		if complaint.OwnerID == caller.UserID {
			return nil
		}
		return apperrors.NewForbidden("complaint belongs to another citizen")
	}
}

// conflictOrNotFound re-reads after a zero-row optimistic update to decide
// which failure actually happened.
func (s *ComplaintService) conflictOrNotFound(ctx context.Context, complaintID int64) error {
	if _, err := s.complaints.GetByID(ctx, complaintID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return apperrors.MapError(err)
	}
	return apperrors.NewConflict("complaint was modified concurrently", map[string]any{"complaint_id": complaintID})
}

func (s *ComplaintService) publishCreated(ctx context.Context, complaint *domain.Complaint) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Timestamp:   time.Now(),
		Payload: events.ComplaintCreatedPayload{
			Title:    complaint.Title,
			Category: complaint.Category,
			Status:   complaint.Status,
			OwnerID:  complaint.OwnerID,
		},
	})
}

func (s *ComplaintService) publishStatusChanged(ctx context.Context, complaint *domain.Complaint, oldStatus domain.ComplaintStatus) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: complaint.ID,
		Timestamp:   time.Now(),
		Payload: events.ComplaintStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: complaint.Status,
			Response:  complaint.Response,
		},
	})
}

func (s *ComplaintService) publishAssigned(ctx context.Context, complaint *domain.Complaint, agency *domain.Agency) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventComplaintAssigned,
		ComplaintID: complaint.ID,
		Timestamp:   time.Now(),
		Payload: events.ComplaintAssignedPayload{
			AgencyID:   complaint.AgencyID,
			AgencyName: agency.Name,
			Status:     complaint.Status,
		},
	})
}
