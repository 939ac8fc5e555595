package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// ComplaintsHandler manages complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Create POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.service.Create(c.UserContext(), caller.UserID, service.CreateComplaintInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Attachments: req.Attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	complaints, err := h.service.List(c.UserContext(), caller, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintResponse(&complaints[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	complaint, err := h.service.Get(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// Respond PATCH /complaints/:id/respond.
func (h *ComplaintsHandler) Respond(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.RespondInput{Response: req.Response}
	if req.Status != nil {
		status := domain.ComplaintStatus(*req.Status)
		input.Status = &status
	}
	complaint, err := h.service.UpdateStatus(c.UserContext(), caller, id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// AssignAgency POST /complaints/:id/assign-agency.
func (h *ComplaintsHandler) AssignAgency(c *fiber.Ctx) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.AssignAgencyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AgencyID <= 0 {
		return apperrors.NewValidationError("agency_id required", nil)
	}
	complaint, err := h.service.AssignAgency(c.UserContext(), caller, id, req.AgencyID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// Classify POST /complaints/classify.
func (h *ComplaintsHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	predictions, err := h.service.Classify(req.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": predictions})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": raw})
	}
	return id, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func complaintResponse(complaint *domain.Complaint) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		ID:          complaint.ID,
		Title:       complaint.Title,
		Description: complaint.Description,
		Category:    complaint.Category,
		Status:      complaint.Status,
		Response:    complaint.Response,
		Attachments: complaint.Attachments,
		OwnerID:     complaint.OwnerID,
		AgencyID:    complaint.AgencyID,
		CreatedAt:   complaint.CreatedAt,
		UpdatedAt:   complaint.UpdatedAt,
		ResolvedAt:  complaint.ResolvedAt,
	}
}
