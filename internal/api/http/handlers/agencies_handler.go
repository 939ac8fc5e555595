package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// AgenciesHandler manages agency registry endpoints.
type AgenciesHandler struct {
	service *service.AgencyService
}

// NewAgenciesHandler constructs handler.
func NewAgenciesHandler(agencyService *service.AgencyService) *AgenciesHandler {
	return &AgenciesHandler{service: agencyService}
}

// List GET /agencies.
func (h *AgenciesHandler) List(c *fiber.Ctx) error {
	agencies, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.AgencyResponse, 0, len(agencies))
	for i := range agencies {
		items = append(items, agencyResponse(&agencies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /agencies/:id.
func (h *AgenciesHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	agency, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agencyResponse(agency)})
}

// Create POST /agencies.
func (h *AgenciesHandler) Create(c *fiber.Ctx) error {
	var req dto.AgencyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agency, err := h.service.Create(c.UserContext(), service.AgencyInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Categories:   req.Categories,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": agencyResponse(agency)})
}

// Update PUT /agencies/:id.
func (h *AgenciesHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.AgencyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agency, err := h.service.Update(c.UserContext(), id, service.AgencyInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Categories:   req.Categories,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agencyResponse(agency)})
}

// Delete DELETE /agencies/:id.
func (h *AgenciesHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func agencyResponse(agency *domain.Agency) dto.AgencyResponse {
	return dto.AgencyResponse{
		ID:           agency.ID,
		Name:         agency.Name,
		ContactEmail: agency.ContactEmail,
		Categories:   agency.Categories,
		CreatedAt:    agency.CreatedAt,
		UpdatedAt:    agency.UpdatedAt,
	}
}
