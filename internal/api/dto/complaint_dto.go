package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Attachments []string `json:"attachments"`
}

// RespondRequest payload for status or response updates.
type RespondRequest struct {
	Status   *string `json:"status"`
	Response *string `json:"response"`
}

// AssignAgencyRequest payload for manual assignment.
type AssignAgencyRequest struct {
	AgencyID int64 `json:"agency_id"`
}

// ClassifyRequest payload for a category preview.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// ComplaintResponse full complaint representation.
type ComplaintResponse struct {
	ID          int64                  `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Status      domain.ComplaintStatus `json:"status"`
	Response    *string                `json:"response"`
	Attachments []string               `json:"attachments"`
	OwnerID     int64                  `json:"owner_id"`
	AgencyID    *int64                 `json:"agency_id"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ResolvedAt  *time.Time             `json:"resolved_at"`
}
