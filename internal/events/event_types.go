package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintAssigned      EventType = "complaint_assigned"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID int64       `json:"complaint_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Title    string                 `json:"title"`
	Category string                 `json:"category"`
	Status   domain.ComplaintStatus `json:"status"`
	OwnerID  int64                  `json:"owner_id"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	AgencyID   *int64                 `json:"agency_id,omitempty"`
	AgencyName string                 `json:"agency_name,omitempty"`
	Status     domain.ComplaintStatus `json:"status"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Response  *string                `json:"response,omitempty"`
}
