package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	// ComplaintStatusPending is the initial state: submitted but not yet
	// evaluated by the assignment coordinator.
	ComplaintStatusPending ComplaintStatus = "pending"
	// ComplaintStatusAssigned means a responsible agency is set.
	ComplaintStatusAssigned ComplaintStatus = "assigned"
	// ComplaintStatusUnassigned means assignment ran and no agency matched.
	ComplaintStatusUnassigned ComplaintStatus = "unassigned"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
)

// Valid reports whether the status is one of the fixed enumeration values.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintStatusPending, ComplaintStatusAssigned, ComplaintStatusUnassigned,
		ComplaintStatusInProgress, ComplaintStatusResolved:
		return true
	}
	return false
}

// MaxAttachments caps attachment references per complaint.
const MaxAttachments = 3

// Complaint is the aggregate for citizen issue reports.
//
// Invariant: Status == assigned implies AgencyID is set; Status == pending or
// unassigned implies AgencyID is nil.
type Complaint struct {
	ID          int64
	Title       string
	Description string
	Category    string
	Status      ComplaintStatus
	Response    *string
	Attachments []string
	OwnerID     int64
	AgencyID    *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}
