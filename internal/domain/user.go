package domain

import "time"

// Role enumerates caller roles.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleAgency  Role = "agency"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleAgency, RoleAdmin:
		return true
	}
	return false
}

// User is the domain model for accounts. AgencyID is meaningful only for
// role agency: such a user belongs to exactly one agency.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	AgencyID     *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
