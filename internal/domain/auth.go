package domain

// Caller is the authenticated identity triple supplied per request by the
// authenticator. The engine trusts it as given. AgencyID is set only for
// role agency.
type Caller struct {
	UserID   int64
	Role     Role
	AgencyID *int64
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
