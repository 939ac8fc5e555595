package dto

import "time"

// AgencyRequest payload for creating or updating an agency.
type AgencyRequest struct {
	Name         string   `json:"name"`
	ContactEmail string   `json:"contact_email"`
	Categories   []string `json:"categories"`
}

// AgencyResponse full agency representation.
type AgencyResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	Categories   []string  `json:"categories"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
