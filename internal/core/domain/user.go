package domain

import "time"

// DefaultRole is assigned when a user is created without roles.
const DefaultRole = "Employee"

// User is an employee account that notes are assigned to.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DefaultRoles returns the role set applied at creation when none is given.
func DefaultRoles() []string {
	return []string{DefaultRole}
}
