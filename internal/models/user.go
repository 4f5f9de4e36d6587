package models

import "time"

// UserRole enumerates account roles.
type UserRole string

const (
	RoleAttendee UserRole = "attendee"
	RoleAdmin    UserRole = "admin"
)

// User is a registered account. Any user may organize events.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"fullName"`
	Organization string    `db:"organization" json:"organization,omitempty"`
	Location     string    `db:"location" json:"location,omitempty"`
	Role         UserRole  `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UpdateProfileRequest is the payload for PUT /users/me.
type UpdateProfileRequest struct {
	FullName     string `json:"fullName" validate:"required"`
	Organization string `json:"organization"`
	Location     string `json:"location"`
}
