package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated identity through requests.
type JWTClaims struct {
	UserID string   `json:"uid"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and the sanitized user.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// SignupRequest is the payload for POST /auth/signup. AdminPassword is only
// consulted when requesting the admin role.
type SignupRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	FullName      string `json:"fullName" validate:"required"`
	Organization  string `json:"organization"`
	Location      string `json:"location"`
	Role          string `json:"role" validate:"omitempty,oneof=attendee admin"`
	AdminPassword string `json:"adminPassword"`
}

// ChangePasswordRequest is the payload for PUT /users/me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}
