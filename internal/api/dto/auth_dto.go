package dto

import (
	"time"

	"github.com/spec-kit/school-api/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

// UserSummary is the sanitized principal returned on login.
type UserSummary struct {
	ID      int64       `json:"id"`
	Email   string      `json:"email"`
	Name    string      `json:"name"`
	Surname string      `json:"surname"`
	Type    domain.Role `json:"type"`
}

// LoginResponse standard response for the login endpoint.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}
