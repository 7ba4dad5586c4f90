package http

import (
	"time"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid credentials"`
}

// AuthUser models the sanitized user representation returned by auth endpoints.
type AuthUser struct {
	ID        string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Email     string    `json:"email" example:"traveler@example.com"`
	FullName  *string   `json:"full_name,omitempty" example:"Ada Traveler"`
	Role      string    `json:"role" example:"traveler"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-01T12:00:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2024-01-02T09:30:00Z"`
}

// AuthTokenResponse is returned by endpoints that issue JWT tokens.
type AuthTokenResponse struct {
	Token              string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt          string   `json:"expires_at" example:"2024-01-02T09:30:00Z"`
	InvitationAccepted bool     `json:"invitation_accepted" example:"false"`
	User               AuthUser `json:"user"`
}

// AuthUserResponse wraps a user object.
type AuthUserResponse struct {
	User AuthUser `json:"user"`
}

// SuccessResponse denotes a simple success flag.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// RegisterRequest carries email registration fields. InvitationToken is
// the token from an invitation deep link, if the user arrived through one.
type RegisterRequest struct {
	Email           string  `json:"email" example:"traveler@example.com"`
	Password        string  `json:"password" example:"StrongPass!23"`
	FullName        *string `json:"full_name,omitempty" example:"Ada Traveler"`
	Role            string  `json:"role,omitempty" example:"traveler"`
	InvitationToken string  `json:"invitation_token,omitempty"`
}

// LoginRequest carries email login fields.
type LoginRequest struct {
	Email           string `json:"email" example:"traveler@example.com"`
	Password        string `json:"password" example:"StrongPass!23"`
	InvitationToken string `json:"invitation_token,omitempty"`
}

func toAuthUser(user *domain.User) AuthUser {
	return AuthUser{
		ID:        user.ID.String(),
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
