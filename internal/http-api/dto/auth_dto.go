package dto

import (
	"novelhub/internal/backend"
	"novelhub/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse is returned by login, refresh and a register that signs in.
// SessionID is also set as a cookie.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresAt    int64  `json:"expires_at"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	SessionID    string `json:"session_id,omitempty"`
}

func FromSession(s *backend.Session, sessionID string) AuthResponse {
	tokenType := s.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return AuthResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    tokenType,
		ExpiresAt:    s.Expiry().Unix(),
		UserID:       s.User.ID,
		Email:        s.User.Email,
		SessionID:    sessionID,
	}
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	// ConfirmationRequired is set when the account must be confirmed by
	// e-mail before signing in.
	ConfirmationRequired bool          `json:"confirmation_required"`
	Session              *AuthResponse `json:"session,omitempty"`
}

type MeResponse struct {
	UserID                 string              `json:"user_id"`
	Email                  string              `json:"email,omitempty"`
	Profile                *models.UserProfile `json:"profile,omitempty"`
	NeedsProfileCompletion bool                `json:"needs_profile_completion"`
}
