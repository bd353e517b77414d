package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

// AccessTokenClaims is the typed JWT the identity provider issues to clients.
// The backend only verifies these tokens, it never mints them for end users.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	Role     enums.UserRole `json:"role"`
	Email    string         `json:"email,omitempty"`
	FullName string         `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}
