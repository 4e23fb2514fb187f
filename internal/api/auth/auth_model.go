package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User is an identity record in the credential store.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the register request body.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AuthResponse is the data payload returned on successful login or register.
type AuthResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
	Email      string    `json:"email"`
}

// Claims carried inside an access token. Subject holds the user id and
// RegisteredClaims.ID holds the unique token id (jti).
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ValidationError carries the itemized messages for a rejected registration.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}
