package auth

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user account can hold. Admin is required for destructive account
// operations.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is one account in the local user file. The password hash never leaves
// the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the login response payload.
type Session struct {
	Token     string `json:"token"`
	User      *User  `json:"user"`
	ExpiresAt string `json:"expires_at"`
}
