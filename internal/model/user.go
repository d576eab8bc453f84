package model

import "github.com/google/uuid"

// Role is the closed set of account roles. The role is assigned at
// registration and never changes afterwards.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// Caller is the verified identity threaded into every operation.
// Sourced from the token, never from client-supplied fields.
type Caller struct {
	ID   uuid.UUID
	Role Role
}

// User represents a registered account, patient or doctor.
type User struct {
	Base
	Email        string `json:"email" db:"email"`
	FullName     string `json:"full_name" db:"full_name"`
	Password     string `json:"password,omitempty" db:"-"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
}

// RegisterRequest represents registration parameters. Specialization
// and bio are only consulted when role is doctor.
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	FullName       string `json:"full_name" binding:"required"`
	Role           Role   `json:"role" binding:"required,oneof=patient doctor"`
	Specialization string `json:"specialization"`
	Bio            string `json:"bio"`
}

// LoginRequest represents login parameters
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenClaims is the verified caller identity extracted from a token.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
