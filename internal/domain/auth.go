package domain

import "time"

// ============================================================
// Users & auth
// ============================================================

// User is an account holder. PasswordHash is a bcrypt hash and never leaves
// the backend.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the payload for creating a user.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the signed access token plus the public user fields.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
