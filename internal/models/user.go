package models

import "time"

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the authenticated user's identity held for the duration of
// the browsing session, together with the bearer token the API issued.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}

// Credentials is the payload for login requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the payload for registration requests.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// AuthResponse is what the auth endpoints return on success. Some backends
// omit the token on signup; callers must treat it as optional.
type AuthResponse struct {
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
}
