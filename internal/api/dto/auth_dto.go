package dto

import "github.com/spec-kit/helpdesk-service/internal/domain"

// LoginRequest payload. Email is the only credential.
type LoginRequest struct {
	Email string `json:"email"`
}

// LoginResponse returns the resolved identity. The session token itself
// travels in the cookie.
type LoginResponse struct {
	Identity domain.Identity `json:"identity"`
}

// LoginOptionResponse is one entry in the login user picker.
type LoginOptionResponse struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// FromUsers maps users onto picker entries.
func FromUsers(users []domain.User) []LoginOptionResponse {
	out := make([]LoginOptionResponse, 0, len(users))
	for _, user := range users {
		out = append(out, LoginOptionResponse{UserID: user.ID, Name: user.Name, Email: user.Email})
	}
	return out
}
