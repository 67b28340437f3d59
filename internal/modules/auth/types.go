package auth

import "github.com/wayfarer-labs/planner/internal/models"

const minPasswordLength = 6

// LoginDTO signs in, or signs up first when IsSignUp is set.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IsSignUp bool   `json:"isSignUp"`
}

type LoginResult struct {
	User  *models.UserModel `json:"user"`
	Token string            `json:"token"`
}

type sessionResponse struct {
	User      *models.UserModel `json:"user"`
	SessionID string            `json:"session_id"`
}
