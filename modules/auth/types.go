package auth

import (
	"errors"
	"fmt"
	"time"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse represents a user registration response.
// Code is set instead of ID when registration was refused.
type RegisterResponse struct {
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Code      string    `json:"code,omitempty"`
}

// AuthenticateRequest carries credentials to check.
type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthenticateResponse reports whether the credentials matched a user.
type AuthenticateResponse struct {
	Matched bool   `json:"matched"`
	UserID  string `json:"user_id,omitempty"`
}

// LoginRequest represents a token login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a user login response with tokens.
type LoginResponse struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Code         string `json:"code,omitempty"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse represents a token refresh response.
type RefreshResponse struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Code         string `json:"code,omitempty"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid    bool   `json:"valid"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse represents a get user response.
type GetUserResponse struct {
	Found     bool      `json:"found"`
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateUserRequest asks whether a user id exists.
type ValidateUserRequest struct {
	UserID string `json:"user_id"`
}

// ValidateUserResponse is the response for validate-user.
type ValidateUserResponse struct {
	Valid bool `json:"valid"`
}

// errorCodes lists the domain errors that cross the service container as
// response codes rather than transport errors.
var errorCodes = map[string]error{
	"user_exists":         ErrUserExists,
	"weak_password":       ErrWeakPassword,
	"password_too_long":   ErrPasswordTooLong,
	"missing_credentials": ErrMissingCredentials,
	"invalid_credentials": ErrInvalidCredentials,
	"invalid_token":       ErrInvalidToken,
	"expired_token":       ErrExpiredToken,
}

func codeOf(err error) (string, bool) {
	for code, target := range errorCodes {
		if errors.Is(err, target) {
			return code, true
		}
	}
	return "", false
}

func errorFromCode(code string) error {
	if code == "" {
		return nil
	}
	if err, ok := errorCodes[code]; ok {
		return err
	}
	return fmt.Errorf("unknown auth error code %q", code)
}
