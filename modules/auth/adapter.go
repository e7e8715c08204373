package auth

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/todo-app/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	// Authenticate reports whether the credentials match a stored user.
	Authenticate(ctx context.Context, username, password string) (userID string, ok bool, err error)
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	// GetUser returns ErrUserNotFound for an unknown id.
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ValidateUser(ctx context.Context, userID string) (bool, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

func (a *AuthAdapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// Authenticate checks credentials through the authenticate service.
func (a *AuthAdapter) Authenticate(ctx context.Context, username, password string) (string, bool, error) {
	req := AuthenticateRequest{Username: username, Password: password}
	var resp AuthenticateResponse

	if err := a.call(ctx, "authenticate", &req, &resp); err != nil {
		return "", false, err
	}
	return resp.UserID, resp.Matched, nil
}

// Register creates an account. Refusals come back as the package's sentinel errors.
func (a *AuthAdapter) Register(ctx context.Context, username, password string) (*domain.User, error) {
	req := RegisterRequest{Username: username, Password: password}
	var resp RegisterResponse

	if err := a.call(ctx, "register", &req, &resp); err != nil {
		return nil, err
	}
	if err := errorFromCode(resp.Code); err != nil {
		return nil, err
	}

	return &domain.User{
		ID:        resp.ID,
		Username:  resp.Username,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// Login exchanges credentials for a token pair.
func (a *AuthAdapter) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	req := LoginRequest{Username: username, Password: password}
	var resp LoginResponse

	if err := a.call(ctx, "login", &req, &resp); err != nil {
		return nil, err
	}
	if err := errorFromCode(resp.Code); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	}, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (a *AuthAdapter) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	req := RefreshRequest{RefreshToken: refreshToken}
	var resp RefreshResponse

	if err := a.call(ctx, "refresh-token", &req, &resp); err != nil {
		return nil, err
	}
	if err := errorFromCode(resp.Code); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	}, nil
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := a.call(ctx, "validate-token", &req, &resp); err != nil {
		return nil, err
	}

	if !resp.Valid {
		if err := errorFromCode(resp.Error); err != nil {
			return nil, err
		}
		return nil, ErrInvalidToken
	}

	return &domain.Claims{
		UserID:   resp.UserID,
		Username: resp.Username,
	}, nil
}

// GetUser retrieves a user by ID.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse

	if err := a.call(ctx, "get-user", &req, &resp); err != nil {
		return nil, err
	}
	if !resp.Found {
		return nil, ErrUserNotFound
	}

	return &domain.User{
		ID:        resp.ID,
		Username:  resp.Username,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// ValidateUser reports whether userID names an existing account.
func (a *AuthAdapter) ValidateUser(ctx context.Context, userID string) (bool, error) {
	req := ValidateUserRequest{UserID: userID}
	var resp ValidateUserResponse

	if err := a.call(ctx, "validate-user", &req, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}
