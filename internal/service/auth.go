package service

import (
	"context"
	"net/http"

	"github.com/dukerupert/adorn/internal/domain"
)

// TokenStore persists the admin bearer token between runs.
type TokenStore interface {
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// AuthService manages the admin session. There is no refresh flow; an
// expired token means signing in again.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Verify(ctx context.Context) (*domain.AdminUser, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	api    Requester
	tokens TokenStore
}

// NewAuthService creates an AuthService. tokens may be nil when the caller
// manages the token itself.
func NewAuthService(api Requester, tokens TokenStore) (AuthService, error) {
	if api == nil {
		return nil, errNilRequester
	}
	return &authService{api: api, tokens: tokens}, nil
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionWire struct {
	Token string   `json:"token" validate:"required"`
	User  userWire `json:"user"`
}

type verifyWire struct {
	User userWire `json:"user"`
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	const op = "auth.login"
	creds := credentials{Email: email, Password: password}
	if err := Validate(op, creds); err != nil {
		return nil, err
	}

	w, err := call[sessionWire](ctx, s.api, op, http.MethodPost, "/auth/admin/login", creds)
	if err != nil {
		return nil, err
	}

	if s.tokens != nil {
		if err := s.tokens.SetToken(ctx, w.Token); err != nil {
			return nil, domain.Internal(err, op, "could not save session")
		}
	}
	return &domain.Session{Token: w.Token, User: w.User.toDomain()}, nil
}

// Verify checks the stored token with the backend. A rejected token is
// cleared so later requests go out unauthenticated.
func (s *authService) Verify(ctx context.Context) (*domain.AdminUser, error) {
	const op = "auth.verify"
	w, err := get[verifyWire](ctx, s.api, op, "/auth/admin/verify")
	if err != nil {
		if domain.IsAuthError(err) && s.tokens != nil {
			_ = s.tokens.Clear(ctx)
		}
		return nil, err
	}
	u := w.User.toDomain()
	return &u, nil
}

func (s *authService) Logout(ctx context.Context) error {
	if s.tokens == nil {
		return nil
	}
	if err := s.tokens.Clear(ctx); err != nil {
		return domain.Internal(err, "auth.logout", "could not clear session")
	}
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.forgot_password"
	body := struct {
		Email string `json:"email" validate:"required,email"`
	}{Email: email}
	if err := Validate(op, body); err != nil {
		return err
	}
	return exec(ctx, s.api, op, http.MethodPost, "/auth/admin/forgot-password", body)
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	const op = "auth.reset_password"
	body := struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}{Token: token, NewPassword: newPassword}
	if err := Validate(op, body); err != nil {
		return err
	}
	return exec(ctx, s.api, op, http.MethodPost, "/auth/admin/reset-password", body)
}
