package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/httpclient"
)

// AuthService covers sign-up, sign-in, password recovery, token
// verification and the signed-in user's account.
type AuthService struct {
	doer   Doer
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(doer Doer, logger *slog.Logger) *AuthService {
	return &AuthService{doer: doer, logger: logger}
}

// SignUp creates an account. The response carries the new session token.
func (s *AuthService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPost,
		Path:   path(familyAuth, "signup"),
		Route:  route(familyAuth, "signup"),
		Body:   in,
	}, "Sign up failed. Please try again.", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn exchanges credentials for a session token.
func (s *AuthService) SignIn(ctx context.Context, in domain.SignInInput) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPost,
		Path:   path(familyAuth, "signin"),
		Route:  route(familyAuth, "signin"),
		Body:   in,
	}, "Sign in failed. Please try again.", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword asks the upstream to email a reset code.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPost,
		Path:   path(familyAuth, "forgotPasswords"),
		Route:  route(familyAuth, "forgotPasswords"),
		Body:   map[string]string{"email": email},
	}, "Failed to request password reset.", nil)
}

// VerifyResetCode checks a reset code received by email.
func (s *AuthService) VerifyResetCode(ctx context.Context, code string) error {
	return call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPost,
		Path:   path(familyAuth, "verifyResetCode"),
		Route:  route(familyAuth, "verifyResetCode"),
		Body:   map[string]string{"resetCode": code},
	}, "Invalid or expired reset code.", nil)
}

// ResetPassword sets a new password after a verified reset code. The
// upstream answers with a fresh token.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPut,
		Path:   path(familyAuth, "resetPassword"),
		Route:  route(familyAuth, "resetPassword"),
		Body:   map[string]string{"email": email, "newPassword": newPassword},
	}, "Failed to reset password.", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyToken asks the upstream whether token is still valid and who it
// belongs to.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.VerifyResponse, error) {
	var out domain.VerifyResponse
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyAuth, "verifyToken"),
		Route:  route(familyAuth, "verifyToken"),
		Token:  token,
	}, "Failed to verify session.", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the account behind token.
func (s *AuthService) Profile(ctx context.Context, token string) (*domain.Identity, error) {
	var out struct {
		Data *domain.Identity `json:"data"`
		User *domain.Identity `json:"user"`
	}
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyUsers, "profile"),
		Route:  route(familyUsers, "profile"),
		Token:  token,
	}, "Failed to get user profile.", &out)
	if err != nil {
		return nil, err
	}
	switch {
	case out.Data != nil:
		return out.Data, nil
	case out.User != nil:
		return out.User, nil
	default:
		return &domain.Identity{}, nil
	}
}

// UpdateMe saves the account's name, email and phone on the server.
func (s *AuthService) UpdateMe(ctx context.Context, token string, in domain.ProfileUpdate) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPut,
		Path:   path(familyUsers, "updateMe"),
		Route:  route(familyUsers, "updateMe"),
		Body:   in,
		Token:  token,
	}, "Failed to update profile details.", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the account password. On success the upstream
// issues a new token and the old one stops working.
func (s *AuthService) ChangePassword(ctx context.Context, token string, in domain.PasswordChange) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPut,
		Path:   path(familyUsers, "changeMyPassword"),
		Route:  route(familyUsers, "changeMyPassword"),
		Body:   in,
		Token:  token,
	}, "Failed to change password.", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
