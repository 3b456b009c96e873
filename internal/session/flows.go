package session

import (
	"context"
	"strings"

	"github.com/No25ha/Market/internal/domain"
	apperrors "github.com/No25ha/Market/pkg/errors"
)

// SignIn authenticates with credentials and logs the session in.
func (s *Store) SignIn(ctx context.Context, in domain.SignInInput) (domain.Session, error) {
	resp, err := s.auth.SignIn(ctx, in)
	if err != nil {
		return s.Snapshot(), err
	}
	return s.loginFromResponse(ctx, resp)
}

// SignUp creates an account and logs the new session in.
func (s *Store) SignUp(ctx context.Context, in domain.SignUpInput) (domain.Session, error) {
	resp, err := s.auth.SignUp(ctx, in)
	if err != nil {
		return s.Snapshot(), err
	}
	return s.loginFromResponse(ctx, resp)
}

func (s *Store) loginFromResponse(ctx context.Context, resp *domain.AuthResponse) (domain.Session, error) {
	if resp.Token == "" || resp.User == nil {
		s.logger.ErrorContext(ctx, "auth response missing token or user")
		return s.Snapshot(), apperrors.Internal(errMalformedAuthResponse)
	}
	return s.Login(ctx, resp.Token, resp.User), nil
}

// SaveProfile updates the account on the server, then merges the same
// fields into the local identity.
func (s *Store) SaveProfile(ctx context.Context, in domain.ProfileUpdate) (domain.Session, error) {
	token := s.Token()
	if token == "" {
		return s.Snapshot(), apperrors.Unauthorized("Please login to update your profile")
	}
	if _, err := s.auth.UpdateMe(ctx, token, in); err != nil {
		return s.Snapshot(), err
	}

	name, email, phone := in.Name, in.Email, in.Phone
	return s.UpdateProfile(ctx, domain.ProfilePatch{Name: &name, Email: &email, Phone: &phone}), nil
}

// ChangePassword changes the account password. The upstream issues a new
// token, which replaces the current one. An error asking the shopper to
// log in again ends the session.
func (s *Store) ChangePassword(ctx context.Context, in domain.PasswordChange) (domain.Session, error) {
	token := s.Token()
	if token == "" {
		return s.Snapshot(), apperrors.Unauthorized("Please login to change your password")
	}

	resp, err := s.auth.ChangePassword(ctx, token, in)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "login again") {
			s.logout(ctx, "password change requires login")
		}
		return s.Snapshot(), err
	}

	if resp.Token == "" {
		return s.Snapshot(), nil
	}

	identity := resp.User
	if identity == nil {
		if u := s.User(); u != nil {
			identity = &domain.Identity{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
		}
	}
	return s.Login(ctx, resp.Token, identity), nil
}
