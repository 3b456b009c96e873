package domain

import "time"

// User is the signed-in shopper.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Identity is an identity payload as returned by the various auth and user
// endpoints. The id may be under "id" or "_id", and the whole payload may be
// wrapped in a "user" field.
type Identity struct {
	ID      string    `json:"id,omitempty"`
	AltID   string    `json:"_id,omitempty"`
	Name    string    `json:"name,omitempty"`
	Email   string    `json:"email,omitempty"`
	Phone   string    `json:"phone,omitempty"`
	Role    string    `json:"role,omitempty"`
	Wrapped *Identity `json:"user,omitempty"`
}

// VerifyResponse is the token verification answer. The identity is found
// under "decoded", under "user", or at the top level.
type VerifyResponse struct {
	Message string    `json:"message,omitempty"`
	Decoded *Identity `json:"decoded,omitempty"`
	Identity
}

// Payload returns the identity carried by the response, preferring the
// decoded token, then the user wrapper, then the response itself.
func (v *VerifyResponse) Payload() *Identity {
	switch {
	case v.Decoded != nil:
		return v.Decoded
	case v.Wrapped != nil:
		return v.Wrapped
	default:
		return &v.Identity
	}
}

// AuthResponse is returned by sign-in, sign-up and password change.
type AuthResponse struct {
	Message string    `json:"message"`
	User    *Identity `json:"user,omitempty"`
	Token   string    `json:"token"`
}

// SignInInput holds sign-in credentials.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUpInput holds the fields for creating an account.
type SignUpInput struct {
	Name       string `json:"name" validate:"required,min=3,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	RePassword string `json:"rePassword" validate:"required,eqfield=Password"`
	Phone      string `json:"phone" validate:"required"`
}

// ProfileUpdate is the payload for updating the account on the server.
type ProfileUpdate struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty"`
}

// PasswordChange is the payload for changing the account password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	RePassword      string `json:"rePassword" validate:"required,eqfield=Password"`
}

// ProfilePatch is a partial identity update. Nil fields are left alone.
type ProfilePatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// SessionState is the phase of the session lifecycle.
type SessionState string

const (
	SessionUnknown       SessionState = "unknown"
	SessionAuthenticated SessionState = "authenticated"
	SessionAnonymous     SessionState = "anonymous"
)

// Session is a point-in-time view of the shopper's session.
type Session struct {
	State     SessionState `json:"state"`
	Token     string       `json:"-"`
	User      *User        `json:"user"`
	IsLoading bool         `json:"isLoading"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

// IsAuthenticated holds iff both a token and a user are present.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}
