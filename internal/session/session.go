// Package session owns the shopper's authenticated identity and its
// persisted copy.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/eventbus"
	"github.com/No25ha/Market/pkg/httpclient"
	"github.com/No25ha/Market/pkg/kvstore"
)

// Persisted storage keys.
const (
	KeyToken  = "userToken"
	KeyName   = "userName"
	KeyEmail  = "userEmail"
	KeyID     = "userId"
	KeyPhone  = "userPhone"
	KeyCartID = "cartId"
)

var persistedKeys = []string{KeyToken, KeyName, KeyEmail, KeyID, KeyPhone, KeyCartID}

const defaultUserName = "User"

// Authenticator is the subset of the auth API the session depends on.
type Authenticator interface {
	VerifyToken(ctx context.Context, token string) (*domain.VerifyResponse, error)
	SignIn(ctx context.Context, in domain.SignInInput) (*domain.AuthResponse, error)
	SignUp(ctx context.Context, in domain.SignUpInput) (*domain.AuthResponse, error)
	UpdateMe(ctx context.Context, token string, in domain.ProfileUpdate) (*domain.AuthResponse, error)
	ChangePassword(ctx context.Context, token string, in domain.PasswordChange) (*domain.AuthResponse, error)
}

// Change is published after every session transition.
type Change struct {
	Previous domain.Session
	Current  domain.Session
	Reason   string
}

// IdentityChanged reports whether the transition moved to a different
// authenticated identity (or into or out of being authenticated).
func (c Change) IdentityChanged() bool {
	if c.Previous.IsAuthenticated() != c.Current.IsAuthenticated() {
		return true
	}
	if !c.Current.IsAuthenticated() {
		return false
	}
	return c.Previous.Token != c.Current.Token || c.Previous.User.ID != c.Current.User.ID
}

// Store is the session state machine. It is the only writer of session
// state, in memory and in storage.
type Store struct {
	auth    Authenticator
	storage kvstore.Store
	changes *eventbus.Bus[Change]
	logger  *slog.Logger

	// pmu serialises transitions with their storage writes so storage
	// follows the same order as memory.
	pmu sync.Mutex

	mu        sync.RWMutex
	state     domain.SessionState
	token     string
	user      *domain.User
	expiresAt *time.Time
	// gen increments on every transition so a slow Rehydrate cannot
	// overwrite a newer Login or Logout.
	gen uint64
}

// New creates a session in the Unknown state. When authFailures is non-nil
// the session logs out on every invalidated-token event published there.
func New(auth Authenticator, storage kvstore.Store, authFailures *eventbus.Bus[httpclient.AuthFailure], logger *slog.Logger) *Store {
	s := &Store{
		auth:    auth,
		storage: storage,
		changes: eventbus.New[Change](),
		logger:  logger,
		state:   domain.SessionUnknown,
	}
	if authFailures != nil {
		authFailures.Subscribe(s.handleAuthFailure)
	}
	return s
}

// Changes returns the bus on which transitions are published.
func (s *Store) Changes() *eventbus.Bus[Change] {
	return s.changes
}

// Snapshot returns the current session.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() domain.Session {
	sess := domain.Session{
		State:     s.state,
		Token:     s.token,
		IsLoading: s.state == domain.SessionUnknown,
	}
	if s.user != nil {
		u := *s.user
		sess.User = &u
	}
	if s.expiresAt != nil {
		t := *s.expiresAt
		sess.ExpiresAt = &t
	}
	return sess
}

// Token returns the current session token, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether both a token and a user are present.
func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// CachedCartID returns the cart id persisted by the last successful cart
// load.
func (s *Store) CachedCartID(ctx context.Context) string {
	return s.read(ctx, KeyCartID)
}

// RememberCartID persists the cart id as a fallback for checkout.
func (s *Store) RememberCartID(ctx context.Context, cartID string) {
	if isBlank(cartID) {
		return
	}
	s.write(ctx, KeyCartID, cartID)
}

// Rehydrate resolves the startup state from the persisted token: the
// server is asked first, the cached identity is the fallback.
func (s *Store) Rehydrate(ctx context.Context) domain.Session {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	token := s.read(ctx, KeyToken)
	if isBlank(token) {
		s.logger.InfoContext(ctx, "no stored session token")
		return s.apply(ctx, gen, "", nil, "rehydrate: no token", nil)
	}

	resp, err := s.auth.VerifyToken(ctx, token)
	if err != nil {
		if httpclient.IsAuthError(err) {
			s.logger.WarnContext(ctx, "stored session rejected, clearing",
				slog.String("error", err.Error()),
			)
			return s.apply(ctx, gen, "", nil, "rehydrate: token rejected", s.clearStorage)
		}

		s.logger.WarnContext(ctx, "session verification failed, using cached identity",
			slog.String("error", err.Error()),
		)
		return s.apply(ctx, gen, token, s.cachedUser(ctx), "rehydrate: cached", nil)
	}

	payload := resp.Payload()
	id := extractID(payload, verifyIDStrategies)
	if id == "" {
		s.logger.WarnContext(ctx, "verified session has no user id, using cached identity")
		return s.apply(ctx, gen, token, s.cachedUser(ctx), "rehydrate: cached", nil)
	}

	user := &domain.User{
		ID:    id,
		Name:  firstNonBlank(payload.Name, s.read(ctx, KeyName), defaultUserName),
		Email: firstNonBlank(payload.Email, s.read(ctx, KeyEmail)),
		Phone: firstNonBlank(payload.Phone, s.read(ctx, KeyPhone)),
	}
	return s.apply(ctx, gen, token, user, "rehydrate: verified", func(ctx context.Context) {
		s.persistUser(ctx, user)
	})
}

// cachedUser returns the identity persisted by an earlier session, or nil
// when no usable id was stored.
func (s *Store) cachedUser(ctx context.Context) *domain.User {
	id := s.read(ctx, KeyID)
	if isBlank(id) {
		return nil
	}
	return &domain.User{
		ID:    id,
		Name:  firstNonBlank(s.read(ctx, KeyName), defaultUserName),
		Email: firstNonBlank(s.read(ctx, KeyEmail)),
		Phone: firstNonBlank(s.read(ctx, KeyPhone)),
	}
}

// apply installs token and user if no other transition happened since gen
// was read. A nil user means Anonymous.
func (s *Store) apply(ctx context.Context, gen uint64, token string, user *domain.User, reason string, persist func(context.Context)) domain.Session {
	return s.commit(ctx, &gen, token, user, reason, persist)
}

// commit replaces the session and runs persist before any later
// transition can touch storage. With a non-nil gen the transition is
// dropped when another one happened since it was read.
func (s *Store) commit(ctx context.Context, gen *uint64, token string, user *domain.User, reason string, persist func(context.Context)) domain.Session {
	s.pmu.Lock()
	s.mu.Lock()
	if gen != nil && s.gen != *gen {
		sess := s.snapshotLocked()
		s.mu.Unlock()
		s.pmu.Unlock()
		s.logger.DebugContext(ctx, "discarding stale session resolution", slog.String("reason", reason))
		return sess
	}
	change := s.setLocked(token, user, reason)
	s.mu.Unlock()
	if persist != nil {
		persist(ctx)
	}
	s.pmu.Unlock()

	s.publish(ctx, change)
	return change.Current
}

// setLocked replaces the in-memory session. Callers hold s.mu.
func (s *Store) setLocked(token string, user *domain.User, reason string) Change {
	prev := s.snapshotLocked()
	s.gen++
	if user == nil || token == "" {
		s.state = domain.SessionAnonymous
		s.token = ""
		s.user = nil
		s.expiresAt = nil
	} else {
		u := *user
		s.state = domain.SessionAuthenticated
		s.token = token
		s.user = &u
		s.expiresAt = tokenExpiry(token)
	}
	return Change{Previous: prev, Current: s.snapshotLocked(), Reason: reason}
}

func (s *Store) publish(ctx context.Context, c Change) {
	s.logger.InfoContext(ctx, "session transition",
		slog.String("from", string(c.Previous.State)),
		slog.String("to", string(c.Current.State)),
		slog.String("reason", c.Reason),
	)
	s.changes.Publish(ctx, c)
}

// Login adopts token and identity. The user id is taken from the first
// identity location that has one; a login without a token is ignored.
func (s *Store) Login(ctx context.Context, token string, identity *domain.Identity) domain.Session {
	if isBlank(token) {
		s.logger.ErrorContext(ctx, "login ignored: no token provided")
		return s.Snapshot()
	}
	if identity == nil {
		identity = &domain.Identity{}
	}

	id := extractID(identity, loginIDStrategies)
	if id == "" {
		id = tokenSubject(token)
	}

	phone := identity.Phone
	if phone == "" && identity.Wrapped != nil {
		phone = identity.Wrapped.Phone
	}
	user := &domain.User{
		ID:    id,
		Name:  identity.Name,
		Email: identity.Email,
		Phone: phone,
	}

	return s.commit(ctx, nil, token, user, "login", func(ctx context.Context) {
		s.write(ctx, KeyToken, token)
		s.persistUser(ctx, user)
	})
}

// UpdateProfile merges patch into the current identity and persists only
// the fields it sets. It does nothing when no one is signed in.
func (s *Store) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) domain.Session {
	s.pmu.Lock()
	s.mu.Lock()
	if s.user == nil {
		sess := s.snapshotLocked()
		s.mu.Unlock()
		s.pmu.Unlock()
		return sess
	}
	u := *s.user
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	change := s.setLocked(s.token, &u, "profile update")
	s.mu.Unlock()

	if patch.Name != nil && *patch.Name != "" {
		s.write(ctx, KeyName, *patch.Name)
	}
	if patch.Email != nil && *patch.Email != "" {
		s.write(ctx, KeyEmail, *patch.Email)
	}
	if patch.Phone != nil && *patch.Phone != "" {
		s.write(ctx, KeyPhone, *patch.Phone)
	}
	s.pmu.Unlock()

	s.publish(ctx, change)
	return change.Current
}

// Logout clears the session in memory and in storage.
func (s *Store) Logout(ctx context.Context) domain.Session {
	return s.logout(ctx, "logout")
}

func (s *Store) logout(ctx context.Context, reason string) domain.Session {
	return s.commit(ctx, nil, "", nil, reason, s.clearStorage)
}

func (s *Store) handleAuthFailure(ctx context.Context, f httpclient.AuthFailure) {
	s.logger.WarnContext(ctx, "upstream invalidated the session, logging out",
		slog.String("method", f.Method),
		slog.String("path", f.Path),
		slog.String("message", f.Message),
	)
	s.logout(ctx, "auth failure")
}

func (s *Store) persistUser(ctx context.Context, u *domain.User) {
	s.write(ctx, KeyID, u.ID)
	s.write(ctx, KeyName, u.Name)
	s.write(ctx, KeyEmail, u.Email)
	if u.Phone == "" {
		if err := s.storage.Delete(ctx, KeyPhone); err != nil {
			s.logger.WarnContext(ctx, "failed to clear stored phone", slog.String("error", err.Error()))
		}
		return
	}
	s.write(ctx, KeyPhone, u.Phone)
}

func (s *Store) clearStorage(ctx context.Context) {
	if err := s.storage.Delete(ctx, persistedKeys...); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear stored session", slog.String("error", err.Error()))
	}
}

// read returns the stored value for key, or "" when absent or unreadable.
func (s *Store) read(ctx context.Context, key string) string {
	v, _, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read stored session field",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return ""
	}
	return v
}

func (s *Store) write(ctx context.Context, key, value string) {
	if err := s.storage.Set(ctx, key, value); err != nil {
		s.logger.WarnContext(ctx, "failed to persist session field",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

var errMalformedAuthResponse = errors.New("auth response missing token or user")
