// Package store holds the session-scoped client state: cart, wishlist,
// address book and order history. Every mutation checks for a session
// token, calls the upstream under the retry policy and then refreshes
// from the server. Failures are recorded in the store's Err and returned.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/No25ha/Market/internal/domain"
	apperrors "github.com/No25ha/Market/pkg/errors"
	"github.com/No25ha/Market/pkg/httpclient"
	"github.com/No25ha/Market/pkg/retry"
)

// Session is what the stores need from the session store.
type Session interface {
	Token() string
	User() *domain.User
	RememberCartID(ctx context.Context, cartID string)
}

// status is the loading and error state shared by every store. Its mutex
// also guards the embedding store's data.
//
// epoch advances on every Reset; results of calls started in an earlier
// epoch are dropped so a response for a previous session never lands in
// the current one. writes advances after every successful mutation and
// explicit refresh; a load only installs its result if no write happened
// after it started. No lock is held while an upstream call is in flight.
type status struct {
	mu      sync.RWMutex
	pending int
	err     string
	epoch   uint64
	writes  uint64

	fmu     sync.Mutex
	flights map[string]*flight
	group   singleflight.Group
}

// flight is one shared upstream call. Its context is cancelled once every
// caller waiting on it has given up.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Loading reports whether a load or a blocking mutation is in flight.
func (s *status) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

// Err returns the last recorded failure message, or "".
func (s *status) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *status) current() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// generation returns the current epoch and write count.
func (s *status) generation() (uint64, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch, s.writes
}

// invalidate marks everything loaded so far as stale.
func (s *status) invalidate() {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
}

// freshLocked reports whether a load started at (epoch, writes) may still
// install its result. Callers hold s.mu.
func (s *status) freshLocked(epoch, writes uint64) bool {
	return s.epoch == epoch && s.writes == writes
}

func (s *status) begin() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
}

func (s *status) end() {
	s.mu.Lock()
	if s.pending > 0 {
		s.pending--
	}
	s.mu.Unlock()
}

// fail records err unless the store was reset since epoch.
func (s *status) fail(epoch uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.err = apperrors.Message(err)
	}
}

func (s *status) clearErr(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.err = ""
	}
}

// resetLocked starts a new epoch. Callers hold s.mu.
func (s *status) resetLocked() {
	s.epoch++
	s.err = ""
}

// authorize returns the session token, or records and returns an
// Unauthorized error carrying message when there is none.
func (s *status) authorize(sess Session, message string) (string, uint64, error) {
	epoch := s.current()
	token := sess.Token()
	if token == "" {
		err := apperrors.Unauthorized(message)
		s.fail(epoch, err)
		return "", epoch, err
	}
	s.clearErr(epoch)
	return token, epoch, nil
}

// coalesce runs fn once for all concurrent callers sharing the same
// operation key within one epoch. The shared call runs on a context that
// is only cancelled when the last waiting caller's ctx is done.
func (s *status) coalesce(ctx context.Context, epoch uint64, fn func(ctx context.Context) error, op string, args ...string) error {
	key := fmt.Sprintf("%d:%s", epoch, strings.Join(append([]string{op}, args...), ":"))

	s.fmu.Lock()
	f, ok := s.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		if s.flights == nil {
			s.flights = make(map[string]*flight)
		}
		s.flights[key] = f
	}
	f.waiters++
	ch := s.group.DoChan(key, func() (any, error) {
		err := fn(f.ctx)
		s.fmu.Lock()
		s.retireLocked(key, f)
		s.fmu.Unlock()
		return nil, err
	})
	s.fmu.Unlock()

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		s.fmu.Lock()
		f.waiters--
		if f.waiters == 0 {
			s.retireLocked(key, f)
		}
		s.fmu.Unlock()
		return ctx.Err()
	}
}

// retireLocked cancels f and makes the next caller of key start a new
// call. Callers hold s.fmu.
func (s *status) retireLocked(key string, f *flight) {
	if s.flights[key] == f {
		delete(s.flights, key)
		s.group.Forget(key)
	}
	f.cancel()
}

// loadKey names a load so that loads started after a write never join one
// started before it.
func loadKey(writes uint64) string {
	return fmt.Sprintf("w%d", writes)
}

// readPolicy is p for read-only loads. The upstream answers 500 for a
// collection that does not exist yet, so absence is final there rather
// than retried.
func readPolicy(p retry.Policy) retry.Policy {
	classify := p.Classify
	if classify == nil {
		classify = httpclient.IsTransient
	}
	p.Classify = func(err error) bool {
		return !httpclient.IsAbsent(err) && classify(err)
	}
	return p
}
