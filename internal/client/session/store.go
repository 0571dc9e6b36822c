// Package session owns the client's single session record and its
// lifecycle: Unauthenticated -> Authenticating -> Authenticated and back.
//
// The record's user is only ever replaced as a whole: by a new sign-in or
// by an explicit update while signed in. A failed attempt leaves whatever
// was there before untouched.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/dmitrijs2005/shonkhipto/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/shonkhipto/internal/logging"
	"github.com/google/uuid"
)

// Store is the session materializer. It is safe for concurrent use;
// overlapping sign-ins resolve as last write wins.
type Store struct {
	mu      sync.RWMutex
	state   State
	current *models.Session

	issuer  *TokenIssuer
	repo    sessions.Repository
	profile string
	log     logging.Logger
	now     func() time.Time
}

type Option func(*Store)

// WithProfile selects the persistence key. Defaults to sessions.DefaultProfile.
func WithProfile(p string) Option {
	return func(s *Store) {
		if p != "" {
			s.profile = p
		}
	}
}

func NewStore(issuer *TokenIssuer, repo sessions.Repository, log logging.Logger, opts ...Option) *Store {
	s := &Store{
		state:   Unauthenticated,
		issuer:  issuer,
		repo:    repo,
		profile: sessions.DefaultProfile,
		log:     log,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Begin marks a sign-in attempt as in flight.
func (s *Store) Begin() {
	s.mu.Lock()
	s.state = Authenticating
	s.mu.Unlock()
}

// Fail ends an attempt without a result. The state falls back to what the
// retained record implies.
func (s *Store) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.settledStateLocked()
}

func (s *Store) settledStateLocked() State {
	if s.current != nil && !s.current.Expired(s.now()) {
		return Authenticated
	}
	return Unauthenticated
}

// SignIn installs user as the session identity, mints a fresh token and
// persists the record. It is the new-sign-in path: any previous record is
// replaced wholesale.
func (s *Store) SignIn(ctx context.Context, user *models.User, provider string) (*models.Session, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	token, issued, expires, err := s.issuer.Issue(user, provider)
	if err != nil {
		return nil, err
	}

	next := &models.Session{
		ID:        uuid.NewString(),
		User:      user.Clone(),
		Token:     token,
		Provider:  provider,
		IssuedAt:  issued,
		ExpiresAt: expires,
	}

	s.mu.Lock()
	s.current = next
	s.state = Authenticated
	s.persist(ctx, next)
	s.mu.Unlock()

	s.log.Info(ctx, "signed in", "provider", provider, "user_id", user.ID)
	return next.Clone(), nil
}

// Update replaces the session user while signed in and re-mints the token.
// In any other state it does nothing and reports false.
func (s *Store) Update(ctx context.Context, user *models.User) (bool, error) {
	if err := user.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	if s.state != Authenticated || s.settledStateLocked() != Authenticated {
		s.mu.Unlock()
		return false, nil
	}

	token, issued, expires, err := s.issuer.Issue(user, s.current.Provider)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}

	next := s.current.Clone()
	next.User = user.Clone()
	next.Token = token
	next.IssuedAt = issued
	next.ExpiresAt = expires
	s.current = next
	s.persist(ctx, next)
	s.mu.Unlock()

	s.log.Info(ctx, "session updated", "user_id", user.ID)
	return true, nil
}

// Invalidate drops the session (logout) locally and in the repository.
func (s *Store) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.state = Unauthenticated
	err := s.repo.Delete(ctx, s.profile)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("delete persisted session: %w", err)
	}
	s.log.Info(ctx, "signed out")
	return nil
}

// Restore loads a previously persisted record. Records whose token no
// longer verifies, or whose subject disagrees with the stored user, are
// discarded. It reports whether a session was restored.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	rec, err := s.repo.Get(ctx, s.profile)
	if err != nil {
		return false, fmt.Errorf("load persisted session: %w", err)
	}
	if rec == nil {
		return false, nil
	}

	claims, err := s.issuer.Verify(rec.Token)
	if err == nil && (rec.User == nil || claims.Subject != rec.User.ID) {
		err = errors.New("token subject does not match stored user")
	}
	if err != nil {
		s.log.Warn(ctx, "discarding persisted session", "reason", err.Error())
		if derr := s.repo.Delete(ctx, s.profile); derr != nil {
			return false, fmt.Errorf("delete stale session: %w", derr)
		}
		return false, nil
	}

	s.mu.Lock()
	s.current = rec.Clone()
	s.state = Authenticated
	s.mu.Unlock()

	s.log.Info(ctx, "session restored", "provider", rec.Provider, "user_id", rec.User.ID)
	return true, nil
}

// Current returns a copy of the session record, or nil.
func (s *Store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// State reports the lifecycle state. A signed-in record whose expiry has
// passed reads as Unauthenticated.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == Authenticated {
		return s.settledStateLocked()
	}
	return s.state
}

// BearerToken returns the token of the retained record, or "" when there
// is none or it has expired.
func (s *Store) BearerToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.Expired(s.now()) {
		return ""
	}
	return s.current.Token
}

// persist runs under s.mu so the stored record follows the in-memory one.
// Failures are logged only; the in-process session stays valid.
func (s *Store) persist(ctx context.Context, rec *models.Session) {
	if err := s.repo.Put(ctx, s.profile, rec); err != nil {
		s.log.Warn(ctx, "failed to persist session", "error", err.Error())
	}
}
