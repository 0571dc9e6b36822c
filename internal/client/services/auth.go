// Package services contains the application services behind the CLI.
// This file defines the authentication service: sign-in through any
// registered provider, explicit session updates, logout, session restore
// and the backend liveness probe.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/client/auth"
	"github.com/dmitrijs2005/shonkhipto/internal/client/client"
	"github.com/dmitrijs2005/shonkhipto/internal/client/metrics"
	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/dmitrijs2005/shonkhipto/internal/client/session"
	"github.com/dmitrijs2005/shonkhipto/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate with the named provider and, on success, start a
//     new session. A failed attempt leaves any previous session as it was.
//   - Update: replace the session user while signed in; no-op otherwise.
//   - Logout: drop the session locally and in the session store.
//   - Restore: pick up a persisted session at start-up.
//   - Ping: check backend liveness.
type AuthService interface {
	Login(ctx context.Context, provider string, cred auth.Credential) (*models.Session, error)
	Update(ctx context.Context, user *models.User) (bool, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (bool, error)
	Current() *models.Session
	State() session.State
	Providers() []string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	registry *auth.Registry
	store    *session.Store
	client   client.Client
	metrics  metrics.Recorder
	log      logging.Logger
}

// NewAuthService wires the provider registry to the session store. api may
// be nil when no backend endpoint is configured; Ping then reports
// client.ErrUnavailable.
func NewAuthService(reg *auth.Registry, store *session.Store, api client.Client, rec metrics.Recorder, log logging.Logger) AuthService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &authService{registry: reg, store: store, client: api, metrics: rec, log: log}
}

// Login looks the provider up, marks the session as authenticating and
// runs the attempt. The credential's password is wiped before returning.
func (s *authService) Login(ctx context.Context, provider string, cred auth.Credential) (*models.Session, error) {
	defer cred.Wipe()

	a, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s.store.Begin()

	user, err := a.Authenticate(ctx, cred)
	if err == nil {
		var sess *models.Session
		sess, err = s.store.SignIn(ctx, user, a.Name())
		if err == nil {
			s.metrics.RecordLogin(a.Name(), true, time.Since(start))
			return sess, nil
		}
	}

	s.store.Fail()
	s.metrics.RecordLogin(a.Name(), false, time.Since(start))
	s.log.Warn(ctx, "sign-in failed", "provider", a.Name(), "error", err.Error())
	return nil, err
}

func (s *authService) Update(ctx context.Context, user *models.User) (bool, error) {
	return s.store.Update(ctx, user)
}

func (s *authService) Logout(ctx context.Context) error {
	if err := s.store.Invalidate(ctx); err != nil {
		return err
	}
	s.metrics.RecordLogout()
	return nil
}

func (s *authService) Restore(ctx context.Context) (bool, error) {
	return s.store.Restore(ctx)
}

func (s *authService) Current() *models.Session { return s.store.Current() }

func (s *authService) State() session.State { return s.store.State() }

func (s *authService) Providers() []string { return s.registry.Names() }

func (s *authService) Ping(ctx context.Context) error {
	if s.client == nil {
		return client.ErrUnavailable
	}
	return s.client.Ping(ctx)
}

func (s *authService) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
