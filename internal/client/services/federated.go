package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shonkhipto/internal/client/auth"
	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
)

// AssertionSource obtains an identity assertion, typically by running a
// browser redirect flow (*auth.LoopbackFlow).
type AssertionSource interface {
	Name() string
	Run(ctx context.Context) (*auth.Assertion, error)
}

// AssertionExchanger turns an assertion into a user record
// (*client.TokenExchangeRelay).
type AssertionExchanger interface {
	Exchange(ctx context.Context, a *auth.Assertion) (*models.User, error)
}

// FederatedAuthenticator is the federated Authenticator variant: obtain
// an assertion, then have the backend exchange it. The credential argument
// is ignored.
type FederatedAuthenticator struct {
	source    AssertionSource
	exchanger AssertionExchanger
}

var _ auth.Authenticator = (*FederatedAuthenticator)(nil)

func NewFederatedAuthenticator(src AssertionSource, ex AssertionExchanger) *FederatedAuthenticator {
	return &FederatedAuthenticator{source: src, exchanger: ex}
}

func (f *FederatedAuthenticator) Name() string { return f.source.Name() }

func (f *FederatedAuthenticator) Authenticate(ctx context.Context, _ auth.Credential) (*models.User, error) {
	a, err := f.source.Run(ctx)
	if err != nil {
		return nil, err
	}
	u, err := f.exchanger.Exchange(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("exchange %s assertion: %w", a.Provider, err)
	}
	return u, nil
}
