package auth

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shonkhipto/internal/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthProvider is the redirect-based half of a federated provider. The
// redirect URL is passed per call because the loopback listener picks its
// port at run time.
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state, verifier, redirectURL string) string
	Exchange(ctx context.Context, code, verifier, redirectURL string) (*Assertion, error)
}

var defaultGoogleScopes = []string{"openid", "email", "profile"}

// GoogleProvider runs the Google authorization-code flow with PKCE.
type GoogleProvider struct {
	clientID     string
	clientSecret string
	scopes       []string
	endpoint     oauth2.Endpoint
}

type GoogleOption func(*GoogleProvider)

// WithEndpoint overrides Google's endpoints, e.g. for a local test server.
func WithEndpoint(e oauth2.Endpoint) GoogleOption {
	return func(p *GoogleProvider) { p.endpoint = e }
}

func WithScopes(scopes ...string) GoogleOption {
	return func(p *GoogleProvider) {
		if len(scopes) > 0 {
			p.scopes = scopes
		}
	}
}

func NewGoogleProvider(clientID, clientSecret string, opts ...GoogleOption) *GoogleProvider {
	p := &GoogleProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		scopes:       defaultGoogleScopes,
		endpoint:     google.Endpoint,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *GoogleProvider) Name() string { return common.ProviderGoogle }

func (p *GoogleProvider) config(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     p.endpoint,
		RedirectURL:  redirectURL,
		Scopes:       p.scopes,
	}
}

func (p *GoogleProvider) AuthCodeURL(state, verifier, redirectURL string) string {
	return p.config(redirectURL).AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
	)
}

// Exchange trades the authorization code for tokens and returns the
// id_token as an Assertion.
func (p *GoogleProvider) Exchange(ctx context.Context, code, verifier, redirectURL string) (*Assertion, error) {
	tok, err := p.config(redirectURL).Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", common.ErrAuthenticationFailed, err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, fmt.Errorf("%w: provider returned no id_token", common.ErrAuthenticationFailed)
	}

	return &Assertion{
		Provider:    common.ProviderGoogle,
		IDToken:     idToken,
		AccessToken: tok.AccessToken,
	}, nil
}
