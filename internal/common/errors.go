// Package common defines shared constants and sentinel errors used across
// the authentication, session and transport layers. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Identity provider errors.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnsupportedProvider  = errors.New("unsupported identity provider")

	// Token exchange errors (network, non-success status or unusable body).
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// Authenticated fetch errors.
	ErrMissingCredential = errors.New("no access token available")
	ErrRequestFailed     = errors.New("request failed")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
