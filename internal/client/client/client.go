package client

import "context"

// Client is the backend connection used for liveness checks.
type Client interface {
	Ping(ctx context.Context) error
	Close() error
}

// TokenSource yields the current session bearer token, or "" when there is
// none. *session.Store satisfies it.
type TokenSource interface {
	BearerToken() string
}
