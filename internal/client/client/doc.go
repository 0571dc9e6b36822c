// Package client holds the client's outbound plumbing.
//
// # Overview
//
//  1. TokenExchangeRelay forwards a federated identity assertion to the
//     backend and returns the user record the backend answers with.
//  2. Fetcher performs authenticated HTTP requests, attaching the current
//     session token as a Bearer credential and tracking a busy flag and the
//     last error.
//  3. GRPCClient talks to the backend's gRPC endpoint. It attaches the same
//     bearer token through an interceptor and probes liveness with the
//     standard health service.
//  4. InitRepositories opens the configured session store (memory, SQLite,
//     Postgres or Redis) and applies the embedded goose migrations.
//
// # Error Handling
//
// Failures map to sentinels from internal/common (ErrTokenExchangeFailed,
// ErrMissingCredential, ErrRequestFailed) or to ErrUnavailable and
// ErrUnauthorized for gRPC. Match them with errors.Is.
package client
