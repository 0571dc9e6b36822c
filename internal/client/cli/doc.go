// Package cli provides the interactive shonkhipto command-line client.
//
// It wires configuration, the session store, identity providers, the
// authenticated fetch wrapper and an interactive REPL. Typical flow:
// restore a persisted session if there is one, start the background
// connectivity watcher, then execute user commands until exit.
//
// Key features:
//   - Login with credentials or Google, Logout, WhoAmI, Update
//   - Shorten / List / Copy / Open links while signed in
//   - Fetch a JSON resource with the session's bearer token
//   - Optional Prometheus endpoint
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
