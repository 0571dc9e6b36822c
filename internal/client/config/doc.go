// Package config loads runtime configuration for the shonkhipto CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables, with a .env file in the working directory
//     preloaded when present.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      online status check interval (seconds)
//	-b string   backend base URL for the token exchange
//	-s string   session backend: memory, sqlite, postgres or redis
//	-d string   session database DSN (sqlite defaults to session.db in the
//	            user config directory)
//	-p string   session profile
//	-l string   log level
//	-m string   metrics listen address (empty disables the endpoint)
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds. Keys that are absent keep their previous value.
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "backend_url": "http://localhost:8000",
//	  "session_backend": "sqlite",
//	  "session_dsn": "file:/var/lib/shonkhipto/session.db",
//	  "users": {"alice": {"name": "Alice", "email": "a@example.com", "password_hash": "$2a$10$..."}}
//	}
package config
