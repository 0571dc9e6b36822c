package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		mutate    func(c *Config)
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-i", "5", "-b", "http://b", "-s", "postgres",
				"-d", "postgres://x", "-p", "work", "-l", "debug", "-m", ":9100",
			},
			mutate: func(c *Config) {
				c.ServerEndpointAddr = "127.0.0.1:9090"
				c.OnlineCheckInterval = 5 * time.Second
				c.BackendURL = "http://b"
				c.SessionBackend = "postgres"
				c.SessionDSN = "postgres://x"
				c.Profile = "work"
				c.LogLevel = "debug"
				c.MetricsAddr = ":9100"
			},
		},
		{
			name:   "unknown flags are ignored",
			args:   []string{"-x", "1", "--verbose", "-p", "p2"},
			mutate: func(c *Config) { c.Profile = "p2" },
		},
		{
			name:   "interval untouched without -i",
			args:   []string{"-l", "error"},
			mutate: func(c *Config) { c.LogLevel = "error" },
		},
		{
			name:      "non-numeric interval",
			args:      []string{"-i", "soon"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.OnlineCheckInterval = 1500 * time.Millisecond

			err := parseFlags(cfg, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			want.OnlineCheckInterval = 1500 * time.Millisecond
			tt.mutate(want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}
