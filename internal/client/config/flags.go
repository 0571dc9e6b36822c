package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/flagx"
)

var knownFlags = []string{"-a", "-i", "-b", "-s", "-d", "-p", "-l", "-m"}

// parseFlags populates selected Config fields from command-line flags.
// Only the flags listed in knownFlags are looked at, so other components
// can parse their own.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.BackendURL, "b", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.SessionBackend, "s", cfg.SessionBackend, "session backend (memory, sqlite, postgres, redis)")
	fs.StringVar(&cfg.SessionDSN, "d", cfg.SessionDSN, "session database DSN")
	fs.StringVar(&cfg.Profile, "p", cfg.Profile, "session profile")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
	return nil
}
