package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/client/auth"
)

// Config holds runtime settings for the shonkhipto CLI.
//
// Secrets (GoogleClientSecret, AuthSecret, RedisPassword) are expected
// from the environment; nothing in the CLI prints them.
type Config struct {
	ServerEndpointAddr  string        `env:"SHONKHIPTO_SERVER_ADDR"`
	OnlineCheckInterval time.Duration `env:"SHONKHIPTO_ONLINE_CHECK_INTERVAL"`

	BackendURL        string        `env:"SHONKHIPTO_BACKEND_URL"`
	TokenExchangePath string        `env:"SHONKHIPTO_TOKEN_EXCHANGE_PATH"`
	RelayTimeout      time.Duration `env:"SHONKHIPTO_RELAY_TIMEOUT"`
	RelayRetries      int           `env:"SHONKHIPTO_RELAY_RETRIES"`
	LoginURL          string        `env:"SHONKHIPTO_LOGIN_URL"`

	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	CallbackAddr       string        `env:"SHONKHIPTO_CALLBACK_ADDR"`
	FlowTimeout        time.Duration `env:"SHONKHIPTO_FLOW_TIMEOUT"`

	AuthSecret string        `env:"SHONKHIPTO_AUTH_SECRET"`
	SessionTTL time.Duration `env:"SHONKHIPTO_SESSION_TTL"`

	SessionBackend string `env:"SHONKHIPTO_SESSION_BACKEND"`
	SessionDSN     string `env:"SHONKHIPTO_SESSION_DSN"`
	RedisAddr      string `env:"SHONKHIPTO_REDIS_ADDR"`
	RedisPassword  string `env:"SHONKHIPTO_REDIS_PASSWORD"`
	RedisDB        int    `env:"SHONKHIPTO_REDIS_DB"`
	Profile        string `env:"SHONKHIPTO_PROFILE"`

	LogLevel      string `env:"SHONKHIPTO_LOG_LEVEL"`
	MetricsAddr   string `env:"SHONKHIPTO_METRICS_ADDR"`
	ShortLinkBase string `env:"SHONKHIPTO_SHORT_LINK_BASE"`

	// Users are only read from the JSON file.
	Users map[string]auth.StaticUser
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second

	c.BackendURL = "http://localhost:8000"
	c.TokenExchangePath = "/auth/google"
	c.RelayTimeout = 10 * time.Second
	c.RelayRetries = 0

	c.CallbackAddr = "127.0.0.1:0"
	c.FlowTimeout = 3 * time.Minute

	c.SessionTTL = 24 * time.Hour
	c.SessionBackend = "sqlite"
	c.Profile = "default"

	c.LogLevel = "info"
	c.ShortLinkBase = "https://tinylink.com/"
}

// Load builds a Config from defaults, the JSON file named in args, the
// environment and finally the flags in args. Later sources take
// precedence over earlier ones.
func Load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments and environment. It panics
// on malformed input, like the rest of start-up.
func LoadConfig() *Config {
	loadDotEnv()
	cfg, err := Load(os.Args[1:], nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.SessionBackend {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
	if c.RelayRetries < 0 {
		return fmt.Errorf("relay retries must not be negative, got %d", c.RelayRetries)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	return nil
}

// GoogleEnabled reports whether federated sign-in can be offered.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
