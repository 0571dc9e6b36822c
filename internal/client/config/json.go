package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/shonkhipto/internal/client/auth"
	"github.com/dmitrijs2005/shonkhipto/internal/flagx"
	"github.com/dmitrijs2005/shonkhipto/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. It is filled from
// the current Config before unmarshalling, so absent keys keep their value.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`

	BackendURL        string         `json:"backend_url"`
	TokenExchangePath string         `json:"token_exchange_path"`
	RelayTimeout      timex.Duration `json:"relay_timeout"`
	RelayRetries      int            `json:"relay_retries"`
	LoginURL          string         `json:"login_url"`

	GoogleClientID string         `json:"google_client_id"`
	CallbackAddr   string         `json:"callback_addr"`
	FlowTimeout    timex.Duration `json:"flow_timeout"`

	SessionTTL     timex.Duration `json:"session_ttl"`
	SessionBackend string         `json:"session_backend"`
	SessionDSN     string         `json:"session_dsn"`
	RedisAddr      string         `json:"redis_addr"`
	RedisDB        int            `json:"redis_db"`
	Profile        string         `json:"profile"`

	LogLevel      string `json:"log_level"`
	MetricsAddr   string `json:"metrics_addr"`
	ShortLinkBase string `json:"short_link_base"`

	Users map[string]auth.StaticUser `json:"users"`
}

func toJson(c *Config) JsonConfig {
	return JsonConfig{
		ServerEndpointAddr:  c.ServerEndpointAddr,
		OnlineCheckInterval: timex.Duration{Duration: c.OnlineCheckInterval},
		BackendURL:          c.BackendURL,
		TokenExchangePath:   c.TokenExchangePath,
		RelayTimeout:        timex.Duration{Duration: c.RelayTimeout},
		RelayRetries:        c.RelayRetries,
		LoginURL:            c.LoginURL,
		GoogleClientID:      c.GoogleClientID,
		CallbackAddr:        c.CallbackAddr,
		FlowTimeout:         timex.Duration{Duration: c.FlowTimeout},
		SessionTTL:          timex.Duration{Duration: c.SessionTTL},
		SessionBackend:      c.SessionBackend,
		SessionDSN:          c.SessionDSN,
		RedisAddr:           c.RedisAddr,
		RedisDB:             c.RedisDB,
		Profile:             c.Profile,
		LogLevel:            c.LogLevel,
		MetricsAddr:         c.MetricsAddr,
		ShortLinkBase:       c.ShortLinkBase,
		Users:               c.Users,
	}
}

func (jc JsonConfig) apply(c *Config) {
	c.ServerEndpointAddr = jc.ServerEndpointAddr
	c.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	c.BackendURL = jc.BackendURL
	c.TokenExchangePath = jc.TokenExchangePath
	c.RelayTimeout = jc.RelayTimeout.Duration
	c.RelayRetries = jc.RelayRetries
	c.LoginURL = jc.LoginURL
	c.GoogleClientID = jc.GoogleClientID
	c.CallbackAddr = jc.CallbackAddr
	c.FlowTimeout = jc.FlowTimeout.Duration
	c.SessionTTL = jc.SessionTTL.Duration
	c.SessionBackend = jc.SessionBackend
	c.SessionDSN = jc.SessionDSN
	c.RedisAddr = jc.RedisAddr
	c.RedisDB = jc.RedisDB
	c.Profile = jc.Profile
	c.LogLevel = jc.LogLevel
	c.MetricsAddr = jc.MetricsAddr
	c.ShortLinkBase = jc.ShortLinkBase
	c.Users = jc.Users
}

// parseJson overlays cfg with the file named by -c/-config in args. No
// flag means nothing to load.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	jc := toJson(cfg)
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	jc.apply(cfg)
	return nil
}
