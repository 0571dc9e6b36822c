package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/appleboy/go-httpclient"

	"github.com/dmitrijs2005/shonkhipto/internal/client/auth"
	"github.com/dmitrijs2005/shonkhipto/internal/client/client"
	"github.com/dmitrijs2005/shonkhipto/internal/client/config"
	"github.com/dmitrijs2005/shonkhipto/internal/client/metrics"
	"github.com/dmitrijs2005/shonkhipto/internal/client/services"
	"github.com/dmitrijs2005/shonkhipto/internal/client/session"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
	"github.com/dmitrijs2005/shonkhipto/internal/filex"
	"github.com/dmitrijs2005/shonkhipto/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// fetcher is the part of *client.Fetcher the CLI uses.
type fetcher interface {
	Fetch(ctx context.Context, url string, opts client.RequestOptions) (any, error)
}

type App struct {
	config      *config.Config
	authService services.AuthService
	links       services.LinkService
	fetcher     fetcher
	metrics     *metrics.Metrics
	open        auth.BrowserOpener
	closers     []func() error
	log         logging.Logger

	reader *bufio.Reader
	out    io.Writer

	modeMu sync.Mutex
	mode   Mode
}

// NewApp wires every component from c. The caller owns the returned App
// and must call Run, which releases resources on exit.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel)
	m := metrics.New()

	dsn := c.SessionDSN
	if dsn == "" && c.SessionBackend == client.BackendSQLite {
		dir, err := filex.StateDir("shonkhipto")
		if err != nil {
			return nil, err
		}
		dsn = "file:" + filepath.Join(dir, "session.db")
	}

	repos, err := client.InitRepositories(ctx, client.StorageOptions{
		Backend:       c.SessionBackend,
		DSN:           dsn,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing session store: %w", err)
	}

	secret := []byte(c.AuthSecret)
	if len(secret) == 0 {
		log.Warn(ctx, "SHONKHIPTO_AUTH_SECRET is not set, sessions will not survive a restart")
		secret = common.GenerateRandByteArray(32)
	}
	store := session.NewStore(session.NewTokenIssuer(secret, c.SessionTTL), repos.Sessions, log,
		session.WithProfile(c.Profile))

	reg, err := buildRegistry(c, m, log)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	api, err := client.NewGRPCClient(c.ServerEndpointAddr, "", store)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	hc, err := httpclient.NewAuthClient(httpclient.AuthModeNone, "", httpclient.WithTimeout(c.RelayTimeout))
	if err != nil {
		_ = repos.Close()
		_ = api.Close()
		return nil, fmt.Errorf("failed to create fetch http client: %w", err)
	}

	return &App{
		config:      c,
		authService: services.NewAuthService(reg, store, api, m, log),
		links:       services.NewLinkService(c.ShortLinkBase),
		fetcher:     client.NewFetcher(store, hc, m, log),
		metrics:     m,
		open:        auth.OpenBrowser,
		closers:     []func() error{repos.Close},
		log:         log,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		mode:        ModeOffline,
	}, nil
}

// buildRegistry registers the credentials authenticator and, when Google
// client credentials are configured, the federated one.
func buildRegistry(c *config.Config, m metrics.Recorder, log logging.Logger) (*auth.Registry, error) {
	var backend auth.CredentialBackend
	switch {
	case c.LoginURL != "":
		hb, err := auth.NewHTTPBackend(c.LoginURL, c.RelayTimeout)
		if err != nil {
			return nil, err
		}
		backend = hb
	case len(c.Users) > 0:
		backend = auth.NewStaticBackend(c.Users)
	}
	reg := auth.NewRegistry(auth.NewLocalAuthenticator(backend))

	if !c.GoogleEnabled() {
		log.Debug(context.Background(), "google sign-in disabled, GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET missing")
		return reg, nil
	}

	flow := auth.NewLoopbackFlow(
		auth.NewGoogleProvider(c.GoogleClientID, c.GoogleClientSecret),
		auth.PrintingOpener(os.Stdout, auth.OpenBrowser),
		log,
		auth.WithListenAddr(c.CallbackAddr),
		auth.WithFlowTimeout(c.FlowTimeout),
	)
	relay, err := client.NewTokenExchangeRelay(client.RelayConfig{
		BaseURL:       c.BackendURL,
		Path:          c.TokenExchangePath,
		Timeout:       c.RelayTimeout,
		MaxRetries:    c.RelayRetries,
		RetryDelay:    200 * time.Millisecond,
		MaxRetryDelay: 2 * time.Second,
	}, m, log)
	if err != nil {
		return nil, err
	}
	reg.Register(services.NewFederatedAuthenticator(flow, relay))
	return reg, nil
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// Run restores a persisted session, starts the background helpers and
// blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close(ctx)

	fmt.Fprintln(a.out, "Welcome to shonkhipto CLI (type 'help' for commands)")

	if ok, err := a.authService.Restore(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err.Error())
	} else if ok {
		fmt.Fprintf(a.out, "Signed in as %s\n", a.authService.Current().User.DisplayName())
	}

	if a.config.MetricsAddr != "" && a.metrics != nil {
		srv := startMetricsServer(a.config.MetricsAddr, a.metrics.Handler(), a.log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close(ctx context.Context) {
	if err := a.authService.Close(ctx); err != nil {
		a.log.Warn(ctx, "closing backend client", "error", err.Error())
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn(ctx, "closing session store", "error", err.Error())
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.State() == session.Authenticated
}

func (a *App) getStatus() string {
	s := ""
	if cur := a.authService.Current(); cur != nil && a.isLoggedIn() {
		s = cur.User.DisplayName() + " "
	}
	s += string(a.Mode())
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// StartOnlineStatusWatcher probes the backend every interval and flips the
// connectivity mode. It returns when ctx is cancelled.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
