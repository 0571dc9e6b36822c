package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/common"
	"github.com/dmitrijs2005/shonkhipto/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	defaultCallbackPath = "/callback"
	defaultFlowTimeout  = 3 * time.Minute
)

// BrowserOpener shows the authorization URL to the user.
type BrowserOpener func(url string) error

// LoopbackFlow runs an OAuth2 redirect flow against a short-lived HTTP
// listener on the loopback interface.
type LoopbackFlow struct {
	provider   OAuthProvider
	open       BrowserOpener
	log        logging.Logger
	listenAddr string
	path       string
	timeout    time.Duration
}

type LoopbackOption func(*LoopbackFlow)

// WithListenAddr sets the callback listener address. The default
// "127.0.0.1:0" picks a free port.
func WithListenAddr(addr string) LoopbackOption {
	return func(f *LoopbackFlow) {
		if addr != "" {
			f.listenAddr = addr
		}
	}
}

func WithFlowTimeout(d time.Duration) LoopbackOption {
	return func(f *LoopbackFlow) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func NewLoopbackFlow(p OAuthProvider, open BrowserOpener, log logging.Logger, opts ...LoopbackOption) *LoopbackFlow {
	f := &LoopbackFlow{
		provider:   p,
		open:       open,
		log:        log,
		listenAddr: "127.0.0.1:0",
		path:       defaultCallbackPath,
		timeout:    defaultFlowTimeout,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *LoopbackFlow) Name() string { return f.provider.Name() }

type callbackResult struct {
	code string
	err  error
}

// Run opens the provider's consent page and waits for the redirect. It
// returns once a callback with a matching state arrives, the context is
// done or the flow times out.
func (f *LoopbackFlow) Run(ctx context.Context) (*Assertion, error) {
	ln, err := net.Listen("tcp", f.listenAddr)
	if err != nil {
		return nil, fmt.Errorf("callback listener: %w", err)
	}

	redirectURL := "http://" + ln.Addr().String() + f.path
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	results := make(chan callbackResult, 1)

	srv := &http.Server{
		Handler:           f.router(state, results),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.log.Warn(ctx, "callback listener stopped", "error", err.Error())
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	f.log.Debug(ctx, "waiting for oauth callback", "redirect_url", redirectURL)
	if err := f.open(f.provider.AuthCodeURL(state, verifier, redirectURL)); err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", common.ErrAuthenticationFailed, ctx.Err())
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	return f.provider.Exchange(ctx, res.code, verifier, redirectURL)
}

func (f *LoopbackFlow) router(state string, results chan<- callbackResult) http.Handler {
	r := chi.NewRouter()
	r.Get(f.path, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		var res callbackResult
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("error") != "":
			res.err = fmt.Errorf("%w: provider error %q", common.ErrAuthenticationFailed, q.Get("error"))
		case q.Get("code") == "":
			res.err = fmt.Errorf("%w: callback without code", common.ErrAuthenticationFailed)
		default:
			res.code = q.Get("code")
		}

		select {
		case results <- res:
		default:
		}

		if res.err != nil {
			http.Error(w, "sign-in failed, you can close this window", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("signed in, you can close this window"))
	})
	return r
}
