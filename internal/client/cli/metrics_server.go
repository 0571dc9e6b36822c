package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/shonkhipto/internal/logging"
)

func newMetricsRouter(metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// startMetricsServer serves /metrics and /healthz on addr in the
// background. Listen errors are logged, not fatal.
func startMetricsServer(addr string, metricsHandler http.Handler, log logging.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMetricsRouter(metricsHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info(context.Background(), "metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(context.Background(), "metrics endpoint stopped", "error", err.Error())
		}
	}()
	return srv
}
