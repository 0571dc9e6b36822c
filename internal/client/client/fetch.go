package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/client/metrics"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
	"github.com/dmitrijs2005/shonkhipto/internal/logging"
)

// RequestOptions shape a single Fetch. Method defaults to GET.
type RequestOptions struct {
	Method  string
	Headers http.Header
	Body    []byte
}

// Fetcher issues HTTP requests carrying the session bearer token.
//
// Loading reports whether a call is in flight: it is set when any call
// starts and cleared only when the most recently started call finishes.
// Calls are not serialised.
type Fetcher struct {
	http    *http.Client
	tokens  TokenSource
	metrics metrics.Recorder
	log     logging.Logger

	mu      sync.Mutex
	gen     uint64
	loading bool
	lastErr error
}

func NewFetcher(tokens TokenSource, hc *http.Client, rec metrics.Recorder, log logging.Logger) *Fetcher {
	if hc == nil {
		hc = http.DefaultClient
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Fetcher{http: hc, tokens: tokens, metrics: rec, log: log}
}

// Fetch performs the request and decodes the JSON response into a generic
// value (map, slice, string, number, bool or nil for an empty body).
func (f *Fetcher) Fetch(ctx context.Context, url string, opts RequestOptions) (any, error) {
	var out any
	if err := f.FetchInto(ctx, url, opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchInto performs the request and decodes the JSON response into out.
//
// Without a token it fails with common.ErrMissingCredential before any
// network or state change. Transport errors, non-2xx statuses and
// undecodable bodies wrap common.ErrRequestFailed and are recorded as the
// last error.
func (f *Fetcher) FetchInto(ctx context.Context, url string, opts RequestOptions, out any) (err error) {
	token := f.tokens.BearerToken()
	if token == "" {
		return common.ErrMissingCredential
	}

	gen := f.begin()
	start := time.Now()
	status := 0
	defer func() {
		f.metrics.RecordFetch(status, time.Since(start))
		f.end(gen, err)
	}()

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRequestFailed, err)
	}
	for k, vs := range opts.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if opts.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(token))

	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP error! status: %d", common.ErrRequestFailed, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", common.ErrRequestFailed, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode body: %v", common.ErrRequestFailed, err)
	}
	return nil
}

func (f *Fetcher) begin() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.loading = true
	f.lastErr = nil
	return f.gen
}

func (f *Fetcher) end(gen uint64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.lastErr = err
	}
	if gen == f.gen {
		f.loading = false
	}
}

func (f *Fetcher) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// LastError is the error of the most recent failed call since the last
// call started, or nil.
func (f *Fetcher) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}
