package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/shonkhipto/internal/client/metrics"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
	"github.com/dmitrijs2005/shonkhipto/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) BearerToken() string { return string(s) }

func newFetcher(tok string, rec metrics.Recorder) *Fetcher {
	return NewFetcher(staticTokens(tok), nil, rec, logging.Discard())
}

func TestFetch_NoToken_NoNetworkNoStateChange(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	f := newFetcher("", nil)
	f.lastErr = errors.New("previous")

	_, err := f.Fetch(context.Background(), srv.URL, RequestOptions{})
	require.ErrorIs(t, err, common.ErrMissingCredential)
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.False(t, f.Loading())
	assert.EqualError(t, f.LastError(), "previous")
}

func TestFetch_AttachesBearerAndDecodes(t *testing.T) {
	var got http.Header
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, method = r.Header.Clone(), r.Method
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "n": 3})
	}))
	defer srv.Close()

	m := metrics.New()
	f := newFetcher("tok-1", m)

	out, err := f.Fetch(context.Background(), srv.URL, RequestOptions{
		Headers: http.Header{
			"X-Trace":       {"abc"},
			"Authorization": {"Basic should-be-replaced"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"ok": true, "n": 3.0}, out)
	assert.Equal(t, http.MethodGet, method)
	assert.Equal(t, "abc", got.Get("X-Trace"))
	assert.Equal(t, []string{"Bearer tok-1"}, got.Values("Authorization"))
	assert.False(t, f.Loading())
	assert.NoError(t, f.LastError())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("200")))
}

func TestFetchInto_PostWithBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["url"]})
	}))
	defer srv.Close()

	var out struct {
		Echo string `json:"echo"`
	}
	err := newFetcher("t", nil).FetchInto(context.Background(), srv.URL, RequestOptions{
		Method: http.MethodPost,
		Body:   []byte(`{"url":"https://example.com"}`),
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", out.Echo)
}

func TestFetch_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	out, err := newFetcher("t", nil).Fetch(context.Background(), srv.URL, RequestOptions{})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestFetch_NonSuccessStatusRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	m := metrics.New()
	f := newFetcher("t", m)

	_, err := f.Fetch(context.Background(), srv.URL, RequestOptions{})
	require.ErrorIs(t, err, common.ErrRequestFailed)
	assert.Contains(t, err.Error(), "HTTP error! status: 403")
	assert.Equal(t, err, f.LastError())
	assert.False(t, f.Loading())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("403")))
}

func TestFetch_TransportErrorAndBadJSON(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{oops`))
	}))
	defer bad.Close()

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	f := newFetcher("t", nil)

	_, err := f.Fetch(context.Background(), bad.URL, RequestOptions{})
	require.ErrorIs(t, err, common.ErrRequestFailed)

	_, err = f.Fetch(context.Background(), downURL, RequestOptions{})
	require.ErrorIs(t, err, common.ErrRequestFailed)
	require.ErrorIs(t, f.LastError(), common.ErrRequestFailed)
}

func TestFetch_NewCallClearsPreviousError(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := newFetcher("t", nil)
	_, err := f.Fetch(context.Background(), srv.URL, RequestOptions{})
	require.Error(t, err)
	require.Error(t, f.LastError())

	fail.Store(false)
	_, err = f.Fetch(context.Background(), srv.URL, RequestOptions{})
	require.NoError(t, err)
	assert.NoError(t, f.LastError())
}

func TestFetch_LoadingFollowsMostRecentCall(t *testing.T) {
	releaseFirst := make(chan struct{})
	releaseSecond := make(chan struct{})
	arrived := make(chan string, 2)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		arrived <- id
		if id == "1" {
			<-releaseFirst
		} else {
			<-releaseSecond
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := newFetcher("t", nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = f.Fetch(ctx, srv.URL+"?id=1", RequestOptions{})
	}()
	require.Equal(t, "1", <-arrived)
	assert.True(t, f.Loading())

	done2 := make(chan struct{})
	go func() {
		defer close(done2)
		_, _ = f.Fetch(ctx, srv.URL+"?id=2", RequestOptions{})
	}()
	require.Equal(t, "2", <-arrived)

	// the older call finishing does not clear the flag
	close(releaseFirst)
	wg.Wait()
	assert.True(t, f.Loading())

	close(releaseSecond)
	<-done2
	assert.False(t, f.Loading())
}
