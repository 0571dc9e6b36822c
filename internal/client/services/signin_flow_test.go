package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/client/auth"
	"github.com/dmitrijs2005/shonkhipto/internal/client/client"
	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/dmitrijs2005/shonkhipto/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/shonkhipto/internal/client/session"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
	"github.com/dmitrijs2005/shonkhipto/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exchangeServer answers the token exchange with a fixed user and records
// every request body.
type exchangeServer struct {
	*httptest.Server

	mu     sync.Mutex
	bodies []string
}

func newExchangeServer(t *testing.T, status int, reply string) *exchangeServer {
	t.Helper()
	es := &exchangeServer{}
	es.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		es.mu.Lock()
		es.bodies = append(es.bodies, string(b))
		es.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(es.Close)
	return es
}

func (es *exchangeServer) received() []string {
	es.mu.Lock()
	defer es.mu.Unlock()
	return append([]string(nil), es.bodies...)
}

// newSignInStack builds the real chain: mock credential backend, federated
// authenticator over the HTTP relay, and a session store on memory.
func newSignInStack(t *testing.T, exchangeURL string, src AssertionSource) (AuthService, *session.Store) {
	t.Helper()
	log := logging.Discard()

	relay, err := client.NewTokenExchangeRelay(client.RelayConfig{
		BaseURL:       exchangeURL,
		Path:          "/auth/google",
		Timeout:       2 * time.Second,
		RetryDelay:    10 * time.Millisecond,
		MaxRetryDelay: 20 * time.Millisecond,
	}, nil, log)
	require.NoError(t, err)

	reg := auth.NewRegistry(
		auth.NewLocalAuthenticator(nil),
		NewFederatedAuthenticator(src, relay),
	)
	store := session.NewStore(session.NewTokenIssuer([]byte("secret"), time.Hour), sessions.NewMemoryRepository(), log)
	return NewAuthService(reg, store, nil, nil, log), store
}

func TestSignInFlow_LocalCredentials(t *testing.T) {
	es := newExchangeServer(t, http.StatusOK, `{}`)
	svc, store := newSignInStack(t, es.URL, &fakeSource{})

	sess, err := svc.Login(context.Background(), common.ProviderCredentials,
		auth.Credential{ID: "u1", Password: []byte("p1")})
	require.NoError(t, err)

	want := models.User{ID: "john_doe", Name: "John Doe", Email: "email@email.email"}
	assert.Equal(t, want, *sess.User)
	assert.Equal(t, want, *svc.Current().User)
	assert.Equal(t, session.Authenticated, svc.State())
	assert.NotEmpty(t, store.BearerToken())
	assert.Empty(t, es.received(), "credentials sign-in must not call the exchange endpoint")
}

func TestSignInFlow_Google(t *testing.T) {
	es := newExchangeServer(t, http.StatusOK, `{"id":"g1","name":"G User","email":"g@x.com"}`)
	src := &fakeSource{Assertion: &auth.Assertion{Provider: common.ProviderGoogle, IDToken: "google-id-token"}}
	svc, store := newSignInStack(t, es.URL, src)

	sess, err := svc.Login(context.Background(), common.ProviderGoogle, auth.Credential{})
	require.NoError(t, err)

	want := models.User{ID: "g1", Name: "G User", Email: "g@x.com"}
	assert.Equal(t, want, *sess.User)
	assert.Equal(t, want, *svc.Current().User)
	assert.Equal(t, common.ProviderGoogle, sess.Provider)
	assert.Equal(t, session.Authenticated, svc.State())
	assert.NotEmpty(t, store.BearerToken())
	assert.Equal(t, []string{`{"id_token":"google-id-token"}`}, es.received())
	assert.Equal(t, 1, src.Runs)
}

func TestSignInFlow_GoogleExchangeRejected(t *testing.T) {
	es := newExchangeServer(t, http.StatusUnauthorized, `{"detail":"bad token"}`)
	src := &fakeSource{Assertion: &auth.Assertion{Provider: common.ProviderGoogle, IDToken: "google-id-token"}}
	svc, store := newSignInStack(t, es.URL, src)
	ctx := context.Background()

	first, err := svc.Login(ctx, common.ProviderCredentials, auth.Credential{ID: "u1", Password: []byte("p1")})
	require.NoError(t, err)

	_, err = svc.Login(ctx, common.ProviderGoogle, auth.Credential{})
	require.ErrorIs(t, err, common.ErrTokenExchangeFailed)

	assert.Len(t, es.received(), 1)
	assert.Equal(t, session.Authenticated, svc.State())
	assert.Equal(t, first.ID, svc.Current().ID)
	assert.Equal(t, "john_doe", svc.Current().User.ID)
	assert.Equal(t, first.Token, store.BearerToken())
}
