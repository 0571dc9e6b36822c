package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	httpclient "github.com/appleboy/go-httpclient"
	"golang.org/x/crypto/bcrypt"
)

var ErrBackendUnavailable = errors.New("credential backend unavailable")

// BackendUser is the user object as credential backends return it, with
// upper-case field names.
type BackendUser struct {
	ID    string `json:"ID"`
	Name  string `json:"NAME"`
	Email string `json:"EMAIL"`
}

// BackendResponse is {"success":..., "data":{"user":{...}}}.
type BackendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    struct {
		User BackendUser `json:"user"`
	} `json:"data"`
}

// CredentialBackend answers whether id/password identify a user. A clean
// "no" is a response with Success=false, not an error.
type CredentialBackend interface {
	Login(ctx context.Context, id string, password []byte) (*BackendResponse, error)
}

// MockBackend accepts every credential and answers with a fixed user.
// It stands in for a real backend in development.
type MockBackend struct{}

func (MockBackend) Login(context.Context, string, []byte) (*BackendResponse, error) {
	resp := &BackendResponse{Success: true}
	resp.Data.User = BackendUser{ID: "john_doe", Name: "John Doe", Email: "email@email.email"}
	return resp, nil
}

// StaticUser is one entry of a StaticBackend.
type StaticUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// StaticBackend checks credentials against a fixed set of bcrypt hashes,
// keyed by user id.
type StaticBackend struct {
	mu    sync.RWMutex
	users map[string]StaticUser
}

func NewStaticBackend(users map[string]StaticUser) *StaticBackend {
	cp := make(map[string]StaticUser, len(users))
	for k, v := range users {
		cp[k] = v
	}
	return &StaticBackend{users: cp}
}

// HashPassword returns the bcrypt hash to store in a StaticUser.
func HashPassword(password []byte) (string, error) {
	h, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b *StaticBackend) Login(_ context.Context, id string, password []byte) (*BackendResponse, error) {
	b.mu.RLock()
	u, ok := b.users[id]
	b.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), password) != nil {
		return &BackendResponse{Success: false, Message: "invalid credentials"}, nil
	}

	resp := &BackendResponse{Success: true}
	resp.Data.User = BackendUser{ID: id, Name: u.Name, Email: u.Email}
	return resp, nil
}

// HTTPBackend posts {"id","password"} as JSON to a login endpoint and
// expects a BackendResponse back.
type HTTPBackend struct {
	url    string
	client *http.Client
}

type httpLoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

func NewHTTPBackend(url string, timeout time.Duration) (*HTTPBackend, error) {
	client, err := httpclient.NewAuthClient(httpclient.AuthModeNone, "",
		httpclient.WithTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login client: %w", err)
	}
	return &HTTPBackend{url: url, client: client}, nil
}

func (b *HTTPBackend) Login(ctx context.Context, id string, password []byte) (*BackendResponse, error) {
	payload, err := json.Marshal(httpLoginRequest{ID: id, Password: string(password)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response", ErrBackendUnavailable)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &BackendResponse{Success: false, Message: resp.Status}, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: HTTP %d", ErrBackendUnavailable, resp.StatusCode)
	}

	var out BackendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return &out, nil
}
