package auth

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
)

// LocalAuthenticator is the "credentials" provider.
type LocalAuthenticator struct {
	backend CredentialBackend
}

var _ Authenticator = (*LocalAuthenticator)(nil)

func NewLocalAuthenticator(backend CredentialBackend) *LocalAuthenticator {
	if backend == nil {
		backend = MockBackend{}
	}
	return &LocalAuthenticator{backend: backend}
}

func (a *LocalAuthenticator) Name() string { return common.ProviderCredentials }

// Authenticate rejects a credential with a missing id or password without
// consulting the backend. Every negative outcome, including backend
// failures, is reported as common.ErrAuthenticationFailed.
func (a *LocalAuthenticator) Authenticate(ctx context.Context, cred Credential) (*models.User, error) {
	if cred.ID == "" || len(cred.Password) == 0 {
		return nil, common.ErrAuthenticationFailed
	}

	resp, err := a.backend.Login(ctx, cred.ID, cred.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthenticationFailed, err)
	}
	if resp == nil || !resp.Success {
		return nil, common.ErrAuthenticationFailed
	}

	u := &models.User{
		ID:    resp.Data.User.ID,
		Name:  resp.Data.User.Name,
		Email: resp.Data.User.Email,
	}
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthenticationFailed, err)
	}
	return u, nil
}
