// Package auth adapts identity providers to a single Authenticator
// capability. Local authenticators check a credential against a backend;
// federated ones run an OAuth2 redirect flow and yield an Assertion that the
// backend exchanges for a user.
package auth

import (
	"context"

	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
)

// Credential is a user-supplied id/password pair. Password is a byte slice
// so callers can wipe it once the attempt is over.
type Credential struct {
	ID       string
	Password []byte
}

// Wipe zeroes the password in place.
func (c *Credential) Wipe() {
	common.WipeByteArray(c.Password)
}

// Assertion is an identity token issued by an external provider. It is
// forwarded as-is and never verified locally.
type Assertion struct {
	Provider    string
	IDToken     string
	AccessToken string
}

// Authenticator turns a sign-in attempt into a complete user record.
// Federated authenticators ignore the credential.
type Authenticator interface {
	Name() string
	Authenticate(ctx context.Context, cred Credential) (*models.User, error)
}
