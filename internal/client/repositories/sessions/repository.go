// Package sessions persists the session record between CLI runs. Records are
// keyed by profile name so several identities can coexist in one store.
package sessions

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
)

// DefaultProfile is the key used when no profile is configured.
const DefaultProfile = "default"

var ErrIncompleteSession = errors.New("session record has no user")

// Repository stores at most one session per profile.
//
// Get returns (nil, nil) when nothing is stored for the profile.
type Repository interface {
	Get(ctx context.Context, profile string) (*models.Session, error)
	Put(ctx context.Context, profile string, s *models.Session) error
	Delete(ctx context.Context, profile string) error
}

func validate(s *models.Session) error {
	if s == nil || s.User.Validate() != nil {
		return ErrIncompleteSession
	}
	return nil
}
