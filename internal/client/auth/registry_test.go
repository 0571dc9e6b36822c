package auth

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedAuth string

func (n namedAuth) Name() string { return string(n) }
func (n namedAuth) Authenticate(context.Context, Credential) (*models.User, error) {
	return &models.User{ID: string(n)}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(namedAuth("google"), NewLocalAuthenticator(nil))

	assert.Equal(t, []string{"credentials", "google"}, r.Names())

	a, err := r.Get("google")
	require.NoError(t, err)
	assert.Equal(t, "google", a.Name())

	_, err = r.Get("github")
	require.ErrorIs(t, err, common.ErrUnsupportedProvider)

	r.Register(namedAuth("github"))
	_, err = r.Get("github")
	require.NoError(t, err)
}
