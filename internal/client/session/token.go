package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "shonkhipto"

// Claims is the payload of a session bearer token. The subject is the
// user id; the display fields travel along so resource servers need not
// look the user up.
type Claims struct {
	jwt.RegisteredClaims
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider"`
}

// TokenIssuer mints and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for u. The returned times are second-aligned so they
// match what the token itself carries.
func (i *TokenIssuer) Issue(u *models.User, provider string) (string, time.Time, time.Time, error) {
	if err := u.Validate(); err != nil {
		return "", time.Time{}, time.Time{}, err
	}

	issued := i.now().UTC().Truncate(time.Second)
	expires := issued.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Name:     u.Name,
		Email:    u.Email,
		Provider: provider,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, issued, expires, nil
}

// Verify parses tokenString and returns its claims. Expired tokens yield
// common.ErrTokenExpired, anything else that fails common.ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
