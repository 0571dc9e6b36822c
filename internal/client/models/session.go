package models

import "time"

// Session is the persisted session record. User is either nil or a complete
// value; it is always replaced as a whole, never merged field by field.
type Session struct {
	ID        string    `json:"id"`
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	Provider  string    `json:"provider"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Clone deep-copies s so callers cannot mutate a store's record.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.User = s.User.Clone()
	return &c
}

// Expired reports whether the session is past its expiry at now.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
