// Package models defines the client-side data types shared by the session,
// authentication and link packages.
package models

import (
	"errors"
	"strings"
)

var ErrIncompleteUser = errors.New("user record requires a non-empty id")

// User is the identity a session is bound to. On the wire it is the
// lower-case {"id","name","email"} object returned by the backend.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate reports whether u can be installed into a session.
func (u *User) Validate() error {
	if u == nil || strings.TrimSpace(u.ID) == "" {
		return ErrIncompleteUser
	}
	return nil
}

// Clone returns an independent copy, or nil for a nil user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// DisplayName is Name when present, the ID otherwise.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}
