package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/client/auth"
	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for an identifier and password and signs in with the
// credentials provider. A failed attempt keeps any previous session.
func (a *App) Login(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter user id", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	return a.signIn(ctx, common.ProviderCredentials, auth.Credential{ID: id, Password: password})
}

// Google runs the browser sign-in. It is only offered when Google client
// credentials are configured.
func (a *App) Google(ctx context.Context) error {
	return a.signIn(ctx, common.ProviderGoogle, auth.Credential{})
}

func (a *App) signIn(ctx context.Context, provider string, cred auth.Credential) error {
	sess, err := a.authService.Login(ctx, provider, cred)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnsupportedProvider):
			fmt.Fprintf(a.out, "Sign-in with %s is not configured\n", provider)
		case errors.Is(err, common.ErrAuthenticationFailed):
			fmt.Fprintln(a.out, "Login unsuccessful: invalid credentials")
		case errors.Is(err, common.ErrTokenExchangeFailed):
			fmt.Fprintln(a.out, "Login unsuccessful: the backend rejected the Google sign-in")
		default:
			fmt.Fprintf(a.out, "Login unsuccessful: %s\n", err.Error())
		}
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", sess.User.DisplayName())
	return nil
}

// Logout drops the session locally and in the session store.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Logout failed: %s\n", err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the current session.
func (a *App) WhoAmI(ctx context.Context) error {
	cur := a.authService.Current()
	if cur == nil || !a.isLoggedIn() {
		fmt.Fprintf(a.out, "Not logged in (%s)\n", a.authService.State())
		return nil
	}

	fmt.Fprintf(a.out, "User:     %s\n", cur.User.DisplayName())
	fmt.Fprintf(a.out, "ID:       %s\n", cur.User.ID)
	if cur.User.Email != "" {
		fmt.Fprintf(a.out, "Email:    %s\n", cur.User.Email)
	}
	fmt.Fprintf(a.out, "Provider: %s\n", cur.Provider)
	if !cur.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Expires:  %s\n", cur.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// Update replaces the session user's name and email. Blank answers keep
// the current value. Without a session nothing changes.
func (a *App) Update(ctx context.Context) error {
	cur := a.authService.Current()
	if cur == nil || !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Nothing to update: not logged in")
		return nil
	}

	name, err := getSimpleText(a.reader, fmt.Sprintf("Display name [%s]", cur.User.Name), a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, fmt.Sprintf("Email [%s]", cur.User.Email), a.out)
	if err != nil {
		return err
	}

	u := &models.User{ID: cur.User.ID, Name: cur.User.Name, Email: cur.User.Email}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}

	ok, err := a.authService.Update(ctx, u)
	if err != nil {
		fmt.Fprintf(a.out, "Update failed: %s\n", err.Error())
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Nothing to update: not logged in")
		return nil
	}
	fmt.Fprintln(a.out, "Session updated")
	return nil
}
