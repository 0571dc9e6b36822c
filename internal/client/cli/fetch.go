package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shonkhipto/internal/client/client"
	"github.com/dmitrijs2005/shonkhipto/internal/common"
)

// Fetch GETs url with the session's bearer token and prints the JSON body.
func (a *App) Fetch(ctx context.Context, url string) error {
	v, err := a.fetcher.Fetch(ctx, url, client.RequestOptions{})
	if err != nil {
		if errors.Is(err, common.ErrMissingCredential) {
			fmt.Fprintln(a.out, "Please log in first")
		} else {
			fmt.Fprintf(a.out, "Fetch failed: %s\n", err.Error())
		}
		return err
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(b))
	return nil
}
