package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
)

// copyToClipboard asks the terminal to set the clipboard (OSC 52). Test seam.
var copyToClipboard = func(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, "\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}

func (a *App) Shorten(ctx context.Context, url string) error {
	l, err := a.links.Create(url)
	if err != nil {
		fmt.Fprintf(a.out, "Shorten failed: %s\n", err.Error())
		return err
	}
	if l == nil {
		return nil
	}
	fmt.Fprintf(a.out, "%s -> %s\n", l.Original, l.Short)
	return nil
}

func (a *App) List(ctx context.Context) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSHORT\tORIGINAL\tCLICKS")
	for _, l := range a.links.List() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", l.ID, l.Short, l.Original, l.Clicks)
	}
	return tw.Flush()
}

func (a *App) lookup(id string) (*models.Link, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		fmt.Fprintf(a.out, "Invalid id %q\n", id)
		return nil, err
	}
	l, err := a.links.Get(n)
	if err != nil {
		fmt.Fprintf(a.out, "No link with id %d\n", n)
		return nil, err
	}
	return l, nil
}

// Copy puts the short URL of link id on the clipboard.
func (a *App) Copy(ctx context.Context, id string) error {
	l, err := a.lookup(id)
	if err != nil {
		return err
	}
	if err := copyToClipboard(a.out, l.Short); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Copied %s\n", l.Short)
	return nil
}

// Open opens the short URL of link id in the browser.
func (a *App) Open(ctx context.Context, id string) error {
	l, err := a.lookup(id)
	if err != nil {
		return err
	}
	if err := a.open(l.Short); err != nil {
		fmt.Fprintf(a.out, "Could not open browser: %s\n", err.Error())
		return err
	}
	return nil
}
