// Package migrations embeds the goose migrations for the local and shared
// session stores.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/shonkhipto/internal/dbx"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// For returns the migration set for d, rooted so goose can read it at ".".
func For(d dbx.Dialect) (fs.FS, error) {
	switch d {
	case dbx.DialectSQLite:
		return fs.Sub(files, "sqlite")
	case dbx.DialectPostgres:
		return fs.Sub(files, "postgres")
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", string(d))
	}
}
