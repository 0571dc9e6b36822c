// Package dbx provides the small database/sql abstractions shared by the
// session repositories: a DBTX interface satisfied by *sql.DB and *sql.Tx,
// a transaction helper and per-dialect placeholder rewriting.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// DBTX is the subset of database/sql used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect names a SQL flavour understood by goose and by Rebind.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() (string, error) {
	switch d {
	case DialectSQLite:
		return "sqlite", nil
	case DialectPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unknown dialect %q", string(d))
	}
}

// Rebind rewrites '?' placeholders into the dialect's form. Queries are
// written once with '?' and rebound for postgres ($1, $2, ...).
// Question marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for _, r := range query {
		switch {
		case r == '\'':
			quoted = !quoted
			b.WriteRune(r)
		case r == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back otherwise; a panic in fn rolls back and is re-raised.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE profile = ?", p)
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
