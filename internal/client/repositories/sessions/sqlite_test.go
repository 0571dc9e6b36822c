package sessions

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/client/migrations"
	"github.com/dmitrijs2005/shonkhipto/internal/dbx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	fsys, err := migrations.For(dbx.DialectSQLite)
	require.NoError(t, err)
	goose.SetBaseFS(fsys)
	t.Cleanup(func() { goose.SetBaseFS(nil) })
	require.NoError(t, goose.SetDialect(string(dbx.DialectSQLite)))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return db
}

func TestSQLite_PutThenGet(t *testing.T) {
	r := NewSQLRepository(setupSQLite(t), dbx.DialectSQLite)
	ctx := context.Background()

	s := sampleSession()
	require.NoError(t, r.Put(ctx, DefaultProfile, s))

	got, err := r.Get(ctx, DefaultProfile)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestSQLite_Get_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLRepository(setupSQLite(t), dbx.DialectSQLite)

	got, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLite_Put_ReplacesWholeRecord(t *testing.T) {
	r := NewSQLRepository(setupSQLite(t), dbx.DialectSQLite)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, DefaultProfile, sampleSession()))

	next := sampleSession()
	next.ID = "9f1d1f35-1111-4a2b-8c3d-123456789abc"
	next.User.Name = ""
	next.User.Email = "new@example.com"
	next.Provider = "google"
	require.NoError(t, r.Put(ctx, DefaultProfile, next))

	got, err := r.Get(ctx, DefaultProfile)
	require.NoError(t, err)
	require.Equal(t, next, got)
}

func TestSQLite_Put_PrunesOtherExpiredProfiles(t *testing.T) {
	db := setupSQLite(t)
	r := NewSQLRepository(db, dbx.DialectSQLite)
	ctx := context.Background()

	stale := sampleSession()
	stale.ExpiresAt = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := db.Exec(`INSERT INTO sessions (profile, id, user_id, token, provider, issued_at, expires_at)
		VALUES ('old', 'x', 'u', 't', 'credentials', 0, ?)`, stale.ExpiresAt.Unix())
	require.NoError(t, err)

	require.NoError(t, r.Put(ctx, DefaultProfile, sampleSession()))

	got, err := r.Get(ctx, "old")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLite_Delete_IsIdempotent(t *testing.T) {
	r := NewSQLRepository(setupSQLite(t), dbx.DialectSQLite)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, DefaultProfile, sampleSession()))
	require.NoError(t, r.Delete(ctx, DefaultProfile))
	require.NoError(t, r.Delete(ctx, DefaultProfile))

	got, err := r.Get(ctx, DefaultProfile)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLite_ErrorsAreWrapped(t *testing.T) {
	db := setupSQLite(t)
	r := NewSQLRepository(db, dbx.DialectSQLite)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get session[k]")

	err = r.Put(ctx, "k", sampleSession())
	require.ErrorContains(t, err, "failed to put session[k]")

	err = r.Delete(ctx, "k")
	require.ErrorContains(t, err, "failed to delete session[k]")
}
