package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/dmitrijs2005/shonkhipto/internal/dbx"
)

// SQLRepository stores sessions in the "sessions" table created by the
// embedded migrations. The same queries serve SQLite and Postgres; only the
// placeholder style differs.
type SQLRepository struct {
	db      *sql.DB
	dialect dbx.Dialect
	now     func() time.Time
}

func NewSQLRepository(db *sql.DB, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect, now: time.Now}
}

const (
	selectSession = `SELECT id, user_id, user_name, user_email, token, provider, issued_at, expires_at
FROM sessions WHERE profile = ?`

	pruneExpired = `DELETE FROM sessions WHERE expires_at <= ? AND profile <> ?`

	upsertSession = `INSERT INTO sessions (profile, id, user_id, user_name, user_email, token, provider, issued_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (profile) DO UPDATE SET
    id = excluded.id,
    user_id = excluded.user_id,
    user_name = excluded.user_name,
    user_email = excluded.user_email,
    token = excluded.token,
    provider = excluded.provider,
    issued_at = excluded.issued_at,
    expires_at = excluded.expires_at`

	deleteSession = `DELETE FROM sessions WHERE profile = ?`
)

func (r *SQLRepository) Get(ctx context.Context, profile string) (*models.Session, error) {
	var (
		s                 models.Session
		u                 models.User
		issued, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(selectSession), profile).
		Scan(&s.ID, &u.ID, &u.Name, &u.Email, &s.Token, &s.Provider, &issued, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session[%s]: %w", profile, err)
	}

	s.User = &u
	s.IssuedAt = time.Unix(issued, 0).UTC()
	s.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return &s, nil
}

// Put upserts the record for profile. Expired records of other profiles are
// swept in the same transaction.
func (r *SQLRepository) Put(ctx context.Context, profile string, s *models.Session) error {
	if err := validate(s); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, r.dialect.Rebind(pruneExpired), r.now().Unix(), profile); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, r.dialect.Rebind(upsertSession),
			profile, s.ID, s.User.ID, s.User.Name, s.User.Email,
			s.Token, s.Provider, s.IssuedAt.Unix(), s.ExpiresAt.Unix())
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to put session[%s]: %w", profile, err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, profile string) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(deleteSession), profile); err != nil {
		return fmt.Errorf("failed to delete session[%s]: %w", profile, err)
	}
	return nil
}
