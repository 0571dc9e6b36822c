package client

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/client/migrations"
	"github.com/dmitrijs2005/shonkhipto/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/shonkhipto/internal/dbx"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Session store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// StorageOptions selects and addresses the session store.
type StorageOptions struct {
	Backend       string
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ConnTimeout   time.Duration
}

type Repositories struct {
	Sessions sessions.Repository
	closer   func() error
}

func (r *Repositories) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	fsys, err := migrations.For(dialect)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// OpenDatabase opens dsn with the dialect's driver and migrates it.
func OpenDatabase(ctx context.Context, dialect dbx.Dialect, dsn string) (*sql.DB, error) {
	driver, err := dialect.DriverName()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if dialect == dbx.DialectSQLite {
		// one connection: in-memory databases are per connection, and
		// SQLite serialises writers anyway
		db.SetMaxOpenConns(1)
	}

	if err := RunMigrations(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return db, nil
}

func InitRepositories(ctx context.Context, opts StorageOptions) (*Repositories, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return &Repositories{Sessions: sessions.NewMemoryRepository()}, nil

	case BackendSQLite, BackendPostgres:
		dialect := dbx.DialectSQLite
		if opts.Backend == BackendPostgres {
			dialect = dbx.DialectPostgres
		}
		db, err := OpenDatabase(ctx, dialect, opts.DSN)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Sessions: sessions.NewSQLRepository(db, dialect),
			closer:   db.Close,
		}, nil

	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})

		timeout := opts.ConnTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.RedisAddr, err)
		}
		return &Repositories{
			Sessions: sessions.NewRedisRepository(rdb),
			closer:   rdb.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown session backend %q", opts.Backend)
	}
}
