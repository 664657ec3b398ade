// Package pg opens the shared PostgreSQL pool used by every
// persistent store in the service.
package pg

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the pool for the per-entity stores and migrations.
func (s *Store) DB() *sql.DB { return s.db }

// Ping verifies connectivity; the readiness probe calls this.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
