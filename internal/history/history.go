// Package history is a strictly supplemental audit trail: one row per
// completed validation round, written for operational observability only.
// It is never read at startup and never required for the Pool to recover —
// the Pool's own persistence lives entirely in proxies.json.
package history

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/greywire/proxypool/internal/pool"
	"github.com/greywire/proxypool/internal/validator"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store writes round summaries to {dataDir}/history.db.
type Store struct {
	db   *sql.DB
	pool *pool.Pool
}

// Open creates (or reuses) history.db under dataDir, applying embedded
// migrations, and binds it to p so RecordRound can capture tier counts
// alongside each round's promotion/demotion/eviction tally.
func Open(dataDir string, p *pool.Pool) (*Store, error) {
	path := filepath.Join(dataDir, "history.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q on %s: %w", pragma, path, err)
		}
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	return &Store{db: db, pool: p}, nil
}

func migrateUp(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("init migration source: %w", err)
	}
	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// RecordRound inserts one row for a completed Validator round. Matches the
// validator.Validator.RoundSummary hook signature exactly; a write failure
// is swallowed, never propagated — this store must never be on the
// Validator's critical path.
func (s *Store) RecordRound(summary validator.Summary) {
	if s == nil {
		return
	}
	_, _ = s.db.Exec(
		`INSERT INTO rounds (round_uuid, recorded_at_ns, stable_count, unstable_count, promotions, demotions, evictions)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		time.Now().UnixNano(),
		s.pool.StableCount(),
		s.pool.UnstableCount(),
		summary.Promotions,
		summary.Demotions,
		summary.Evictions,
	)
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
