// Package db opens the SQLite store for replays and keeps its schema current.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vytor/stormstats/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the replay store handle. Repositories take the embedded *sql.DB.
type DB struct {
	*sql.DB
}

// Open opens the replay database at path in WAL mode and brings the
// replays and replay_players tables up to date.
func Open(path string) (*DB, error) {
	log := logger.Default().WithPrefix("db")

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL", path)
	log.Info("opening replay store: %s", path)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Error("failed to open replay store: %v", err)
		return nil, err
	}
	// result writes replace a replay's player rows in one transaction
	sqlDB.SetMaxOpenConns(1)

	applied, err := Migrate(context.Background(), sqlDB)
	if err != nil {
		log.Error("schema upgrade failed: %v", err)
		_ = sqlDB.Close()
		return nil, err
	}
	if len(applied) > 0 {
		log.Info("schema upgraded: %v", applied)
	}

	log.Info("replay store ready")
	return &DB{DB: sqlDB}, nil
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations, in file name order, and returns the versions it applied.
// Each migration commits together with its version row.
func Migrate(ctx context.Context, conn *sql.DB) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("db")

	if _, err := conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at DATETIME DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return nil, err
	}

	done, err := appliedVersions(ctx, conn)
	if err != nil {
		return nil, err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var applied []string
	for _, entry := range entries {
		version := entry.Name()
		if done[version] {
			log.Debug("migration %s already applied", version)
			continue
		}
		script, err := migrationsFS.ReadFile("migrations/" + version)
		if err != nil {
			return applied, err
		}
		if err := applyOne(ctx, conn, version, string(script)); err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", version, err)
		}
		applied = append(applied, version)
	}
	return applied, nil
}

func applyOne(ctx context.Context, conn *sql.DB, version, script string) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func appliedVersions(ctx context.Context, conn *sql.DB) (map[string]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}
