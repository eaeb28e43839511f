package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // postgres driver

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

// Compile-time interface check.
var _ domain.SettingsStore = (*PostgresStore)(nil)

const schema = `CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value JSONB NOT NULL
)`

const upsert = `INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

// PostgresStore keeps one row per setting, so several front ends can share
// a household profile.
type PostgresStore struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenPostgres connects to dsn and creates the settings table if needed.
func OpenPostgres(ctx context.Context, dsn string, log *logger.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}
	log.Info("settings stored in postgres")
	return &PostgresStore{db: db, log: log}, nil
}

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}

// Load reads every row and merges it over the defaults.
func (p *PostgresStore) Load(ctx context.Context) (*domain.Settings, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]json.RawMessage)
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		stored[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	p.log.Debug("loaded %d stored settings", len(stored))
	return Merge(stored, p.log), nil
}

// Save upserts every key in one transaction.
func (p *PostgresStore) Save(ctx context.Context, s *domain.Settings) error {
	values, err := Split(s)
	if err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, name := range Keys() {
		if _, err := stmt.ExecContext(ctx, name, []byte(values[name])); err != nil {
			return fmt.Errorf("upsert %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// Reset deletes every row.
func (p *PostgresStore) Reset(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM settings`); err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	p.log.Info("settings reset")
	return nil
}
