package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/graduates/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SettingsStore = (*SettingsRepo)(nil)

// SettingsRepo is the SQLite implementation of the SettingsStore port interface.
// Values are stored as-is; encryption of sensitive values happens in the
// application layer before they reach this repo.
type SettingsRepo struct {
	db *DB
}

// NewSettingsRepo creates a new SettingsRepo backed by the given DB.
func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get retrieves the value stored under name. The boolean is false when no
// value exists.
func (r *SettingsRepo) Get(ctx context.Context, name string) (string, bool, error) {
	const query = `SELECT value FROM options WHERE name = ?`

	var value string
	err := r.db.Reader.QueryRowContext(ctx, query, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get option %q: %w", name, err)
	}
	return value, true, nil
}

// Set stores or replaces the value for name.
func (r *SettingsRepo) Set(ctx context.Context, name, value string) error {
	const query = `
		INSERT INTO options (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.Writer.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("set option %q: %w", name, err)
	}
	return nil
}

// SetIfAbsent inserts value only if name is unset, then returns whatever value
// is stored. Both statements run on the single writer connection so the
// returned value is the one that won.
func (r *SettingsRepo) SetIfAbsent(ctx context.Context, name, value string) (string, error) {
	const insert = `INSERT INTO options (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT(name) DO NOTHING`
	const query = `SELECT value FROM options WHERE name = ?`

	if _, err := r.db.Writer.ExecContext(ctx, insert, name, value); err != nil {
		return "", fmt.Errorf("insert option %q: %w", name, err)
	}

	var stored string
	if err := r.db.Writer.QueryRowContext(ctx, query, name).Scan(&stored); err != nil {
		return "", fmt.Errorf("read back option %q: %w", name, err)
	}
	return stored, nil
}

// Delete removes the value for name. Missing names are ignored.
func (r *SettingsRepo) Delete(ctx context.Context, name string) error {
	const query = `DELETE FROM options WHERE name = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("delete option %q: %w", name, err)
	}
	return nil
}
