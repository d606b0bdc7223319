package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/graduates/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CapabilityStore = (*CapabilityRepo)(nil)

// CapabilityRepo is the SQLite implementation of the CapabilityStore port interface.
type CapabilityRepo struct {
	db *DB
}

// NewCapabilityRepo creates a new CapabilityRepo backed by the given DB.
func NewCapabilityRepo(db *DB) *CapabilityRepo {
	return &CapabilityRepo{db: db}
}

// Grant adds the capabilities to role in a single transaction. Capabilities
// the role already holds are left untouched.
func (r *CapabilityRepo) Grant(ctx context.Context, role string, capabilities []string) error {
	const query = `INSERT INTO role_capabilities (role, capability) VALUES (?, ?) ON CONFLICT(role, capability) DO NOTHING`
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range capabilities {
			if _, err := tx.ExecContext(ctx, query, role, c); err != nil {
				return fmt.Errorf("grant %s to %s: %w", c, role, err)
			}
		}
		return nil
	})
}

// Revoke removes the capabilities from role. Missing grants are ignored.
func (r *CapabilityRepo) Revoke(ctx context.Context, role string, capabilities []string) error {
	const query = `DELETE FROM role_capabilities WHERE role = ? AND capability = ?`
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range capabilities {
			if _, err := tx.ExecContext(ctx, query, role, c); err != nil {
				return fmt.Errorf("revoke %s from %s: %w", c, role, err)
			}
		}
		return nil
	})
}

// Has reports whether role holds capability.
func (r *CapabilityRepo) Has(ctx context.Context, role, capability string) (bool, error) {
	const query = `SELECT 1 FROM role_capabilities WHERE role = ? AND capability = ?`

	var one int
	err := r.db.Reader.QueryRowContext(ctx, query, role, capability).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s for %s: %w", capability, role, err)
	}
	return true, nil
}

// ListByRole returns the capabilities held by role, sorted by name.
func (r *CapabilityRepo) ListByRole(ctx context.Context, role string) ([]string, error) {
	const query = `SELECT capability FROM role_capabilities WHERE role = ? ORDER BY capability`

	rows, err := r.db.Reader.QueryContext(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("list capabilities for %s: %w", role, err)
	}
	defer rows.Close()

	caps := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan capability: %w", err)
		}
		caps = append(caps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate capabilities: %w", err)
	}
	return caps, nil
}

func (r *CapabilityRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
