package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/regsync/internal/common"
	"github.com/dmitrijs2005/regsync/internal/dbx"
	"github.com/dmitrijs2005/regsync/internal/logging"
)

// ResourceS3 is the resource type under which the project bucket is recorded.
const ResourceS3 = "S3"

type Entry struct {
	ResourceType string
	Identifier   string
}

// DB is satisfied by *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

type Registry struct {
	db  DB
	log logging.Logger
}

func New(db DB, log logging.Logger) *Registry {
	return &Registry{db: db, log: log}
}

// Get returns the identifier recorded for resourceType, or common.ErrNotFound.
func (r *Registry) Get(ctx context.Context, resourceType string) (string, error) {
	return get(ctx, r.db, resourceType)
}

func get(ctx context.Context, db dbx.DBTX, resourceType string) (string, error) {
	var id string
	err := db.QueryRowContext(ctx,
		`SELECT Identifier FROM Resources WHERE ResourceType = ? ORDER BY rowid DESC LIMIT 1`,
		resourceType).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("registry entry %s: %w", resourceType, common.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get registry entry %s: %w", resourceType, err)
	}
	return id, nil
}

// Put records identifier for resourceType, replacing any previous entry.
// It reports whether the stored value changed.
func (r *Registry) Put(ctx context.Context, resourceType, identifier string) (bool, error) {
	changed := false
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		prev, err := get(ctx, tx, resourceType)
		switch {
		case errors.Is(err, common.ErrNotFound):
		case err != nil:
			return err
		case prev == identifier:
			var n int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM Resources WHERE ResourceType = ?`, resourceType).Scan(&n); err != nil {
				return fmt.Errorf("failed to count registry entries %s: %w", resourceType, err)
			}
			if n == 1 {
				return nil
			}
		default:
			r.log.Warn(ctx, "registry entry overwritten",
				"resource_type", resourceType, "old", prev, "new", identifier)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM Resources WHERE ResourceType = ?`, resourceType); err != nil {
			return fmt.Errorf("failed to clear registry entry %s: %w", resourceType, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO Resources (ResourceType, Identifier) VALUES (?, ?)`,
			resourceType, identifier); err != nil {
			return fmt.Errorf("failed to insert registry entry %s: %w", resourceType, err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// List returns every row of the table in insertion order.
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ResourceType, Identifier FROM Resources ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list registry: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ResourceType, &e.Identifier); err != nil {
			return nil, fmt.Errorf("failed to scan registry row: %w", err)
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registry rows: %w", err)
	}

	return result, nil
}
