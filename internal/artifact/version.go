package artifact

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3/database"
)

// userVersionStore records the applied goose version in the SQLite header
// (PRAGMA user_version) instead of a version table, so the artifact holds
// no tables besides the registry. Migrations are numbered sequentially,
// which lets every version up to the stored one count as applied.
type userVersionStore struct{}

var _ database.Store = userVersionStore{}

func (userVersionStore) Tablename() string { return "user_version" }

// TableExists is always true: the header field exists in every database.
func (userVersionStore) TableExists(context.Context, database.DBTxConn) (bool, error) {
	return true, nil
}

func (userVersionStore) CreateVersionTable(context.Context, database.DBTxConn) error {
	return nil
}

func (userVersionStore) Insert(ctx context.Context, db database.DBTxConn, req database.InsertRequest) error {
	current, err := readUserVersion(ctx, db)
	if err != nil {
		return err
	}
	if req.Version <= current {
		return nil
	}
	return writeUserVersion(ctx, db, req.Version)
}

func (userVersionStore) Delete(ctx context.Context, db database.DBTxConn, version int64) error {
	return writeUserVersion(ctx, db, version-1)
}

func (userVersionStore) GetMigration(ctx context.Context, db database.DBTxConn, version int64) (*database.GetMigrationResult, error) {
	current, err := readUserVersion(ctx, db)
	if err != nil {
		return nil, err
	}
	if version > current {
		return nil, database.ErrVersionNotFound
	}
	return &database.GetMigrationResult{IsApplied: true}, nil
}

func (userVersionStore) GetLatestVersion(ctx context.Context, db database.DBTxConn) (int64, error) {
	return readUserVersion(ctx, db)
}

// ListMigrations returns current..0, newest first.
func (userVersionStore) ListMigrations(ctx context.Context, db database.DBTxConn) ([]*database.ListMigrationsResult, error) {
	current, err := readUserVersion(ctx, db)
	if err != nil {
		return nil, err
	}
	out := make([]*database.ListMigrationsResult, 0, current+1)
	for v := current; v >= 0; v-- {
		out = append(out, &database.ListMigrationsResult{Version: v, IsApplied: true})
	}
	return out, nil
}

func readUserVersion(ctx context.Context, db database.DBTxConn) (int64, error) {
	var v int64
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func writeUserVersion(ctx context.Context, db database.DBTxConn, v int64) error {
	if v < 0 {
		v = 0
	}
	// pragmas take no bind parameters
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
		return fmt.Errorf("failed to write schema version %d: %w", v, err)
	}
	return nil
}
