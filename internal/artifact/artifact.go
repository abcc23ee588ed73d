// Package artifact opens and creates the registry artifact: a single SQLite
// file whose schema is owned by the embedded goose migrations.
//
// The only table in the file is Resources. The applied migration version
// lives in the SQLite header (user_version), not in a goose table.
//
// The file is kept in rollback-journal mode so that, once a write has
// committed, the main file alone holds the complete database and can be
// copied byte for byte.
package artifact

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/regsync/internal/artifact/migrations"
	"github.com/dmitrijs2005/regsync/internal/common"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// sqliteMagic is the 16-byte header of every SQLite 3 database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// Artifact is an open handle on the registry file.
type Artifact struct {
	Path string
	DB   *sql.DB
	// Migrated is set when opening applied migrations, so the file on disk
	// no longer matches the bytes it held before.
	Migrated bool
}

func (a *Artifact) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// Open opens an existing artifact and brings its schema up to date.
// It returns common.ErrNotFound when path does not exist.
func Open(ctx context.Context, path string) (*Artifact, error) {
	if err := mustExist(path); err != nil {
		return nil, err
	}
	return open(ctx, path)
}

// OpenReadOnly opens an existing artifact without migrating it. Any write
// through the handle fails.
func OpenReadOnly(ctx context.Context, path string) (*Artifact, error) {
	if err := mustExist(path); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", common.ErrLocalIO, path, err)
	}
	dsn := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}).String()

	db, err := connect(ctx, dsn, path)
	if err != nil {
		return nil, err
	}
	return &Artifact{Path: path, DB: db}, nil
}

// Create makes a brand-new artifact with an empty registry. It refuses to
// touch an existing file. The create race with another writer is reported
// as common.ErrLocalIO.
func Create(ctx context.Context, path string) (*Artifact, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: create %s: file already exists", common.ErrLocalIO, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: stat %s: %v", common.ErrLocalIO, path, err)
	}
	return open(ctx, path)
}

func mustExist(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("artifact %s: %w", path, common.ErrNotFound)
		}
		return fmt.Errorf("%w: stat %s: %v", common.ErrLocalIO, path, err)
	}
	return nil
}

// Validate reports whether data looks like a SQLite database image.
func Validate(data []byte) error {
	if !bytes.HasPrefix(data, sqliteMagic) {
		return errors.New("content is not a SQLite database")
	}
	return nil
}

func open(ctx context.Context, path string) (*Artifact, error) {
	db, err := connect(ctx, path, path)
	if err != nil {
		return nil, err
	}

	for _, p := range []string{"PRAGMA journal_mode = DELETE", "PRAGMA synchronous = FULL"} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %q: %v", common.ErrLocalIO, p, err)
		}
	}

	migrated, err := RunMigrations(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	return &Artifact{Path: path, DB: db, Migrated: migrated}, nil
}

func connect(ctx context.Context, dsn, path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", common.ErrLocalIO, path, err)
	}

	// one connection keeps the pragmas in effect for every statement
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: connect %s: %v", common.ErrLocalIO, path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: busy_timeout on %s: %v", common.ErrLocalIO, path, err)
	}
	return db, nil
}

// RunMigrations applies the embedded registry migrations and reports
// whether any were applied. It is idempotent and writes nothing when the
// schema is current.
func RunMigrations(ctx context.Context, db *sql.DB) (bool, error) {
	provider, err := goose.NewProvider(goose.DialectCustom, db, migrations.Migrations,
		goose.WithStore(userVersionStore{}),
		goose.WithDisableGlobalRegistry(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return len(results) > 0, nil
}

// Store adapts Open and Create to an interface for callers that take the
// artifact lifecycle as a dependency.
type Store struct{}

func (Store) Open(ctx context.Context, path string) (*Artifact, error) {
	return Open(ctx, path)
}

func (Store) Create(ctx context.Context, path string) (*Artifact, error) {
	return Create(ctx, path)
}
