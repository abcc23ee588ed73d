// Package localstore performs the filesystem side of reconciliation: probing
// for the artifact, making and removing the disposable encrypted copy, and
// writing pulled content into place.
//
// Copy and Remove are cleanup-friendly: a missing source is logged at Warn
// level and reported as success, so a best-effort cleanup never turns into
// a failure of its own. All other failures wrap common.ErrLocalIO.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/regsync/internal/common"
	"github.com/dmitrijs2005/regsync/internal/logging"
)

const (
	filePerm = 0o600
	dirPerm  = 0o770
)

type Store struct {
	log logging.Logger
}

func New(log logging.Logger) *Store {
	return &Store{log: log}
}

// Exists reports whether path names an existing regular file.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug(ctx, "local file absent", "path", path)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: stat %s: %v", common.ErrLocalIO, path, err)
	}
	if fi.IsDir() {
		return false, fmt.Errorf("%w: %s is a directory", common.ErrLocalIO, path)
	}
	s.log.Debug(ctx, "local file present", "path", path, "size", fi.Size())
	return true, nil
}

// Copy duplicates src into dst, replacing dst. A missing src is a no-op.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Warn(ctx, "copy skipped, source missing", "src", src, "dst", dst)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", common.ErrLocalIO, src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", common.ErrLocalIO, dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: copy %s -> %s: %v", common.ErrLocalIO, src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", common.ErrLocalIO, dst, err)
	}

	s.log.Debug(ctx, "file copied", "src", src, "dst", dst)
	return nil
}

// Remove deletes path. A missing path is a no-op.
func (s *Store) Remove(ctx context.Context, path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Warn(ctx, "remove skipped, file missing", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: remove %s: %v", common.ErrLocalIO, path, err)
	}
	s.log.Debug(ctx, "file removed", "path", path)
	return nil
}

func (s *Store) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrLocalIO, path, err)
	}
	return data, nil
}

// WriteFile replaces path in place (truncating). Used for the disposable
// copy, which is owned by a single call.
func (s *Store) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("%w: write %s: %v", common.ErrLocalIO, path, err)
	}
	return nil
}

// WriteFileAtomic writes data to a sibling temp file and renames it over
// path, so readers see either the old content or the complete new content.
// Missing parent directories are created.
func (s *Store) WriteFileAtomic(ctx context.Context, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: create temp in %s: %v", common.ErrLocalIO, dir, err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %s %s: %v", common.ErrLocalIO, step, tmpName, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", common.ErrLocalIO, tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: rename %s -> %s: %v", common.ErrLocalIO, tmpName, path, err)
	}

	s.log.Debug(ctx, "file written", "path", path, "size", len(data))
	return nil
}

// EnsureDir creates dir and its parents if they do not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", common.ErrLocalIO, dir, err)
	}
	return nil
}
