package localstore

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/dmitrijs2005/regsync/internal/common"
	"github.com/dmitrijs2005/regsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(logging.NewSlogLogger(l)), &buf
}

func TestExists(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	p := filepath.Join(dir, "warinpocket.sqlite")
	ok, err := s.Exists(ctx, p)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(p, []byte("db"), 0o600))
	ok, err = s.Exists(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Exists(ctx, dir)
	require.ErrorIs(t, err, common.ErrLocalIO, "a directory is not an artifact")
}

func TestCopy_ReplacesDestination(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	dir := t.TempDir()

	src := filepath.Join(dir, "a")
	dst := filepath.Join(dir, "a_copy")
	require.NoError(t, os.WriteFile(src, []byte("fresh"), 0o600))
	require.NoError(t, os.WriteFile(dst, []byte("stale and longer"), 0o600))

	require.NoError(t, s.Copy(ctx, src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))
}

func TestCopy_MissingSourceIsNoopWithWarning(t *testing.T) {
	s, buf := newStore(t)
	dir := t.TempDir()

	err := s.Copy(context.Background(), filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "dst"))
	assert.True(t, os.IsNotExist(statErr), "destination must not be created")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestCopy_UnwritableDestination(t *testing.T) {
	s, _ := newStore(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o600))

	err := s.Copy(context.Background(), src, filepath.Join(dir, "missing-dir", "dst"))
	require.ErrorIs(t, err, common.ErrLocalIO)
}

func TestRemove(t *testing.T) {
	s, buf := newStore(t)
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "tmp")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))

	require.NoError(t, s.Remove(ctx, p))
	_, err := os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	// second removal is tolerated
	require.NoError(t, s.Remove(ctx, p))
	assert.Contains(t, buf.String(), "remove skipped")
}

func TestReadWriteFile(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "blob")

	require.NoError(t, s.WriteFile(ctx, p, []byte("one")))
	got, err := s.ReadFile(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	_, err = s.ReadFile(ctx, p+".missing")
	require.ErrorIs(t, err, common.ErrLocalIO)
}

func TestWriteFileAtomic_CreatesParentsAndLeavesNoTemp(t *testing.T) {
	s, _ := newStore(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "deeper", "warinpocket.sqlite")

	require.NoError(t, s.WriteFileAtomic(context.Background(), p, []byte("pulled")))

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "pulled", string(got))

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."), "temp file left behind: %s", e.Name())
	}

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(p)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}
}

func TestWriteFileAtomic_Overwrites(t *testing.T) {
	s, _ := newStore(t)
	p := filepath.Join(t.TempDir(), "a")
	require.NoError(t, os.WriteFile(p, []byte("old content"), 0o600))

	require.NoError(t, s.WriteFileAtomic(context.Background(), p, []byte("new")))

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "preupload")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o660))

	err := EnsureDir(p)
	require.ErrorIs(t, err, common.ErrLocalIO)
}
