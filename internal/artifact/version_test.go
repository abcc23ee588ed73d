package artifact

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserVersionStore(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open(driverName, filepath.Join(t.TempDir(), "v.sqlite"))
	require.NoError(t, err)
	defer db.Close()

	s := userVersionStore{}

	latest, err := s.GetLatestVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), latest)

	_, err = s.GetMigration(ctx, db, 1)
	require.ErrorIs(t, err, database.ErrVersionNotFound)

	require.NoError(t, s.Insert(ctx, db, database.InsertRequest{Version: 2}))
	// lower versions never move the header back
	require.NoError(t, s.Insert(ctx, db, database.InsertRequest{Version: 1}))

	res, err := s.GetMigration(ctx, db, 1)
	require.NoError(t, err)
	assert.True(t, res.IsApplied)

	list, err := s.ListMigrations(ctx, db)
	require.NoError(t, err)
	var versions []int64
	for _, m := range list {
		versions = append(versions, m.Version)
	}
	assert.Equal(t, []int64{2, 1, 0}, versions)

	require.NoError(t, s.Delete(ctx, db, 2))
	latest, err = s.GetLatestVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest)
}
