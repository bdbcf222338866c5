package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/slotdraw/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_MigrationsTempDir(t *testing.T) {
	dir, err := MigrationsTempDir()
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	require.NoError(t, err)
	require.Len(t, files, 4)
	require.FileExists(t, filepath.Join(dir, "000001_create_drawings.up.sql"))
}

func Test_Migrate_Sqlite(t *testing.T) {
	ctx := testutil.NewMockContext()

	// The tables already exist, migrating again keeps them.
	require.NoError(t, Migrate(ctx))
	testutil.CreateFixtureDb(ctx)
}
