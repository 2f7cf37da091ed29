package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "002_resources.sql", "001_init.sql", "README.md")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001", migrations[0].Version)
	assert.Equal(t, "001_init.sql", migrations[0].Name)
	assert.Equal(t, filepath.Join(dir, "002_resources.sql"), migrations[1].Path)
}

func TestListMigrationsDuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "001_init.sql", "001_other.sql")

	_, err := ListMigrations(dir)
	assert.ErrorContains(t, err, "duplicate migration version 001")
}

func TestListMigrationsMissingDir(t *testing.T) {
	_, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRepositoryMigrationsParse(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "001", migrations[0].Version)
}
