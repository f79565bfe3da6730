// Package testutil provides shared test helpers for databases and config files.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/kioku-app/kioku/internal/config"
	"github.com/kioku-app/kioku/internal/database"
)

// NewSQLiteDB opens a throwaway sqlite database with the schema applied.
// The file lives in the test's temp dir and is cleaned up with it.
func NewSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, database.InitSchema(db))
	return db
}

// SetupTestConfig writes a minimal config file pointing at a sqlite database
// under tmpDir and returns its path.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	configContent := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
server:
  port: 8080
`, filepath.Join(tmpDir, "kioku.db"))

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}
