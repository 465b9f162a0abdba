package database

import (
	"path/filepath"
	"testing"

	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataSourceName(t *testing.T) {
	dsn, err := Options{Driver: DriverSQLite, Path: "db/pages.db"}.DataSourceName()
	require.NoError(t, err)
	assert.Equal(t, "db/pages.db", dsn)

	dsn, err = Options{Driver: DriverLibSQL, URL: "libsql://x.turso.io", AuthToken: "tok"}.DataSourceName()
	require.NoError(t, err)
	assert.Equal(t, "libsql://x.turso.io?authToken=tok", dsn)

	dsn, err = Options{Driver: DriverLibSQL, URL: "http://127.0.0.1:8080"}.DataSourceName()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", dsn)

	_, err = Options{Driver: DriverLibSQL}.DataSourceName()
	assert.Error(t, err)
	_, err = Options{Driver: DriverSQLite}.DataSourceName()
	assert.Error(t, err)
	_, err = Options{Driver: "postgres", Path: "x"}.DataSourceName()
	assert.Error(t, err)
}

func TestNewConnectionCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pages.db")
	db, err := NewConnectionWithLogger(Options{Path: path}, logging.NewDiscardLogger())
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, DriverSQLite, db.Driver)
	assert.FileExists(t, path)
}
