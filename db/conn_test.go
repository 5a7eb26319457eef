package db

import (
	"os"
	"path/filepath"
	"testing"

	"bitwise74/formdrop-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "a.db?_foreign_keys=on", withForeignKeys("a.db"))
	assert.Equal(t, "file:a.db?cache=shared&_foreign_keys=on", withForeignKeys("file:a.db?cache=shared"))
	assert.Equal(t, "a.db?_fk=1", withForeignKeys("a.db?_fk=1"))
}

func TestSqlitePath(t *testing.T) {
	assert.Equal(t, "a.db", sqlitePath("file:a.db?cache=shared"))
	assert.Equal(t, "/data/a.db", sqlitePath("/data/a.db"))
}

func TestNew_FreshTempPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.db")

	// Opening creates the file, wherever the tests run
	db, err := New(DriverSQLite, path)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRequireMounted(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.db")
	assert.ErrorIs(t, RequireMounted(DriverSQLite, missing), ErrNotMounted)
	assert.ErrorIs(t, RequireMounted(DriverSQLite, "file:"+missing+"?cache=shared"), ErrNotMounted)

	present := filepath.Join(dir, "present.db")
	require.NoError(t, os.WriteFile(present, nil, 0o644))
	assert.NoError(t, RequireMounted(DriverSQLite, present))

	assert.NoError(t, RequireMounted(DriverPostgres, "host=localhost"))
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New("mysql", "")
	assert.Error(t, err)
}

func TestNew_SQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := New(DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	// A submission for a form that doesn't exist must be rejected
	err = db.Create(&model.Submission{FormID: 42}).Error
	assert.Error(t, err)
}
