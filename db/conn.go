// Package db opens the relational store and keeps its schema up to date
package db

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"bitwise74/formdrop-api/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNotMounted is returned by RequireMounted when the SQLite file is missing
var ErrNotMounted = errors.New("SQLite database file not mounted, please use docker volumes to mount it")

// RequireMounted fails when the SQLite database file doesn't exist yet.
// Inside a container the file has to come from a volume, otherwise it would
// silently vanish with the container. Other drivers always pass.
func RequireMounted(driver, dsn string) error {
	if driver != DriverSQLite {
		return nil
	}

	if _, err := os.Stat(sqlitePath(dsn)); errors.Is(err, fs.ErrNotExist) {
		return ErrNotMounted
	}

	return nil
}

// New opens the database for the given driver and migrates all tables.
// Unique violations are translated into gorm.ErrDuplicatedKey.
func New(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(withForeignKeys(dsn))
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database, %w", driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&model.User{}, &model.File{}, &model.Form{}, &model.Submission{})
	if err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return nil
}

// SQLite ignores foreign keys unless every connection turns them on, and the
// ownership/cascade rules depend on them
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}

	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}

	return dsn + "?_foreign_keys=on"
}

func sqlitePath(dsn string) string {
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}

	return p
}
