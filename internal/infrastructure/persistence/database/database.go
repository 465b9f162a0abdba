// Package database opens and configures the page store's SQL connection.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/pkg/config"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

const (
	DriverSQLite = "sqlite3"
	DriverLibSQL = "libsql"
)

// DB represents a wrapper around the standard SQL database connection.
type DB struct {
	*sql.DB
	Driver string
}

// Options selects the driver and pool settings.
type Options struct {
	Driver          string
	Path            string // sqlite3 file path or DSN
	URL             string // libsql database URL
	AuthToken       string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OptionsFromConfig builds Options from pkg/config.
func OptionsFromConfig() Options {
	return Options{
		Driver:          config.DBDriver,
		Path:            config.DBPath,
		URL:             config.TursoDatabaseURL,
		AuthToken:       config.TursoAuthToken,
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute,
	}
}

// DataSourceName returns the DSN handed to sql.Open.
func (o Options) DataSourceName() (string, error) {
	switch o.Driver {
	case DriverSQLite, "":
		if o.Path == "" {
			return "", fmt.Errorf("sqlite3 driver requires a database path")
		}
		return o.Path, nil
	case DriverLibSQL:
		if o.URL == "" {
			return "", fmt.Errorf("libsql driver requires TURSO_DATABASE_URL")
		}
		if o.AuthToken == "" {
			return o.URL, nil
		}
		return fmt.Sprintf("%s?authToken=%s", o.URL, o.AuthToken), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", o.Driver)
	}
}

// NewConnectionWithLogger establishes a new database connection for the specified driver with logging.
func NewConnectionWithLogger(opts Options, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	logger.Database().Debug("Creating new database connection", "driverName", driver)

	dsn, err := opts.DataSourceName()
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite && !isMemory(dsn) {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		logger.Database().Error("Failed to open database connection", "error", err.Error(), "driverName", driver)
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		logger.Database().Error("Database ping failed", "error", err.Error(), "driverName", driver)
		return nil, err
	}

	duration := time.Since(start)
	logger.Database().Info("Database connection established", "driverName", driver, "duration", duration)
	CheckAndLogSlowQuery(logger, "DATABASE_CONNECTION", duration)

	return &DB{DB: db, Driver: driver}, nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || len(dsn) >= 5 && dsn[:5] == "file:"
}
