// Package integrationtest provides db helpers used in integration tests.
//
// Every helper skips the calling test when the configured database cannot be reached.
package integrationtest

import (
	"database/sql"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/rs/zerolog"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// Config loads the test configuration of a package two levels below the module root.
func Config(t *testing.T) configpkg.Config {
	t.Helper()

	config, err := configpkg.Load("../../configs")
	if err != nil {
		t.Fatalf(`configpkg.Load("../../configs") returned error: %v`, err)
	}

	config.MigrationURL = "file://../../db/migration"

	return config
}

// SetupServer returns test server that cleans up database after each integration test.
func SetupServer(t *testing.T) *httpserver.Server {
	t.Helper()

	config := Config(t)

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	db := SetupDB(t, config)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush truncates all application tables without dropping them.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables sql.NullString

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema = 'public'
	  AND table_type = 'BASE TABLE'
	  AND table_name <> 'schema_migrations';`

	if err := db.QueryRow(query).Scan(&tables); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if !tables.Valid {
		return
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables.String + ` RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

func open(t *testing.T, config configpkg.Config) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		t.Skipf("database is unavailable: %v", err)
	}

	migrateOnce.Do(func() {
		_, migrateErr = dbpkg.Migrate(config.DBDriver, config.DBSource, config.MigrationURL)
	})

	if migrateErr != nil {
		_ = db.Close()
		t.Fatalf("dbpkg.Migrate(%v) returned error: %v", config.MigrationURL, migrateErr)
	}

	return db
}

// SetupDB sets up a migrated database for testing and cleans it once the test is done.
func SetupDB(t *testing.T, config configpkg.Config) *sql.DB {
	t.Helper()

	db := open(t, config)

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// SetupTX sets up a database transaction to be used in tests.
//
// Once the test is done it will rollback the transaction.
func SetupTX(t *testing.T, config configpkg.Config) *sql.Tx {
	t.Helper()

	db := open(t, config)

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return tx
}
