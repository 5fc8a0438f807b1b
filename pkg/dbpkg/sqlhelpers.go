package dbpkg

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// migration source
)

// Setup sets up connection with database.
func Setup(driver, source string) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies all up migrations found at sourceURL to the database.
//
// It opens a dedicated connection that is closed together with the migrate instance,
// and reports whether any migration was applied.
func Migrate(driver, source, sourceURL string) (bool, error) {
	db, err := Setup(driver, source)
	if err != nil {
		return false, fmt.Errorf("open migration connection: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return false, fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", dbDriver)
	if err != nil {
		_ = db.Close()
		return false, fmt.Errorf("create migrate instance: %w", err)
	}

	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("apply migrations: %w", err)
	}

	return true, nil
}
