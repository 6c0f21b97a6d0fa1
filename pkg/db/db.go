package db

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // needed
	_ "github.com/lib/pq"                                // driver
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tablepoker-server/internal/config"
)

var (
	instance *sql.DB
	mu       sync.Mutex
)

// Instance returns the shared database handle
// The handle is opened with the configured DSN on first use. Instance panics if the database cannot be reached.
func Instance() *sql.DB {
	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		db, err := Open(config.Instance().PGDSN)
		if err != nil {
			panic(err)
		}

		instance = db
	}

	return instance
}

// Open opens and pings a Postgres database
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "could not open database")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "could not ping database")
	}

	return db, nil
}

// Migrate runs every pending migration found in migrationsPath
func Migrate(db *sql.DB, migrationsPath string) error {
	logrus.WithField("migrationsPath", migrationsPath).Info("running migrations")
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return errors.Wrap(err, "could not create migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsPath), "postgres", driver)
	if err != nil {
		return errors.Wrap(err, "could not load migrations")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "could not run migrations")
	}

	return nil
}

// Scanner is implemented by *sql.Row and *sql.Rows
type Scanner interface {
	Scan(...interface{}) error
}

// Rollback rolls back the transaction and logs any failure
func Rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		logrus.WithError(err).Error("could not rollback transaction")
	}
}
