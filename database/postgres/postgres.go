package postgres

import (
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Driver returns DB_DRIVER, defaulting to postgres.
func Driver() string {
	if driver := os.Getenv("DB_DRIVER"); driver == DriverSQLite {
		return DriverSQLite
	}
	return DriverPostgres
}

// FormatDSN builds the connection string for Driver. DB_DSN wins when set.
func FormatDSN() string {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return dsn
	}

	if Driver() == DriverSQLite {
		name := os.Getenv("DB_NAME")
		if name == "" {
			name = "assistant.db"
		}
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", name)
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		sslMode,
	)
}

func New() (*sqlx.DB, error) {
	return Open(Driver(), FormatDSN())
}

func Open(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if os.Getenv("DB_MIGRATE") != "false" {
		if err := Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates the tables the assistant owns. Property records belong to
// the listings side and are only read.
func Migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS knowledge_documents (
		id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT NOT NULL,
		position INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (property_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS assistant_queries (
		id TEXT PRIMARY KEY,
		channel TEXT NOT NULL,
		property_id TEXT NOT NULL,
		utterance TEXT NOT NULL,
		intent TEXT NOT NULL,
		documents_found INTEGER NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		escalate BOOLEAN NOT NULL,
		success BOOLEAN NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assistant_queries_created_at ON assistant_queries (created_at)`,
}
