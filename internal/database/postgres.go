package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/RichMarin19/fast-life-sub000/internal/config"
)

// PostgresDB wraps sql.DB for PostgreSQL operations
type PostgresDB struct {
	*sql.DB
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg config.DatabaseConfig) (*PostgresDB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{DB: db}, nil
}

// InitSchema initializes the settings schema
func (db *PostgresDB) InitSchema() error {
	schema := `
	-- Per-activity notification rules
	CREATE TABLE IF NOT EXISTS guidance_rules (
		activity VARCHAR(50) PRIMARY KEY,
		enabled BOOLEAN NOT NULL DEFAULT true,
		allow_quiet_hours BOOLEAN NOT NULL DEFAULT false,
		throttle_minutes INTEGER NOT NULL DEFAULT 0,
		max_per_day INTEGER NOT NULL DEFAULT 1,
		trigger_kind VARCHAR(30) NOT NULL,
		trigger_seconds INTEGER NOT NULL DEFAULT 0,
		trigger_offset_minutes INTEGER NOT NULL DEFAULT 0,
		trigger_hour INTEGER NOT NULL DEFAULT 0,
		trigger_minute INTEGER NOT NULL DEFAULT 0,
		trigger_every_minutes INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT NOW()
	);

	-- Singleton quiet-hours window
	CREATE TABLE IF NOT EXISTS quiet_hours (
		id INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		enabled BOOLEAN NOT NULL DEFAULT true,
		start_hour INTEGER NOT NULL DEFAULT 21,
		end_hour INTEGER NOT NULL DEFAULT 7,
		updated_at TIMESTAMP DEFAULT NOW()
	);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *PostgresDB) Close() error {
	return db.DB.Close()
}
