package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/ds124wfegd/parking-system/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	// Read migration files and execute them
	// This is a simplified version - you might want to use a proper migration tool
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(80) UNIQUE NOT NULL,
			email VARCHAR(120) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_booking_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS parking_lots (
			id SERIAL PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			price_per_hour NUMERIC(10,2) NOT NULL CHECK (price_per_hour >= 0),
			address TEXT NOT NULL,
			pin_code VARCHAR(10) NOT NULL,
			total_spots INTEGER NOT NULL CHECK (total_spots >= 0),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS parking_spots (
			id SERIAL PRIMARY KEY,
			lot_id INTEGER NOT NULL REFERENCES parking_lots(id) ON DELETE CASCADE,
			spot_number INTEGER NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'available',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (lot_id, spot_number)
		)`,

		`CREATE TABLE IF NOT EXISTS reservations (
			id SERIAL PRIMARY KEY,
			spot_id INTEGER NOT NULL REFERENCES parking_spots(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id),
			reserved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			parking_at TIMESTAMP,
			leaving_at TIMESTAMP,
			status VARCHAR(20) NOT NULL DEFAULT 'reserved',
			cost NUMERIC(10,2),
			remarks TEXT
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_spots_lot_id ON parking_spots(lot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_spots_lot_status ON parking_spots(lot_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_spot_id ON reservations(spot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_user_status ON reservations(user_id, status)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %v", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
