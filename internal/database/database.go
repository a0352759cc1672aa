package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a row does not exist or is no longer open.
var ErrNotFound = errors.New("not found")

// ErrSlotTaken is returned when an insert hits the open-slot unique index.
var ErrSlotTaken = errors.New("slot already booked")

// DB wraps sql.DB for the booking store.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Authenticated identities, cached lazily on first monthly booking.
		`CREATE TABLE IF NOT EXISTS users (
            firebase_uid TEXT PRIMARY KEY,
            email TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		// Hourly bookings
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            firebase_uid TEXT NOT NULL,
            slot_no INTEGER NOT NULL,
            vehicle_no TEXT NOT NULL,
            location TEXT NOT NULL,
            latitude REAL NOT NULL,
            longitude REAL NOT NULL,
            booking_date TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            entry_time DATETIME NOT NULL,
            exit_time DATETIME,
            total_hours INTEGER,
            parking_amount INTEGER,
            status TEXT NOT NULL DEFAULT 'active'
        )`,

		// Monthly passes
		`CREATE TABLE IF NOT EXISTS monthly_bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            firebase_uid TEXT NOT NULL,
            customer_name TEXT NOT NULL,
            email TEXT NOT NULL,
            phone_no TEXT NOT NULL,
            vehicle_no TEXT NOT NULL,
            location TEXT NOT NULL,
            latitude REAL NOT NULL,
            longitude REAL NOT NULL,
            package_months INTEGER NOT NULL,
            amount REAL NOT NULL,
            payment_status TEXT NOT NULL DEFAULT 'paid',
            start_date DATETIME NOT NULL,
            end_date DATETIME NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY (firebase_uid) REFERENCES users(firebase_uid)
        )`,

		// One open booking per (date, location, slot). The partial index is
		// what enforces the mutual-exclusion invariant under concurrency.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_open_slot
            ON bookings(booking_date, location, slot_no)
            WHERE exit_time IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_date_location ON bookings(booking_date, location)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_monthly_created ON monthly_bookings(created_at)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
