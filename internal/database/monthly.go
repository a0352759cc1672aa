package database

import (
	"context"
	"database/sql"
	"fmt"

	"parksmart/internal/models"
)

// EnsureUser inserts the identity row if it does not exist yet. Monthly
// bookings carry a foreign key to users, so this must run before the first
// insert for a previously-unseen uid.
func (db *DB) EnsureUser(ctx context.Context, uid, email string) error {
	_, err := db.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (firebase_uid, email) VALUES (?, ?)",
		uid, email,
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// CreateMonthlyBooking inserts a monthly pass and fills in its assigned ID.
func (db *DB) CreateMonthlyBooking(ctx context.Context, m *models.MonthlyBooking) error {
	res, err := db.ExecContext(ctx, `
        INSERT INTO monthly_bookings
            (firebase_uid, customer_name, email, phone_no, vehicle_no, location,
             latitude, longitude, package_months, amount, payment_status,
             start_date, end_date, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.FirebaseUID, m.CustomerName, m.Email, m.PhoneNo, m.VehicleNo, m.Location,
		m.Latitude, m.Longitude, m.PackageMonths, m.Amount, m.PaymentStatus,
		m.StartDate, m.EndDate, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert monthly booking: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("monthly booking id: %w", err)
	}
	m.ID = id
	return nil
}

// GetMonthlyBooking returns a monthly pass by id, or ErrNotFound.
func (db *DB) GetMonthlyBooking(ctx context.Context, id int64) (*models.MonthlyBooking, error) {
	row := db.QueryRowContext(ctx, `
        SELECT id, firebase_uid, customer_name, email, phone_no, vehicle_no,
               location, latitude, longitude, package_months, amount,
               payment_status, start_date, end_date, created_at
        FROM monthly_bookings WHERE id = ?`, id)

	m, err := scanMonthly(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get monthly booking %d: %w", id, err)
	}
	return m, nil
}

// ListMonthlyBookings returns all monthly passes, newest first.
func (db *DB) ListMonthlyBookings(ctx context.Context) ([]models.MonthlyBooking, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT id, firebase_uid, customer_name, email, phone_no, vehicle_no,
               location, latitude, longitude, package_months, amount,
               payment_status, start_date, end_date, created_at
        FROM monthly_bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list monthly bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.MonthlyBooking
	for rows.Next() {
		m, err := scanMonthly(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *m)
	}
	return bookings, rows.Err()
}

func scanMonthly(row scanner) (*models.MonthlyBooking, error) {
	var m models.MonthlyBooking
	err := row.Scan(
		&m.ID, &m.FirebaseUID, &m.CustomerName, &m.Email, &m.PhoneNo, &m.VehicleNo,
		&m.Location, &m.Latitude, &m.Longitude, &m.PackageMonths, &m.Amount,
		&m.PaymentStatus, &m.StartDate, &m.EndDate, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
