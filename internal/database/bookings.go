package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"parksmart/internal/models"
)

// CreateBooking inserts an hourly booking and fills in its assigned ID.
// A second open booking for the same (date, location, slot) returns
// ErrSlotTaken.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	res, err := db.ExecContext(ctx, `
        INSERT INTO bookings
            (firebase_uid, slot_no, vehicle_no, location,
             latitude, longitude, booking_date, created_at, entry_time, status)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.FirebaseUID, b.SlotNo, b.VehicleNo, b.Location,
		b.Latitude, b.Longitude, b.BookingDate, b.CreatedAt, b.EntryTime, b.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("booking id: %w", err)
	}
	b.ID = id
	return nil
}

// GetBooking returns a booking by id, or ErrNotFound.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, `
        SELECT id, firebase_uid, slot_no, vehicle_no, location,
               latitude, longitude, booking_date, created_at, entry_time,
               exit_time, total_hours, parking_amount, status
        FROM bookings WHERE id = ?`, id)

	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return b, nil
}

// BookedSlots returns slot numbers with an open booking for (date, location).
func (db *DB) BookedSlots(ctx context.Context, date, location string) ([]int, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT slot_no FROM bookings
        WHERE booking_date = ? AND location = ? AND exit_time IS NULL`,
		date, location,
	)
	if err != nil {
		return nil, fmt.Errorf("query booked slots: %w", err)
	}
	defer rows.Close()

	slots := make([]int, 0)
	for rows.Next() {
		var slot int
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// SettleBooking closes an open booking with the computed settlement.
// The update is conditional on exit_time still being NULL, so only one
// caller can ever settle a booking; the loser gets ErrNotFound.
func (db *DB) SettleBooking(ctx context.Context, id int64, exit time.Time, hours, amount int) error {
	res, err := db.ExecContext(ctx, `
        UPDATE bookings
        SET exit_time = ?, total_hours = ?, parking_amount = ?, status = ?
        WHERE id = ? AND exit_time IS NULL`,
		exit, hours, amount, models.StatusRevoked, id,
	)
	if err != nil {
		return fmt.Errorf("settle booking %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBookings returns all hourly bookings, newest first.
func (db *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT id, firebase_uid, slot_no, vehicle_no, location,
               latitude, longitude, booking_date, created_at, entry_time,
               exit_time, total_hours, parking_amount, status
        FROM bookings ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*models.Booking, error) {
	var b models.Booking
	var exit sql.NullTime
	var hours, amount sql.NullInt64
	err := row.Scan(
		&b.ID, &b.FirebaseUID, &b.SlotNo, &b.VehicleNo, &b.Location,
		&b.Latitude, &b.Longitude, &b.BookingDate, &b.CreatedAt, &b.EntryTime,
		&exit, &hours, &amount, &b.Status,
	)
	if err != nil {
		return nil, err
	}
	if exit.Valid {
		b.ExitTime = &exit.Time
	}
	if hours.Valid {
		h := int(hours.Int64)
		b.TotalHours = &h
	}
	if amount.Valid {
		a := int(amount.Int64)
		b.ParkingAmount = &a
	}
	return &b, nil
}
