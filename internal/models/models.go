package models

import "time"

// Booking statuses.
const (
	StatusActive  = "active"
	StatusRevoked = "revoked"
)

// Monthly payment statuses.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
)

// Booking represents an hourly parking booking.
type Booking struct {
	ID            int64      `json:"id"`
	FirebaseUID   string     `json:"firebase_uid"`
	SlotNo        int        `json:"slot_no"`
	VehicleNo     string     `json:"vehicle_no"`
	Location      string     `json:"location"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	BookingDate   string     `json:"booking_date"` // YYYY-MM-DD
	CreatedAt     time.Time  `json:"created_at"`
	EntryTime     time.Time  `json:"entry_time"`
	ExitTime      *time.Time `json:"exit_time,omitempty"` // nil while the slot is occupied
	TotalHours    *int       `json:"total_hours,omitempty"`
	ParkingAmount *int       `json:"parking_amount,omitempty"`
	Status        string     `json:"status"`
}

// IsOpen reports whether the booking still occupies its slot.
func (b *Booking) IsOpen() bool {
	return b.ExitTime == nil
}

// MonthlyBooking represents a monthly parking pass.
type MonthlyBooking struct {
	ID            int64     `json:"id"`
	FirebaseUID   string    `json:"firebase_uid"`
	CustomerName  string    `json:"customer_name"`
	Email         string    `json:"email"`
	PhoneNo       string    `json:"phone_no"`
	VehicleNo     string    `json:"vehicle_no"`
	Location      string    `json:"location"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	PackageMonths int       `json:"package_months"`
	Amount        float64   `json:"amount"`
	PaymentStatus string    `json:"payment_status"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// PeriodEnd derives the pass end date from a start date and package length.
// A month is a fixed 30 days, not calendar-accurate.
func PeriodEnd(start time.Time, months int) time.Time {
	return start.AddDate(0, 0, 30*months)
}

// IsPaid reports whether the pass has been paid for.
func (m *MonthlyBooking) IsPaid() bool {
	return m.PaymentStatus != PaymentPending
}

// User is a denormalized cache of an authenticated identity, created lazily
// the first time a monthly booking references it.
type User struct {
	FirebaseUID string    `json:"firebase_uid"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}
