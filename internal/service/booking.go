package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parksmart/internal/database"
	"parksmart/internal/metrics"
	"parksmart/internal/models"
	"parksmart/internal/pricing"
)

const dateLayout = "2006-01-02"

// CreateBookingInput carries the client-supplied hourly booking fields.
type CreateBookingInput struct {
	Slot      int
	Vehicle   string
	Location  string
	Latitude  float64
	Longitude float64
	Date      string // YYYY-MM-DD
}

func (in *CreateBookingInput) validate() error {
	if in.Slot < 1 {
		return validationf("slot must be a positive integer")
	}
	if in.Vehicle == "" {
		return validationf("vehicle is required")
	}
	if in.Location == "" {
		return validationf("location is required")
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return err
	}
	if in.Date == "" {
		return validationf("date is required")
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return validationf("invalid date format; expected YYYY-MM-DD")
	}
	return nil
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return validationf("latitude out of range")
	}
	if lon < -180 || lon > 180 {
		return validationf("longitude out of range")
	}
	return nil
}

// CreateBookingResult is the confirmation for a new hourly booking. It never
// claims the confirmation email has been delivered.
type CreateBookingResult struct {
	TicketID     int64
	DownloadPath string
}

// CreateBooking validates input, inserts the booking with entry time = now,
// and detaches ticket generation + email. The booking is durable once this
// returns; side-effect failures are logged, never surfaced.
func (s *Service) CreateBooking(ctx context.Context, uid string, in CreateBookingInput) (*CreateBookingResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	b := &models.Booking{
		FirebaseUID: uid,
		SlotNo:      in.Slot,
		VehicleNo:   in.Vehicle,
		Location:    in.Location,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		BookingDate: in.Date,
		CreatedAt:   now,
		EntryTime:   now,
		Status:      models.StatusActive,
	}

	if err := s.store.CreateBooking(ctx, b); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	metrics.IncBookingCreated("hourly")
	s.slots.Invalidate(ctx, b.BookingDate, b.Location)

	ticketID := b.ID
	s.dispatch(func(ctx context.Context) {
		s.issueHourlyTicket(ctx, ticketID)
	})

	s.log.Info().
		Int64("ticket_id", ticketID).
		Int("slot", b.SlotNo).
		Str("location", b.Location).
		Str("date", b.BookingDate).
		Msg("booking created")

	return &CreateBookingResult{
		TicketID:     ticketID,
		DownloadPath: fmt.Sprintf("/api/ticket-pdf/%d", ticketID),
	}, nil
}

// BookedSlots returns the slot numbers currently occupied for the given date
// and location. Missing parameters fail before any store access.
func (s *Service) BookedSlots(ctx context.Context, date, location string) ([]int, error) {
	if date == "" || location == "" {
		return nil, validationf("Date and location required")
	}

	if slots, ok := s.slots.Get(ctx, date, location); ok {
		return slots, nil
	}

	slots, err := s.store.BookedSlots(ctx, date, location)
	if err != nil {
		return nil, fmt.Errorf("booked slots: %w", err)
	}
	s.slots.Set(ctx, date, location, slots)
	return slots, nil
}

// Settlement is the outcome of revoking an active booking.
type Settlement struct {
	BookingID  int64
	EntryTime  time.Time
	ExitTime   time.Time
	TotalHours int
	Amount     int
}

// Revoke settles an active booking: exit = now, hours rounded up with a
// one-hour minimum, amount = hours x rate. A closed or unknown booking is
// ErrNotFound either way; the conditional update makes double billing
// impossible even when two admins race.
func (s *Service) Revoke(ctx context.Context, bookingID int64) (*Settlement, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if !b.IsOpen() {
		return nil, ErrNotFound
	}

	exit := time.Now()
	quote := pricing.Settle(b.EntryTime, exit)

	if err := s.store.SettleBooking(ctx, bookingID, exit, quote.Hours, quote.Amount); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("settle booking: %w", err)
	}

	metrics.IncBookingRevoked()
	s.slots.Invalidate(ctx, b.BookingDate, b.Location)

	s.log.Info().
		Int64("booking_id", bookingID).
		Int("total_hours", quote.Hours).
		Int("amount", quote.Amount).
		Msg("booking revoked")

	return &Settlement{
		BookingID:  bookingID,
		EntryTime:  b.EntryTime,
		ExitTime:   exit,
		TotalHours: quote.Hours,
		Amount:     quote.Amount,
	}, nil
}

// ListBookings returns all hourly bookings for the admin view, newest first.
func (s *Service) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return s.store.ListBookings(ctx)
}

// HourlyTicketPDF regenerates the ticket artifacts for id and returns the
// PDF path. The stored file is overwritten on every call.
func (s *Service) HourlyTicketPDF(ctx context.Context, id int64) (string, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load booking: %w", err)
	}

	path, err := s.tickets.RenderHourly(b)
	if err != nil {
		return "", fmt.Errorf("render ticket %d: %w", id, err)
	}
	metrics.IncTicketIssued("hourly")
	return path, nil
}
