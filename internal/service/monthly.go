package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parksmart/internal/database"
	"parksmart/internal/metrics"
	"parksmart/internal/models"
)

// CreateMonthlyInput carries the client-supplied monthly pass fields.
// Amount is trusted from the caller; this is not a payment system.
type CreateMonthlyInput struct {
	CustomerName  string
	VehicleNo     string
	PhoneNo       string
	Location      string
	PackageMonths int
	Amount        float64
	Latitude      float64
	Longitude     float64
	PaymentStatus string // paid | pending; empty defaults to paid
}

func (in *CreateMonthlyInput) validate() error {
	required := []struct {
		name, value string
	}{
		{"customer_name", in.CustomerName},
		{"vehicle_no", in.VehicleNo},
		{"phone_no", in.PhoneNo},
		{"location", in.Location},
	}
	for _, f := range required {
		if f.value == "" {
			return validationf("%s is required", f.name)
		}
	}
	if in.PackageMonths < 1 {
		return validationf("package_months must be a positive integer")
	}
	if in.Amount <= 0 {
		return validationf("amount is required")
	}
	if err := validateCoordinates(in.Latitude, in.Longitude); err != nil {
		return err
	}
	switch in.PaymentStatus {
	case "", models.PaymentPaid, models.PaymentPending:
	default:
		return validationf("payment_status must be paid or pending")
	}
	return nil
}

// CreateMonthlyResult confirms a new monthly pass.
type CreateMonthlyResult struct {
	MonthlyID int64
	Amount    float64
}

// CreateMonthlyBooking resolves the caller's email, lazily creates the users
// row the monthly table's foreign key needs, inserts the pass with
// end = start + 30 x months days, then detaches pass generation + email.
func (s *Service) CreateMonthlyBooking(ctx context.Context, uid string, in CreateMonthlyInput) (*CreateMonthlyResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	email, err := s.authn.EmailForUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("resolve email: %w", err)
	}
	if err := s.store.EnsureUser(ctx, uid, email); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	paymentStatus := in.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentPaid
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	m := &models.MonthlyBooking{
		FirebaseUID:   uid,
		CustomerName:  in.CustomerName,
		Email:         email,
		PhoneNo:       in.PhoneNo,
		VehicleNo:     in.VehicleNo,
		Location:      in.Location,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		PackageMonths: in.PackageMonths,
		Amount:        in.Amount,
		PaymentStatus: paymentStatus,
		StartDate:     start,
		EndDate:       models.PeriodEnd(start, in.PackageMonths),
		CreatedAt:     now,
	}

	if err := s.store.CreateMonthlyBooking(ctx, m); err != nil {
		return nil, fmt.Errorf("create monthly booking: %w", err)
	}

	metrics.IncBookingCreated("monthly")

	monthlyID := m.ID
	s.dispatch(func(ctx context.Context) {
		s.issueMonthlyTicket(ctx, monthlyID)
	})

	s.log.Info().
		Int64("monthly_id", monthlyID).
		Str("location", m.Location).
		Int("months", m.PackageMonths).
		Msg("monthly booking created")

	return &CreateMonthlyResult{MonthlyID: monthlyID, Amount: m.Amount}, nil
}

// ListMonthlyBookings returns all monthly passes, newest first.
func (s *Service) ListMonthlyBookings(ctx context.Context) ([]models.MonthlyBooking, error) {
	return s.store.ListMonthlyBookings(ctx)
}

// MonthlyTicketPDF regenerates the monthly pass artifacts for id and returns
// the PDF path.
func (s *Service) MonthlyTicketPDF(ctx context.Context, id int64) (string, error) {
	m, err := s.store.GetMonthlyBooking(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load monthly booking: %w", err)
	}

	path, err := s.tickets.RenderMonthly(m)
	if err != nil {
		return "", fmt.Errorf("render monthly pass %d: %w", id, err)
	}
	metrics.IncTicketIssued("monthly")
	return path, nil
}
