// Package service implements the booking lifecycle: creation, slot queries,
// settlement, and the ticket-issuance side effects.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"parksmart/internal/auth"
	"parksmart/internal/cache"
	"parksmart/internal/models"
	"parksmart/internal/notify"
)

// Store is the durable booking store the service orchestrates.
type Store interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	BookedSlots(ctx context.Context, date, location string) ([]int, error)
	SettleBooking(ctx context.Context, id int64, exit time.Time, hours, amount int) error
	ListBookings(ctx context.Context) ([]models.Booking, error)
	EnsureUser(ctx context.Context, uid, email string) error
	CreateMonthlyBooking(ctx context.Context, m *models.MonthlyBooking) error
	GetMonthlyBooking(ctx context.Context, id int64) (*models.MonthlyBooking, error)
	ListMonthlyBookings(ctx context.Context) ([]models.MonthlyBooking, error)
}

// Renderer regenerates ticket artifacts and returns the PDF path.
type Renderer interface {
	RenderHourly(b *models.Booking) (string, error)
	RenderMonthly(m *models.MonthlyBooking) (string, error)
}

// Service orchestrates bookings. It holds no booking state of its own; every
// operation reads the store immediately before acting.
type Service struct {
	store    Store
	authn    auth.Authenticator
	tickets  Renderer
	notifier notify.Notifier
	slots    *cache.SlotCache
	log      zerolog.Logger

	jobTimeout time.Duration
	wg         sync.WaitGroup
}

func New(
	store Store,
	authn auth.Authenticator,
	tickets Renderer,
	notifier notify.Notifier,
	slots *cache.SlotCache,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:      store,
		authn:      authn,
		tickets:    tickets,
		notifier:   notifier,
		slots:      slots,
		log:        log.With().Str("component", "booking_service").Logger(),
		jobTimeout: 2 * time.Minute,
	}
}

// dispatch runs a side-effect job detached from the request that triggered
// it. The job gets its own deadline so it survives the response; its outcome
// is never reported to the caller.
func (s *Service) dispatch(job func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		job(ctx)
	}()
}

// Wait blocks until all in-flight ticket jobs finish. Called on shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}
