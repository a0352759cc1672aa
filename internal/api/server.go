// Package api exposes the booking service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"parksmart/internal/auth"
	"parksmart/internal/models"
	"parksmart/internal/service"
)

// BookingService is the application surface the HTTP layer drives.
type BookingService interface {
	CreateBooking(ctx context.Context, uid string, in service.CreateBookingInput) (*service.CreateBookingResult, error)
	BookedSlots(ctx context.Context, date, location string) ([]int, error)
	Revoke(ctx context.Context, bookingID int64) (*service.Settlement, error)
	CreateMonthlyBooking(ctx context.Context, uid string, in service.CreateMonthlyInput) (*service.CreateMonthlyResult, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ListMonthlyBookings(ctx context.Context) ([]models.MonthlyBooking, error)
	HourlyTicketPDF(ctx context.Context, id int64) (string, error)
	MonthlyTicketPDF(ctx context.Context, id int64) (string, error)
}

// Config carries the HTTP-layer settings.
type Config struct {
	Port          int
	PublicBaseURL string
	CORSOrigins   []string
}

// HTTPServer serves the booking API.
type HTTPServer struct {
	cfg    Config
	svc    BookingService
	authn  auth.Authenticator
	log    zerolog.Logger
	server *http.Server
}

// NewHTTPServer wires routes and middleware. Admin listing of monthly passes
// and the slot/ticket lookups are deliberately unauthenticated, matching the
// public kiosk screens that consume them.
func NewHTTPServer(cfg Config, svc BookingService, authn auth.Authenticator, log zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		cfg:   cfg,
		svc:   svc,
		authn: authn,
		log:   log.With().Str("component", "http").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/confirm-booking", s.requireAuth(s.handleConfirmBooking))
	mux.HandleFunc("/api/booked-slots", s.handleBookedSlots)
	mux.HandleFunc("/api/ticket-pdf/", s.handleTicketPDF)
	mux.HandleFunc("/api/monthly-ticket-pdf/", s.handleMonthlyTicketPDF)
	mux.HandleFunc("/api/confirm-monthly-booking", s.requireAuth(s.handleConfirmMonthlyBooking))
	mux.HandleFunc("/api/admin/bookings", s.requireAuth(s.handleAdminBookings))
	mux.HandleFunc("/api/admin/bookings/export", s.requireAuth(s.handleExportBookings))
	mux.HandleFunc("/api/admin/monthly-bookings", s.handleAdminMonthlyBookings)
	mux.HandleFunc("/api/admin/revoke-booking", s.requireAuth(s.handleRevokeBooking))

	handler := s.requestID(s.cors(mux))

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the middleware-wrapped mux for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *HTTPServer) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service failures onto the API contract. Internal
// detail stays in the log; clients get a generic message.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case service.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, service.ErrSlotTaken):
		writeError(w, http.StatusConflict, "Slot already booked for this date and location")
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
