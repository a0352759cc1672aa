package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"parksmart/internal/metrics"
	"parksmart/internal/service"
)

// ConfirmBookingRequest is the request body for POST /api/confirm-booking.
type ConfirmBookingRequest struct {
	Slot      int     `json:"slot"`
	Vehicle   string  `json:"vehicle"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Date      string  `json:"date"` // Format: YYYY-MM-DD
}

// ConfirmBookingResponse confirms a new hourly booking. The download URL is
// valid immediately; the emailed copy follows asynchronously.
type ConfirmBookingResponse struct {
	Success     bool   `json:"success"`
	TicketID    int64  `json:"ticket_id"`
	DownloadURL string `json:"download_url"`
}

// handleConfirmBooking creates an hourly booking for the authenticated user.
// POST /api/confirm-booking
func (s *HTTPServer) handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("confirm_booking")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ConfirmBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	identity := identityFrom(r.Context())
	res, err := s.svc.CreateBooking(r.Context(), identity.UID, service.CreateBookingInput{
		Slot:      req.Slot,
		Vehicle:   req.Vehicle,
		Location:  req.Location,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Date:      req.Date,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "Booking not found")
		return
	}

	writeJSON(w, http.StatusCreated, ConfirmBookingResponse{
		Success:     true,
		TicketID:    res.TicketID,
		DownloadURL: s.cfg.PublicBaseURL + res.DownloadPath,
	})
}

// handleBookedSlots returns occupied slot numbers for a date and location.
// GET /api/booked-slots?date=YYYY-MM-DD&location=...
func (s *HTTPServer) handleBookedSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booked_slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := r.URL.Query().Get("date")
	location := r.URL.Query().Get("location")

	slots, err := s.svc.BookedSlots(r.Context(), date, location)
	if err != nil {
		s.writeServiceError(w, r, err, "Booking not found")
		return
	}
	if slots == nil {
		slots = []int{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

// handleTicketPDF regenerates and serves the hourly ticket PDF.
// GET /api/ticket-pdf/{id}
func (s *HTTPServer) handleTicketPDF(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("ticket_pdf")
	s.servePDF(w, r, "/api/ticket-pdf/", s.svc.HourlyTicketPDF)
}

// handleMonthlyTicketPDF regenerates and serves the monthly pass PDF.
// GET /api/monthly-ticket-pdf/{id}
func (s *HTTPServer) handleMonthlyTicketPDF(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("monthly_ticket_pdf")
	s.servePDF(w, r, "/api/monthly-ticket-pdf/", s.svc.MonthlyTicketPDF)
}

func (s *HTTPServer) servePDF(w http.ResponseWriter, r *http.Request, prefix string, lookup func(ctx context.Context, id int64) (string, error)) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, prefix)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	path, err := lookup(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "Ticket not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
