package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"parksmart/internal/export"
	"parksmart/internal/metrics"
	"parksmart/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// BookingResponse is one hourly booking row in the admin listing.
type BookingResponse struct {
	ID            int64   `json:"id"`
	FirebaseUID   string  `json:"firebase_uid"`
	SlotNo        int     `json:"slot_no"`
	VehicleNo     string  `json:"vehicle_no"`
	Location      string  `json:"location"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	BookingDate   string  `json:"booking_date"`
	CreatedAt     string  `json:"created_at"`
	EntryTime     string  `json:"entry_time"`
	ExitTime      string  `json:"exit_time,omitempty"`
	TotalHours    *int    `json:"total_hours,omitempty"`
	ParkingAmount *int    `json:"parking_amount,omitempty"`
	Status        string  `json:"status"`
}

// MonthlyBookingResponse is one monthly pass row in the admin listing.
type MonthlyBookingResponse struct {
	ID            int64   `json:"id"`
	FirebaseUID   string  `json:"firebase_uid"`
	CustomerName  string  `json:"customer_name"`
	Email         string  `json:"email"`
	PhoneNo       string  `json:"phone_no"`
	VehicleNo     string  `json:"vehicle_no"`
	Location      string  `json:"location"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	PackageMonths int     `json:"package_months"`
	Amount        float64 `json:"amount"`
	PaymentStatus string  `json:"payment_status"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	CreatedAt     string  `json:"created_at"`
}

// RevokeBookingRequest is the request body for POST /api/admin/revoke-booking.
type RevokeBookingRequest struct {
	BookingID int64 `json:"booking_id"`
}

// RevokeBookingResponse is the settlement returned after revoking.
type RevokeBookingResponse struct {
	Success    bool   `json:"success"`
	BookingID  int64  `json:"booking_id"`
	EntryTime  string `json:"entry_time"`
	ExitTime   string `json:"exit_time"`
	TotalHours int    `json:"total_hours"`
	Amount     int    `json:"amount"`
}

// handleAdminBookings lists all hourly bookings, newest first.
// GET /api/admin/bookings
func (s *HTTPServer) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_bookings")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := s.svc.ListBookings(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "Booking not found")
		return
	}

	// Consumers expect a bare array of rows.
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAdminMonthlyBookings lists all monthly passes, newest first.
// GET /api/admin/monthly-bookings
func (s *HTTPServer) handleAdminMonthlyBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_monthly_bookings")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := s.svc.ListMonthlyBookings(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "Booking not found")
		return
	}

	out := make([]MonthlyBookingResponse, 0, len(bookings))
	for _, m := range bookings {
		status := m.PaymentStatus
		if status == "" {
			status = models.PaymentPaid
		}
		out = append(out, MonthlyBookingResponse{
			ID:            m.ID,
			FirebaseUID:   m.FirebaseUID,
			CustomerName:  m.CustomerName,
			Email:         m.Email,
			PhoneNo:       m.PhoneNo,
			VehicleNo:     m.VehicleNo,
			Location:      m.Location,
			Latitude:      m.Latitude,
			Longitude:     m.Longitude,
			PackageMonths: m.PackageMonths,
			Amount:        m.Amount,
			PaymentStatus: status,
			StartDate:     m.StartDate.Format("2006-01-02"),
			EndDate:       m.EndDate.Format("2006-01-02"),
			CreatedAt:     m.CreatedAt.Format(timeLayout),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRevokeBooking settles an active booking and returns the bill.
// POST /api/admin/revoke-booking
func (s *HTTPServer) handleRevokeBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("revoke_booking")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req RevokeBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.BookingID < 1 {
		writeError(w, http.StatusBadRequest, "Booking ID required")
		return
	}

	settlement, err := s.svc.Revoke(r.Context(), req.BookingID)
	if err != nil {
		s.writeServiceError(w, r, err, "Active booking not found")
		return
	}

	writeJSON(w, http.StatusOK, RevokeBookingResponse{
		Success:    true,
		BookingID:  settlement.BookingID,
		EntryTime:  settlement.EntryTime.Format(timeLayout),
		ExitTime:   settlement.ExitTime.Format(timeLayout),
		TotalHours: settlement.TotalHours,
		Amount:     settlement.Amount,
	})
}

// handleExportBookings streams every booking as an Excel workbook.
// GET /api/admin/bookings/export
func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_bookings")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	hourly, err := s.svc.ListBookings(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "Booking not found")
		return
	}
	monthly, err := s.svc.ListMonthlyBookings(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "Booking not found")
		return
	}

	filename := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.BookingsWorkbook(w, hourly, monthly); err != nil {
		s.log.Error().Err(err).Msg("workbook export failed")
	}
}

func toBookingResponse(b models.Booking) BookingResponse {
	out := BookingResponse{
		ID:            b.ID,
		FirebaseUID:   b.FirebaseUID,
		SlotNo:        b.SlotNo,
		VehicleNo:     b.VehicleNo,
		Location:      b.Location,
		Latitude:      b.Latitude,
		Longitude:     b.Longitude,
		BookingDate:   b.BookingDate,
		CreatedAt:     b.CreatedAt.Format(timeLayout),
		EntryTime:     b.EntryTime.Format(timeLayout),
		TotalHours:    b.TotalHours,
		ParkingAmount: b.ParkingAmount,
		Status:        b.Status,
	}
	if b.ExitTime != nil {
		out.ExitTime = b.ExitTime.Format(timeLayout)
	}
	return out
}
