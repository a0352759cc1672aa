package api

import (
	"encoding/json"
	"net/http"

	"parksmart/internal/metrics"
	"parksmart/internal/service"
)

// ConfirmMonthlyRequest is the request body for POST /api/confirm-monthly-booking.
type ConfirmMonthlyRequest struct {
	CustomerName  string  `json:"customer_name"`
	VehicleNo     string  `json:"vehicle_no"`
	PhoneNo       string  `json:"phone_no"`
	Location      string  `json:"location"`
	PackageMonths int     `json:"package_months"`
	Amount        float64 `json:"amount"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	PaymentStatus string  `json:"payment_status,omitempty"` // paid | pending
}

// ConfirmMonthlyResponse confirms a new monthly pass.
type ConfirmMonthlyResponse struct {
	Success   bool    `json:"success"`
	MonthlyID int64   `json:"monthly_id"`
	Amount    float64 `json:"amount"`
}

// handleConfirmMonthlyBooking creates a monthly pass for the authenticated user.
// POST /api/confirm-monthly-booking
func (s *HTTPServer) handleConfirmMonthlyBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("confirm_monthly_booking")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ConfirmMonthlyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	identity := identityFrom(r.Context())
	res, err := s.svc.CreateMonthlyBooking(r.Context(), identity.UID, service.CreateMonthlyInput{
		CustomerName:  req.CustomerName,
		VehicleNo:     req.VehicleNo,
		PhoneNo:       req.PhoneNo,
		Location:      req.Location,
		PackageMonths: req.PackageMonths,
		Amount:        req.Amount,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "Booking not found")
		return
	}

	writeJSON(w, http.StatusCreated, ConfirmMonthlyResponse{
		Success:   true,
		MonthlyID: res.MonthlyID,
		Amount:    res.Amount,
	})
}
