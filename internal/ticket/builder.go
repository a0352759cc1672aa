// Package ticket assembles and renders parking ticket artifacts: a PDF per
// booking plus a QR code image linking to the slot's map location.
package ticket

import (
	"fmt"
	"strconv"

	"parksmart/internal/models"
)

const mapsBaseURL = "https://www.google.com/maps"

// Kind names the two ticket layouts.
type Kind string

const (
	KindHourly  Kind = "hourly"
	KindMonthly Kind = "monthly"
)

// MapLink builds the QR payload: a maps URL with the literal coordinate pair.
func MapLink(lat, lon float64) string {
	return fmt.Sprintf("%s?q=%s,%s", mapsBaseURL, formatCoord(lat), formatCoord(lon))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Field is one labeled value on a rendered ticket.
type Field struct {
	Label string
	Value string
}

// Document is the render-ready description of a ticket. The builder decides
// which fields appear and how they derive from the row; layout belongs to
// the renderer.
type Document struct {
	Kind        Kind
	Title       string
	TicketID    int64
	Fields      []Field
	MapLink     string
	StatusLabel string // monthly only
	StatusPaid  bool   // monthly only; controls the status color
	Footer      string
}

// BuildHourly assembles the single-page hourly ticket.
func BuildHourly(b *models.Booking) *Document {
	link := MapLink(b.Latitude, b.Longitude)
	return &Document{
		Kind:     KindHourly,
		Title:    "Parking Ticket",
		TicketID: b.ID,
		MapLink:  link,
		Fields: []Field{
			{Label: "Ticket ID", Value: strconv.FormatInt(b.ID, 10)},
			{Label: "Slot No", Value: strconv.Itoa(b.SlotNo)},
			{Label: "Vehicle No", Value: b.VehicleNo},
			{Label: "Location", Value: b.Location},
			{Label: "Date", Value: b.BookingDate},
			{Label: "Map", Value: link},
		},
	}
}

// BuildMonthly assembles the single-page monthly pass with its header bar,
// detail grid, QR section and footer.
func BuildMonthly(m *models.MonthlyBooking) *Document {
	link := MapLink(m.Latitude, m.Longitude)
	status := "PAID"
	if !m.IsPaid() {
		status = "PENDING"
	}
	return &Document{
		Kind:        KindMonthly,
		Title:       "ParkSmart Monthly Pass",
		TicketID:    m.ID,
		MapLink:     link,
		StatusLabel: status,
		StatusPaid:  m.IsPaid(),
		Footer:      "Thank you for choosing ParkSmart • support@parksmart.com",
		Fields: []Field{
			{Label: "Customer", Value: m.CustomerName},
			{Label: "Vehicle", Value: m.VehicleNo},
			{Label: "Phone", Value: m.PhoneNo},
			{Label: "Location", Value: m.Location},
			{Label: "Duration", Value: fmt.Sprintf("%d Months", m.PackageMonths)},
			{Label: "Amount", Value: fmt.Sprintf("Rs. %.2f", m.Amount)},
			{Label: "Start", Value: m.StartDate.Format("2006-01-02")},
			{Label: "End", Value: m.EndDate.Format("2006-01-02")},
		},
	}
}
