// Package export renders admin booking reports as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"parksmart/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// BookingsWorkbook writes all hourly and monthly bookings into a two-sheet
// workbook: one sheet per booking kind, header row bold.
func BookingsWorkbook(w io.Writer, hourly []models.Booking, monthly []models.MonthlyBooking) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeHourlySheet(f, hourly); err != nil {
		return err
	}
	if err := writeMonthlySheet(f, monthly); err != nil {
		return err
	}
	return f.Write(w)
}

func writeHourlySheet(f *excelize.File, bookings []models.Booking) error {
	const sheet = "Hourly Bookings"
	f.SetSheetName("Sheet1", sheet)

	header := []string{
		"Ticket ID", "Firebase UID", "Slot No", "Vehicle No", "Location",
		"Booking Date", "Entry Time", "Exit Time", "Total Hours", "Amount", "Status",
	}
	if err := writeHeader(f, sheet, header); err != nil {
		return err
	}

	for i, b := range bookings {
		row := []any{
			b.ID, b.FirebaseUID, b.SlotNo, b.VehicleNo, b.Location,
			b.BookingDate, b.EntryTime.Format(timeLayout),
			formatNullableTime(b.ExitTime), formatNullableInt(b.TotalHours),
			formatNullableInt(b.ParkingAmount), b.Status,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeMonthlySheet(f *excelize.File, bookings []models.MonthlyBooking) error {
	const sheet = "Monthly Passes"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	header := []string{
		"Pass ID", "Customer Name", "Email", "Phone No", "Vehicle No", "Location",
		"Package Months", "Amount", "Payment Status", "Start Date", "End Date",
	}
	if err := writeHeader(f, sheet, header); err != nil {
		return err
	}

	for i, m := range bookings {
		status := m.PaymentStatus
		if status == "" {
			status = models.PaymentPaid
		}
		row := []any{
			m.ID, m.CustomerName, m.Email, m.PhoneNo, m.VehicleNo, m.Location,
			m.PackageMonths, m.Amount, status,
			m.StartDate.Format("2006-01-02"), m.EndDate.Format("2006-01-02"),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	if err := writeRow(f, sheet, 1, toAny(columns)); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(sheet, startCell, endCell, style)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func formatNullableTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

func formatNullableInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
