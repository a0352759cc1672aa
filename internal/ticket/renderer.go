package ticket

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"

	"parksmart/internal/models"
)

const qrImageSize = 512 // px

// Renderer writes ticket PDFs and QR images under the artifacts directory.
// Artifacts are regenerated (overwritten) on every render; the booking row
// is the source of truth, the files are a cache.
type Renderer struct {
	dir string
	log zerolog.Logger
}

func NewRenderer(artifactsDir string, log zerolog.Logger) *Renderer {
	return &Renderer{dir: artifactsDir, log: log.With().Str("component", "ticket").Logger()}
}

// HourlyPDFPath returns where the hourly ticket PDF for id lives.
func (r *Renderer) HourlyPDFPath(id int64) string {
	return filepath.Join(r.dir, fmt.Sprintf("ticket_%d.pdf", id))
}

// MonthlyPDFPath returns where the monthly pass PDF for id lives.
func (r *Renderer) MonthlyPDFPath(id int64) string {
	return filepath.Join(r.dir, fmt.Sprintf("monthly_ticket_%d.pdf", id))
}

func (r *Renderer) hourlyQRPath(id int64) string {
	return filepath.Join(r.dir, fmt.Sprintf("qr_%d.png", id))
}

func (r *Renderer) monthlyQRPath(id int64) string {
	return filepath.Join(r.dir, fmt.Sprintf("monthly_qr_%d.png", id))
}

// RenderHourly regenerates the hourly ticket artifacts and returns the PDF path.
func (r *Renderer) RenderHourly(b *models.Booking) (string, error) {
	doc := BuildHourly(b)
	qrPNG, err := r.writeQR(doc.MapLink, r.hourlyQRPath(b.ID))
	if err != nil {
		return "", err
	}

	pdfPath := r.HourlyPDFPath(b.ID)
	if err := r.renderHourlyPDF(doc, qrPNG, pdfPath); err != nil {
		return "", err
	}

	r.log.Debug().Int64("ticket_id", b.ID).Str("path", pdfPath).Msg("hourly ticket rendered")
	return pdfPath, nil
}

// RenderMonthly regenerates the monthly pass artifacts and returns the PDF path.
func (r *Renderer) RenderMonthly(m *models.MonthlyBooking) (string, error) {
	doc := BuildMonthly(m)
	qrPNG, err := r.writeQR(doc.MapLink, r.monthlyQRPath(m.ID))
	if err != nil {
		return "", err
	}

	pdfPath := r.MonthlyPDFPath(m.ID)
	if err := r.renderMonthlyPDF(doc, qrPNG, pdfPath); err != nil {
		return "", err
	}

	r.log.Debug().Int64("monthly_id", m.ID).Str("path", pdfPath).Msg("monthly pass rendered")
	return pdfPath, nil
}

func (r *Renderer) writeQR(payload, path string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("artifacts dir: %w", err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return nil, fmt.Errorf("write qr: %w", err)
	}
	return png, nil
}

func (r *Renderer) renderHourlyPDF(doc *Document, qrPNG []byte, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(70, 25)
	pdf.CellFormat(70, 10, doc.Title, "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	y := 50.0
	for _, f := range doc.Fields {
		pdf.SetXY(28, y)
		pdf.CellFormat(0, 8, fmt.Sprintf("%s: %s", f.Label, f.Value), "", 0, "L", false, 0, "")
		y += 10
	}

	placeQR(pdf, qrPNG, fmt.Sprintf("qr-hourly-%d", doc.TicketID), 75, y+15, 55)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write hourly pdf: %w", err)
	}
	return nil
}

func (r *Renderer) renderMonthlyPDF(doc *Document, qrPNG []byte, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	// Header bar
	pdf.SetFillColor(15, 23, 42)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 18, doc.Title, "", 1, "C", true, 0, "")
	pdf.Ln(6)

	// Ticket id + payment status
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(93, 8, fmt.Sprintf("Ticket ID: #%d", doc.TicketID), "", 0, "L", false, 0, "")
	if doc.StatusPaid {
		pdf.SetTextColor(22, 163, 74)
	} else {
		pdf.SetTextColor(220, 38, 38)
	}
	pdf.CellFormat(93, 8, fmt.Sprintf("Status: %s", doc.StatusLabel), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	// Detail grid, two label/value pairs per row
	pdf.SetDrawColor(209, 213, 219)
	pdf.SetFillColor(245, 245, 245)
	for i := 0; i+1 < len(doc.Fields); i += 2 {
		left, right := doc.Fields[i], doc.Fields[i+1]
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 9, left.Label, "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(63, 9, left.Value, "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 9, right.Label, "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(63, 9, right.Value, "1", 1, "L", true, 0, "")
	}
	pdf.Ln(8)

	// QR section
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, "Scan to View Parking Location", "", 1, "C", false, 0, "")
	qrY := pdf.GetY() + 2
	placeQR(pdf, qrPNG, fmt.Sprintf("qr-monthly-%d", doc.TicketID), 73, qrY, 64)
	pdf.SetY(qrY + 68)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(37, 99, 235)
	pdf.CellFormat(0, 6, doc.MapLink, "", 1, "C", false, 0, doc.MapLink)
	pdf.Ln(8)

	// Footer
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, doc.Footer, "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write monthly pdf: %w", err)
	}
	return nil
}

func placeQR(pdf *fpdf.Fpdf, png []byte, name string, x, y, size float64) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, x, y, size, size, false, opts, 0, "")
}
