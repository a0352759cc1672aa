package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"parksmart/internal/metrics"
	"parksmart/internal/notify"
)

// issueHourlyTicket renders the ticket and emails it to the booking owner.
// Runs detached from the request: every failure is logged and swallowed,
// because the booking itself already succeeded durably.
func (s *Service) issueHourlyTicket(ctx context.Context, ticketID int64) {
	log := s.log.With().Int64("ticket_id", ticketID).Logger()

	b, err := s.store.GetBooking(ctx, ticketID)
	if err != nil {
		log.Error().Err(err).Msg("ticket job: load booking failed")
		metrics.IncTicketFailure("load")
		return
	}

	pdfPath, err := s.tickets.RenderHourly(b)
	if err != nil {
		log.Error().Err(err).Msg("ticket job: render failed")
		metrics.IncTicketFailure("render")
		return
	}
	metrics.IncTicketIssued("hourly")

	email, err := s.authn.EmailForUID(ctx, b.FirebaseUID)
	if err != nil {
		log.Error().Err(err).Msg("ticket job: email lookup failed")
		metrics.IncTicketFailure("email_lookup")
		return
	}

	body := fmt.Sprintf(
		"Your parking booking is confirmed.<br><br><b>Ticket ID:</b> %d<br><b>Slot:</b> %d<br><b>Location:</b> %s",
		b.ID, b.SlotNo, b.Location,
	)
	s.emailTicket(ctx, log, email, "Parking Booking Confirmation", body, pdfPath)
}

// issueMonthlyTicket renders the monthly pass and emails it to the owner.
func (s *Service) issueMonthlyTicket(ctx context.Context, monthlyID int64) {
	log := s.log.With().Int64("monthly_id", monthlyID).Logger()

	m, err := s.store.GetMonthlyBooking(ctx, monthlyID)
	if err != nil {
		log.Error().Err(err).Msg("ticket job: load monthly booking failed")
		metrics.IncTicketFailure("load")
		return
	}

	pdfPath, err := s.tickets.RenderMonthly(m)
	if err != nil {
		log.Error().Err(err).Msg("ticket job: render failed")
		metrics.IncTicketFailure("render")
		return
	}
	metrics.IncTicketIssued("monthly")

	body := fmt.Sprintf(
		"Your monthly parking pass is confirmed.<br><br><b>Ticket ID:</b> %d<br><b>Location:</b> %s<br><b>Package:</b> %d Months<br><b>Amount Paid:</b> %.2f<br><br>Your Monthly Pass PDF is attached.",
		m.ID, m.Location, m.PackageMonths, m.Amount,
	)
	// The pass row carries the email resolved at creation; no second lookup.
	s.emailTicket(ctx, log, m.Email, "Monthly Parking Pass Confirmation", body, pdfPath)
}

func (s *Service) emailTicket(ctx context.Context, log zerolog.Logger, email, subject, body, pdfPath string) {
	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		log.Error().Err(err).Msg("ticket job: read attachment failed")
		metrics.IncTicketFailure("attachment")
		return
	}

	err = s.notifier.Send(ctx, notify.Message{
		To:       email,
		Subject:  subject,
		HTMLBody: body,
		Attachments: []notify.Attachment{
			{Name: filepath.Base(pdfPath), Content: pdfBytes},
		},
	})
	if err != nil {
		log.Error().Err(err).Str("to", email).Msg("ticket job: email send failed")
		metrics.IncTicketFailure("send")
		return
	}

	metrics.IncEmailSent()
	log.Info().Str("to", email).Msg("ticket emailed")
}
