package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"rentdesk/internal/config"
	"rentdesk/internal/models"

	"github.com/rs/zerolog"
)

// sendMailFunc matches smtp.SendMail; tests swap in a recorder.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender delivers plain-text booking mail over SMTP.
type EmailSender struct {
	cfg      config.EmailConfig
	sendMail sendMailFunc
	logger   *zerolog.Logger
}

func NewEmailSender(cfg config.EmailConfig, logger *zerolog.Logger) *EmailSender {
	return &EmailSender{
		cfg:      cfg,
		sendMail: smtp.SendMail,
		logger:   logger,
	}
}

func (e *EmailSender) SendBookingConfirmed(ctx context.Context, booking *models.Booking) error {
	subject := fmt.Sprintf("Booking Confirmed - %s", booking.VehicleName)
	return e.send(ctx, booking, subject, customerConfirmationBody(booking))
}

func (e *EmailSender) SendBookingCancelled(ctx context.Context, booking *models.Booking) error {
	subject := fmt.Sprintf("Booking Cancelled - %s", booking.VehicleName)
	return e.send(ctx, booking, subject, customerCancellationBody(booking))
}

func (e *EmailSender) send(ctx context.Context, booking *models.Booking, subject, body string) error {
	if booking.Guest == nil || booking.Guest.Email == "" {
		return errors.New("customer email is missing")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to := booking.Guest.Email
	msg := buildMessage(e.cfg.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	}

	if err := e.sendMail(addr, auth, e.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	e.logger.Info().
		Int64("booking_id", booking.ID).
		Str("to", to).
		Str("subject", subject).
		Msg("email sent")
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(sb.String())
}
