package notify

import (
	"context"
	"errors"

	"rentdesk/internal/metrics"
	"rentdesk/internal/models"

	"github.com/rs/zerolog"
)

// Notifier fans a booking event out to its recipients: guest bookings get a
// customer email plus a staff alert, user-channel bookings get the staff
// alert only (the booking service knows the user by id, not by address).
// Either sender may be nil when its channel is disabled in config.
type Notifier struct {
	email    *EmailSender
	telegram *TelegramNotifier
	logger   *zerolog.Logger
}

func NewNotifier(email *EmailSender, telegram *TelegramNotifier, logger *zerolog.Logger) *Notifier {
	return &Notifier{email: email, telegram: telegram, logger: logger}
}

func (n *Notifier) NotifyBookingConfirmed(ctx context.Context, booking *models.Booking) error {
	return n.deliver(ctx, booking,
		func() error { return n.email.SendBookingConfirmed(ctx, booking) },
		func() error { return n.telegram.SendBookingConfirmed(ctx, booking) },
	)
}

func (n *Notifier) NotifyBookingCancelled(ctx context.Context, booking *models.Booking) error {
	return n.deliver(ctx, booking,
		func() error { return n.email.SendBookingCancelled(ctx, booking) },
		func() error { return n.telegram.SendBookingCancelled(ctx, booking) },
	)
}

// deliver attempts every applicable channel and joins the failures, so one
// broken channel does not starve the others of their attempt.
func (n *Notifier) deliver(ctx context.Context, booking *models.Booking, sendEmail, sendTelegram func() error) error {
	var errs []error

	if n.email != nil && booking.Channel == models.ChannelGuest {
		if err := sendEmail(); err != nil {
			n.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("email delivery error")
			metrics.IncNotify("email_error")
			errs = append(errs, err)
		} else {
			metrics.IncNotify("email_sent")
		}
	}

	if n.telegram != nil {
		if err := sendTelegram(); err != nil {
			n.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("telegram delivery error")
			metrics.IncNotify("telegram_error")
			errs = append(errs, err)
		} else {
			metrics.IncNotify("telegram_sent")
		}
	}

	return errors.Join(errs...)
}
