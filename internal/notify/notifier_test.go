package notify

import (
	"context"
	"errors"
	"io"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"rentdesk/internal/config"
	"rentdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newRecordingEmailSender(sent *[]recordedMail, fail error) *EmailSender {
	logger := zerolog.New(io.Discard)
	sender := NewEmailSender(config.EmailConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "rentals@example.com",
	}, &logger)
	sender.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if fail != nil {
			return fail
		}
		*sent = append(*sent, recordedMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return sender
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func guestBooking() *models.Booking {
	return &models.Booking{
		ID:      10,
		Channel: models.ChannelGuest,
		Guest: &models.GuestInfo{
			Name:  "Alex Doe",
			Email: "alex@example.com",
			Phone: "+155501",
		},
		VehicleID:        1,
		VehicleName:      "Toyota Corolla",
		StartDate:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		TotalPrice:       300,
		Status:           models.StatusConfirmed,
		ConfirmationCode: "GB1748736000000-A1B2C3D4",
	}
}

func userBooking() *models.Booking {
	b := guestBooking()
	b.Channel = models.ChannelUser
	b.Guest = nil
	b.UserID = 42
	b.ConfirmationCode = "UB1748736000000-A1B2C3D4"
	return b
}

func TestNotifierGuestBooking(t *testing.T) {
	var sent []recordedMail
	bot := &fakeBot{}
	logger := zerolog.New(io.Discard)
	n := NewNotifier(
		newRecordingEmailSender(&sent, nil),
		NewTelegramNotifier(bot, -100, &logger),
		&logger,
	)

	err := n.NotifyBookingConfirmed(context.Background(), guestBooking())
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, "smtp.example.com:587", sent[0].addr)
	assert.Equal(t, []string{"alex@example.com"}, sent[0].to)
	assert.Contains(t, sent[0].msg, "Subject: Booking Confirmed - Toyota Corolla")
	assert.Contains(t, sent[0].msg, "Dear Alex Doe")
	assert.Contains(t, sent[0].msg, "GB1748736000000-A1B2C3D4")
	assert.Contains(t, sent[0].msg, "Pick-up:")
	assert.Contains(t, sent[0].msg, "2025-06-01")

	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(-100), bot.sent[0].ChatID)
	assert.Contains(t, bot.sent[0].Text, "Booking confirmed")
	assert.Contains(t, bot.sent[0].Text, "Phone: +155501")
}

func TestNotifierUserBookingSkipsEmail(t *testing.T) {
	var sent []recordedMail
	bot := &fakeBot{}
	logger := zerolog.New(io.Discard)
	n := NewNotifier(
		newRecordingEmailSender(&sent, nil),
		NewTelegramNotifier(bot, -100, &logger),
		&logger,
	)

	err := n.NotifyBookingConfirmed(context.Background(), userBooking())
	require.NoError(t, err)

	assert.Empty(t, sent)
	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0].Text, "User ID: 42")
}

func TestNotifierEmailFailureStillAlertsStaff(t *testing.T) {
	bot := &fakeBot{}
	logger := zerolog.New(io.Discard)
	var sent []recordedMail
	n := NewNotifier(
		newRecordingEmailSender(&sent, errors.New("smtp down")),
		NewTelegramNotifier(bot, -100, &logger),
		&logger,
	)

	err := n.NotifyBookingConfirmed(context.Background(), guestBooking())
	assert.Error(t, err)
	assert.Len(t, bot.sent, 1, "telegram must still be attempted")
}

func TestNotifierCancellation(t *testing.T) {
	var sent []recordedMail
	bot := &fakeBot{}
	logger := zerolog.New(io.Discard)
	n := NewNotifier(
		newRecordingEmailSender(&sent, nil),
		NewTelegramNotifier(bot, -100, &logger),
		&logger,
	)

	booking := guestBooking()
	booking.Status = models.StatusCancelled

	err := n.NotifyBookingCancelled(context.Background(), booking)
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].msg, "Subject: Booking Cancelled - Toyota Corolla")
	assert.Contains(t, sent[0].msg, "has been cancelled")
	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0].Text, "Booking cancelled")
}

func TestNotifierNilChannels(t *testing.T) {
	logger := zerolog.New(io.Discard)
	n := NewNotifier(nil, nil, &logger)

	// With every channel disabled delivery is a no-op, not an error.
	assert.NoError(t, n.NotifyBookingConfirmed(context.Background(), guestBooking()))
}

func TestEmailSenderMissingAddress(t *testing.T) {
	var sent []recordedMail
	sender := newRecordingEmailSender(&sent, nil)

	booking := guestBooking()
	booking.Guest.Email = ""

	err := sender.SendBookingConfirmed(context.Background(), booking)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "email is missing"))
	assert.Empty(t, sent)
}
