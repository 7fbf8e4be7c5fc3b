package notify

import (
	"context"
	"fmt"

	"rentdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// messageSender is the slice of tgbotapi.BotAPI we need; tests use a fake.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts booking alerts to the staff chat.
type TelegramNotifier struct {
	bot    messageSender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(bot messageSender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}
}

func (t *TelegramNotifier) SendBookingConfirmed(ctx context.Context, booking *models.Booking) error {
	return t.send(ctx, booking, adminAlertText(booking, "confirmed"))
}

func (t *TelegramNotifier) SendBookingCancelled(ctx context.Context, booking *models.Booking) error {
	return t.send(ctx, booking, adminAlertText(booking, "cancelled"))
}

func (t *TelegramNotifier) send(ctx context.Context, booking *models.Booking, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}

	t.logger.Debug().Int64("booking_id", booking.ID).Int64("chat_id", t.chatID).Msg("telegram alert sent")
	return nil
}
