package notify

import (
	"encoding/json"
	"fmt"

	"ebadmin/internal/domain"
	"ebadmin/internal/events"
	"ebadmin/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier pushes booking activity to a staff chat. It is an event
// consumer: wire it to the bus with Subscribe and it stays out of every
// other component's way.
type TelegramNotifier struct {
	sender domain.TelegramSender
	chatID int64
	logger *zerolog.Logger
}

// New dials the Telegram bot API. Token and chat id come from config; the
// caller skips construction entirely when they are unset.
func New(token string, staffChatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return NewWithSender(bot, staffChatID, logger), nil
}

// NewWithSender builds a notifier over any sender; tests use this.
func NewWithSender(sender domain.TelegramSender, staffChatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: staffChatID, logger: logger}
}

// Subscribe registers the notifier for the booking events staff care about:
// new bookings and cancellations.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.onBookingCreated)
	bus.Subscribe(events.EventBookingStatusChanged, n.onStatusChanged)
}

func (n *TelegramNotifier) onBookingCreated(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	text := fmt.Sprintf("New booking #%d: %s — %s, %s %s",
		payload.BookingID, payload.CustomerName, payload.ServiceName, payload.Date, payload.StartTime)
	return n.send(text)
}

func (n *TelegramNotifier) onStatusChanged(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	// Staff only want to hear about cancellations; column shuffling is
	// visible on the board already.
	if payload.To != models.StatusCancelled {
		return nil
	}

	text := fmt.Sprintf("Booking #%d cancelled: %s — %s, %s %s",
		payload.BookingID, payload.CustomerName, payload.ServiceName, payload.Date, payload.StartTime)
	return n.send(text)
}

func (n *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("telegram send failed")
		return err
	}
	return nil
}
