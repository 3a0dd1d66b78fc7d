package domain

import (
	"context"
	"io"

	"ebadmin/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Gateway is the boundary through which the dashboard talks to the remote
// booking backend. Every method maps to exactly one backend endpoint; any
// non-2xx read returns a *gateway.FetchError and any non-2xx write a
// *gateway.PersistError.
type Gateway interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID int64, status models.Status) error
	ListTimeSlots(ctx context.Context, date string) ([]models.TimeSlot, error)
	DashboardSummary(ctx context.Context) (*models.Summary, error)
	RecentBookings(ctx context.Context) ([]models.RecentBooking, error)
	ListDocuments(ctx context.Context, search string) ([]models.Document, error)
	UploadDocument(ctx context.Context, title, fileName string, file io.Reader) (string, error)
	DeleteDocument(ctx context.Context, documentID int64) error
	Health(ctx context.Context) error
}

// EventPublisher publishes in-process domain events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// TelegramSender is the slice of the Telegram bot API used by the staff
// notifier.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}
