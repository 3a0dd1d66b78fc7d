package events

import (
	"encoding/json"
	"sync"
	"time"

	"ebadmin/internal/models"
)

const (
	EventBookingCreated       = "booking_created"
	EventBookingStatusChanged = "booking_status_changed"
	EventBoardResynced        = "board_resynced"
	EventDocumentUploaded     = "document_uploaded"
	EventDocumentDeleted      = "document_deleted"
)

// BookingEventPayload is the booking snapshot handed to event consumers.
type BookingEventPayload struct {
	BookingID    int64         `json:"booking_id"`
	CustomerName string        `json:"customer_name"`
	ServiceName  string        `json:"service_name"`
	Date         string        `json:"date,omitempty"`
	StartTime    string        `json:"start_time,omitempty"`
	From         models.Status `json:"from,omitempty"`
	To           models.Status `json:"to,omitempty"`
}

// ResyncEventPayload describes why the board discarded its optimistic state.
type ResyncEventPayload struct {
	BookingID int64  `json:"booking_id,omitempty"`
	Reason    string `json:"reason"`
}

// DocumentEventPayload identifies a knowledge document change.
type DocumentEventPayload struct {
	DocumentID int64  `json:"document_id,omitempty"`
	Title      string `json:"title,omitempty"`
	FileName   string `json:"file_name,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
