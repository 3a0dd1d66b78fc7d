package board

import (
	"context"
	"sync"

	"ebadmin/internal/domain"
	"ebadmin/internal/events"
	"ebadmin/internal/metrics"
	"ebadmin/internal/models"

	"github.com/rs/zerolog"
)

// Controller owns the in-memory booking list for this process. Every view
// renders from its snapshot and every mutation goes through it; the list is
// never handed out by reference.
//
// Status changes are optimistic: the local record is updated before the
// backend confirms, and a failed persistence call triggers a full reload
// from the backend instead of a rollback to a remembered value. A reload
// always converges on backend truth; a remembered pre-image may not.
type Controller struct {
	gateway domain.Gateway
	bus     domain.EventPublisher
	logger  *zerolog.Logger

	mu       sync.Mutex
	bookings []models.Booking
	services []models.Service
	loading  bool
	lastErr  error

	inflight sync.WaitGroup
}

func NewController(gw domain.Gateway, bus domain.EventPublisher, logger *zerolog.Logger) *Controller {
	return &Controller{
		gateway: gw,
		bus:     bus,
		logger:  logger,
	}
}

// Load replaces local state with the backend's current services and
// bookings. Services are fetched first; if that fails nothing is touched.
// If the booking fetch fails the fresh services are kept (they were already
// authoritative) and the previous booking list survives. The loading flag
// is always cleared, error or not.
func (c *Controller) Load(ctx context.Context) error {
	c.setLoading(true)
	defer c.setLoading(false)

	services, err := c.gateway.ListServices(ctx)
	if err != nil {
		c.setErr(err)
		return err
	}

	c.mu.Lock()
	c.services = services
	c.mu.Unlock()

	bookings, err := c.gateway.ListBookings(ctx)
	if err != nil {
		c.setErr(err)
		return err
	}

	c.mu.Lock()
	c.bookings = bookings
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Info().Int("bookings", len(bookings)).Int("services", len(services)).Msg("board loaded")
	return nil
}

// RequestStatusChange moves a booking to a new status. The local record is
// updated immediately; persistence happens on a background goroutine so the
// caller never waits for the network. Unknown ids and same-status requests
// are no-ops and issue no network call.
//
// Two overlapping requests for the same booking are not serialized: the
// later optimistic write wins locally, and whichever persistence response
// lands last decides whether a resync happens.
func (c *Controller) RequestStatusChange(ctx context.Context, bookingID int64, newStatus models.Status) {
	if !newStatus.Valid() {
		c.logger.Warn().Int64("booking_id", bookingID).Str("status", string(newStatus)).Msg("rejected unknown status")
		return
	}

	c.mu.Lock()
	idx := c.indexLocked(bookingID)
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	prev := c.bookings[idx].Status
	if prev == newStatus {
		c.mu.Unlock()
		return
	}
	c.bookings[idx].Status = newStatus
	snapshot := c.bookings[idx]
	c.mu.Unlock()

	metrics.IncOptimisticTransition()

	// The page request that carried this gesture finishes before the PATCH
	// does; detach from its cancellation but keep its values.
	persistCtx := context.WithoutCancel(ctx)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.persistStatus(persistCtx, snapshot, prev, newStatus)
	}()
}

func (c *Controller) persistStatus(ctx context.Context, booking models.Booking, prev, next models.Status) {
	err := c.gateway.UpdateBookingStatus(ctx, booking.ID, next)
	if err == nil {
		c.publishBooking(events.EventBookingStatusChanged, booking, prev, next)
		return
	}

	c.logger.Error().Err(err).Int64("booking_id", booking.ID).
		Str("from", string(prev)).Str("to", string(next)).
		Msg("status persistence failed, resyncing board")
	metrics.IncResync()

	if c.bus != nil {
		_ = c.bus.PublishJSON(events.EventBoardResynced, events.ResyncEventPayload{
			BookingID: booking.ID,
			Reason:    err.Error(),
		})
	}

	if loadErr := c.Load(ctx); loadErr != nil {
		c.logger.Error().Err(loadErr).Msg("resync load failed")
	}
}

// CreateBooking posts a new booking and, on success, resyncs the whole
// board: the created record's id and embedded snapshots are backend-owned,
// so a local insert would be a guess.
func (c *Controller) CreateBooking(ctx context.Context, req models.CreateBookingRequest) error {
	created, err := c.gateway.CreateBooking(ctx, req)
	if err != nil {
		return err
	}

	if created != nil {
		c.publishBooking(events.EventBookingCreated, *created, "", created.Status)
	}

	if err := c.Load(ctx); err != nil {
		c.logger.Error().Err(err).Msg("post-create reload failed")
	}
	return nil
}

// Wait blocks until every in-flight persistence call has settled. Used on
// shutdown and in tests.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Snapshot returns a copy of the booking list for rendering.
func (c *Controller) Snapshot() []models.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Booking(nil), c.bookings...)
}

// Services returns a copy of the service list.
func (c *Controller) Services() []models.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Service(nil), c.services...)
}

// Loading reports whether a Load is in progress.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the error of the most recent failed load, if the state has
// not been successfully reloaded since.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) indexLocked(bookingID int64) int {
	for i := range c.bookings {
		if c.bookings[i].ID == bookingID {
			return i
		}
	}
	return -1
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

func (c *Controller) setErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func (c *Controller) publishBooking(eventType string, b models.Booking, from, to models.Status) {
	if c.bus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:    b.ID,
		CustomerName: b.CustomerName,
		ServiceName:  b.Service.Name,
		Date:         b.TimeSlot.Date,
		StartTime:    b.TimeSlot.StartTime,
		From:         from,
		To:           to,
	}

	if err := c.bus.PublishJSON(eventType, payload); err != nil {
		c.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", b.ID).Msg("publish event error")
	}
}
