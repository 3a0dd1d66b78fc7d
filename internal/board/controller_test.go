package board

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"ebadmin/internal/gateway"
	"ebadmin/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway is a scriptable in-memory backend. Every call is counted and
// UpdateBookingStatus can be made to fail or block.
type fakeGateway struct {
	mu sync.Mutex

	services []models.Service
	bookings []models.Booking

	listServicesCalls int
	listBookingsCalls int
	updateCalls       []statusCall
	updateErr         error
	updateGate        chan struct{} // when set, UpdateBookingStatus blocks until closed
}

type statusCall struct {
	bookingID int64
	status    models.Status
}

func (f *fakeGateway) ListServices(ctx context.Context) ([]models.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listServicesCalls++
	return append([]models.Service(nil), f.services...), nil
}

func (f *fakeGateway) ListBookings(ctx context.Context) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listBookingsCalls++
	return append([]models.Booking(nil), f.bookings...), nil
}

func (f *fakeGateway) UpdateBookingStatus(ctx context.Context, bookingID int64, status models.Status) error {
	f.mu.Lock()
	gate := f.updateGate
	f.updateCalls = append(f.updateCalls, statusCall{bookingID: bookingID, status: status})
	err := f.updateErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}

	// Mirror the change so a later resync returns the persisted state.
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bookings {
		if f.bookings[i].ID == bookingID {
			f.bookings[i].Status = status
		}
	}
	return nil
}

func (f *fakeGateway) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := models.Booking{
		ID:            int64(len(f.bookings) + 1),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Status:        models.StatusScheduled,
	}
	f.bookings = append(f.bookings, created)
	return &created, nil
}

func (f *fakeGateway) ListTimeSlots(ctx context.Context, date string) ([]models.TimeSlot, error) {
	return nil, nil
}
func (f *fakeGateway) DashboardSummary(ctx context.Context) (*models.Summary, error) {
	return &models.Summary{}, nil
}
func (f *fakeGateway) RecentBookings(ctx context.Context) ([]models.RecentBooking, error) {
	return nil, nil
}
func (f *fakeGateway) ListDocuments(ctx context.Context, search string) ([]models.Document, error) {
	return nil, nil
}
func (f *fakeGateway) UploadDocument(ctx context.Context, title, fileName string, file io.Reader) (string, error) {
	return fileName, nil
}
func (f *fakeGateway) DeleteDocument(ctx context.Context, documentID int64) error { return nil }
func (f *fakeGateway) Health(ctx context.Context) error                           { return nil }

func (f *fakeGateway) updates() []statusCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]statusCall(nil), f.updateCalls...)
}

func testController(gw *fakeGateway) *Controller {
	logger := zerolog.Nop()
	return NewController(gw, nil, &logger)
}

func threeBookings() []models.Booking {
	return []models.Booking{
		{ID: 1, CustomerName: "Alice", Status: models.StatusScheduled},
		{ID: 2, CustomerName: "Bob", Status: models.StatusCheckedIn},
		{ID: 3, CustomerName: "Carl", Status: models.StatusServing},
	}
}

func TestLoadReplacesState(t *testing.T) {
	gw := &fakeGateway{
		services: []models.Service{{ID: 1, Name: "Haircut"}},
		bookings: threeBookings(),
	}
	c := testController(gw)

	require.NoError(t, c.Load(context.Background()))

	assert.Len(t, c.Snapshot(), 3)
	assert.Len(t, c.Services(), 1)
	assert.False(t, c.Loading())
	assert.NoError(t, c.Err())
}

func TestStatusChangeIsOptimistic(t *testing.T) {
	gw := &fakeGateway{bookings: threeBookings()}
	gw.updateGate = make(chan struct{})
	c := testController(gw)
	require.NoError(t, c.Load(context.Background()))

	c.RequestStatusChange(context.Background(), 1, models.StatusCheckedIn)

	// The PATCH is still blocked but the local list already moved.
	snap := c.Snapshot()
	assert.Equal(t, models.StatusCheckedIn, snap[0].Status)

	close(gw.updateGate)
	c.Wait()

	calls := gw.updates()
	require.Len(t, calls, 1)
	assert.Equal(t, statusCall{bookingID: 1, status: models.StatusCheckedIn}, calls[0])
}

func TestSameStatusIsNoOp(t *testing.T) {
	gw := &fakeGateway{bookings: threeBookings()}
	c := testController(gw)
	require.NoError(t, c.Load(context.Background()))

	c.RequestStatusChange(context.Background(), 2, models.StatusCheckedIn)
	c.Wait()

	assert.Empty(t, gw.updates(), "same-status request must not reach the backend")
}

func TestUnknownBookingIsNoOp(t *testing.T) {
	gw := &fakeGateway{bookings: threeBookings()}
	c := testController(gw)
	require.NoError(t, c.Load(context.Background()))

	before := c.Snapshot()
	c.RequestStatusChange(context.Background(), 999, models.StatusCompleted)
	c.Wait()

	assert.Empty(t, gw.updates())
	assert.Equal(t, before, c.Snapshot())
}

func TestInvalidStatusIsRejected(t *testing.T) {
	gw := &fakeGateway{bookings: threeBookings()}
	c := testController(gw)
	require.NoError(t, c.Load(context.Background()))

	c.RequestStatusChange(context.Background(), 1, models.Status("teleported"))
	c.Wait()

	assert.Empty(t, gw.updates())
	assert.Equal(t, models.StatusScheduled, c.Snapshot()[0].Status)
}

func TestFailedPersistenceResyncs(t *testing.T) {
	gw := &fakeGateway{bookings: threeBookings()}
	gw.updateErr = &gateway.PersistError{Endpoint: "/admin/appointments/1/status", StatusCode: 500}
	c := testController(gw)
	require.NoError(t, c.Load(context.Background()))

	c.RequestStatusChange(context.Background(), 1, models.StatusCompleted)
	c.Wait()

	// The backend never saved the change, so the resync restores the
	// original status.
	snap := c.Snapshot()
	assert.Equal(t, models.StatusScheduled, snap[0].Status)

	gw.mu.Lock()
	bookingFetches := gw.listBookingsCalls
	gw.mu.Unlock()
	assert.Equal(t, 2, bookingFetches, "initial load plus one resync")
}

func TestCreateBookingReloads(t *testing.T) {
	gw := &fakeGateway{bookings: threeBookings()}
	c := testController(gw)
	require.NoError(t, c.Load(context.Background()))

	err := c.CreateBooking(context.Background(), models.CreateBookingRequest{
		CustomerName:  "Dora",
		CustomerPhone: "+111",
		ServiceID:     1,
		TimeSlotID:    5,
	})
	require.NoError(t, err)

	snap := c.Snapshot()
	require.Len(t, snap, 4)
	assert.Equal(t, "Dora", snap[3].CustomerName)
}

func TestPersistenceSurvivesRequestCancellation(t *testing.T) {
	gw := &fakeGateway{bookings: threeBookings()}
	gw.updateGate = make(chan struct{})
	c := testController(gw)
	require.NoError(t, c.Load(context.Background()))

	reqCtx, cancel := context.WithCancel(context.Background())
	c.RequestStatusChange(reqCtx, 3, models.StatusCompleted)
	cancel() // the page request is gone before the PATCH resolves

	close(gw.updateGate)
	c.Wait()

	require.Len(t, gw.updates(), 1)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.Snapshot()[2].Status == models.StatusCompleted {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("status change was lost after request cancellation")
}
