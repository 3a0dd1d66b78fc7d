package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ebadmin/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestListBookings(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode([]models.Booking{
			{ID: 1, CustomerName: "Alice", Status: models.StatusScheduled},
			{ID: 2, CustomerName: "Bob", Status: models.StatusServing},
		})
	}))
	t.Cleanup(ts.Close)

	client := New(ts.URL, time.Second, testLogger())
	bookings, err := client.ListBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "/admin/appointments", gotPath)
	assert.Equal(t, "Alice", bookings[0].CustomerName)
}

func TestUpdateBookingStatus(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	client := New(ts.URL, time.Second, testLogger())
	err := client.UpdateBookingStatus(context.Background(), 42, models.StatusCheckedIn)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/admin/appointments/42/status", gotPath)
	assert.JSONEq(t, `{"status":"checked-in"}`, gotBody)
}

func TestFetchErrorCarriesDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "appointment not found"}`))
	}))
	t.Cleanup(ts.Close)

	client := New(ts.URL, time.Second, testLogger())
	_, err := client.ListBookings(context.Background())
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Equal(t, "appointment not found", fe.Message)
	assert.Equal(t, "/admin/appointments", fe.Endpoint)
}

func TestPersistErrorFallsBackToStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	t.Cleanup(ts.Close)

	client := New(ts.URL, time.Second, testLogger())
	err := client.UpdateBookingStatus(context.Background(), 1, models.StatusCompleted)

	var pe *PersistError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusConflict, pe.StatusCode)
	assert.Contains(t, pe.Error(), "409")
}

func TestUploadDocumentMultipart(t *testing.T) {
	var gotFileName, gotTitle, gotContent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/knowledge/documents/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		gotTitle = r.FormValue("title")
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFileName = header.Filename
		data, _ := io.ReadAll(file)
		gotContent = string(data)

		_ = json.NewEncoder(w).Encode(map[string]string{"filename": "stored_report.pdf"})
	}))
	t.Cleanup(ts.Close)

	client := New(ts.URL, time.Second, testLogger())
	stored, err := client.UploadDocument(context.Background(), "Q3 Report", "report.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "stored_report.pdf", stored)
	assert.Equal(t, "report.pdf", gotFileName)
	assert.Equal(t, "Q3 Report", gotTitle)
	assert.Equal(t, "pdf-bytes", gotContent)
}

func TestHealth(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(up.Close)

	client := New(up.URL, time.Second, testLogger())
	assert.NoError(t, client.Health(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)

	client = New(down.URL, time.Second, testLogger())
	assert.Error(t, client.Health(context.Background()))
}

func TestServicesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode([]models.Service{{ID: 1, Name: "Haircut"}})
	}))
	t.Cleanup(ts.Close)

	client := New(ts.URL, time.Second, testLogger())
	client.UseRedisCache(redisClient, time.Minute)

	ctx := context.Background()
	first, err := client.ListServices(ctx)
	require.NoError(t, err)
	second, err := client.ListServices(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, hits, "second read must come from cache")
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("ebadmin:gw:services"))
}

func TestTimeSlotsCacheKeyedByDate(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode([]models.TimeSlot{{ID: 1, Date: "2025-06-01", IsAvailable: true}})
	}))
	t.Cleanup(ts.Close)

	client := New(ts.URL, time.Second, testLogger())
	client.UseRedisCache(redisClient, time.Minute)

	ctx := context.Background()
	_, err := client.ListTimeSlots(ctx, "2025-06-01")
	require.NoError(t, err)
	_, err = client.ListTimeSlots(ctx, "2025-06-01")
	require.NoError(t, err)
	_, err = client.ListTimeSlots(ctx, "2025-06-02")
	require.NoError(t, err)

	assert.Equal(t, 2, hits, "one fetch per distinct date")
}

func TestMetricEndpoint(t *testing.T) {
	cases := map[string]string{
		"/admin/appointments":           "/admin/appointments",
		"/admin/appointments/42/status": "/admin/appointments/:id/status",
		"/admin/timeslots/2025-06-01":   "/admin/timeslots/:date",
		"/knowledge/documents?search=x": "/knowledge/documents",
		"/knowledge/documents/7":        "/knowledge/documents/:id",
	}
	for in, want := range cases {
		if got := metricEndpoint(in); got != want {
			t.Errorf("metricEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}
