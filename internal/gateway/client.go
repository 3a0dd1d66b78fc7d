package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ebadmin/internal/metrics"
	"ebadmin/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Client is the HTTP gateway to the remote booking backend. The base URL is
// fixed at construction and includes the API version prefix.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// New constructs a gateway client. A zero timeout falls back to 10s.
func New(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// UseRedisCache enables read-through caching for lookup endpoints
// (services, timeslots). Cache failures are invisible to callers.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

func (c *Client) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if c.readCache(ctx, "services", &services) {
		return services, nil
	}
	if err := c.doGet(ctx, "/admin/services", &services); err != nil {
		return nil, err
	}
	c.writeCache(ctx, "services", services)
	return services, nil
}

func (c *Client) ListBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.doGet(ctx, "/admin/appointments", &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	var created models.Booking
	if err := c.doWrite(ctx, http.MethodPost, "/admin/appointments", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, bookingID int64, status models.Status) error {
	endpoint := fmt.Sprintf("/admin/appointments/%d/status", bookingID)
	body := map[string]models.Status{"status": status}
	return c.doWrite(ctx, http.MethodPatch, endpoint, body, nil)
}

func (c *Client) ListTimeSlots(ctx context.Context, date string) ([]models.TimeSlot, error) {
	endpoint := "/admin/timeslots/" + url.PathEscape(date)
	cacheKey := "timeslots:" + date
	var slots []models.TimeSlot
	if c.readCache(ctx, cacheKey, &slots) {
		return slots, nil
	}
	if err := c.doGet(ctx, endpoint, &slots); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, slots)
	return slots, nil
}

func (c *Client) DashboardSummary(ctx context.Context) (*models.Summary, error) {
	var summary models.Summary
	if err := c.doGet(ctx, "/admin/dashboard/summary", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) RecentBookings(ctx context.Context) ([]models.RecentBooking, error) {
	var recent []models.RecentBooking
	if err := c.doGet(ctx, "/admin/dashboard/recent-bookings", &recent); err != nil {
		return nil, err
	}
	return recent, nil
}

func (c *Client) ListDocuments(ctx context.Context, search string) ([]models.Document, error) {
	endpoint := "/knowledge/documents?search=" + url.QueryEscape(search)
	var docs []models.Document
	if err := c.doGet(ctx, endpoint, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UploadDocument posts one file as multipart form data (fields: file, title)
// and returns the stored filename reported by the backend.
func (c *Client) UploadDocument(ctx context.Context, title, fileName string, file io.Reader) (string, error) {
	const endpoint = "/knowledge/documents/upload"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", &PersistError{Endpoint: endpoint, Err: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", &PersistError{Endpoint: endpoint, Err: err}
	}
	if err := writer.WriteField("title", title); err != nil {
		return "", &PersistError{Endpoint: endpoint, Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &PersistError{Endpoint: endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return "", &PersistError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncGateway(metricEndpoint(endpoint), "error")
		return "", &PersistError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.IncGateway(metricEndpoint(endpoint), "error")
		return "", &PersistError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: readErrorMessage(resp)}
	}
	metrics.IncGateway(metricEndpoint(endpoint), "ok")

	var result struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &PersistError{Endpoint: endpoint, Err: err}
	}
	return result.Filename, nil
}

func (c *Client) DeleteDocument(ctx context.Context, documentID int64) error {
	endpoint := fmt.Sprintf("/knowledge/documents/%d", documentID)
	return c.doWrite(ctx, http.MethodDelete, endpoint, nil, nil)
}

// Health probes the backend liveness endpoint. Any non-2xx answer counts as
// down.
func (c *Client) Health(ctx context.Context) error {
	return c.doGet(ctx, "/health", nil)
}

func (c *Client) doGet(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return &FetchError{Endpoint: endpoint, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncGateway(metricEndpoint(endpoint), "error")
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.IncGateway(metricEndpoint(endpoint), "error")
		return &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: readErrorMessage(resp)}
	}
	metrics.IncGateway(metricEndpoint(endpoint), "ok")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Endpoint: endpoint, Err: err}
	}
	return nil
}

func (c *Client) doWrite(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &PersistError{Endpoint: endpoint, Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return &PersistError{Endpoint: endpoint, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncGateway(metricEndpoint(endpoint), "error")
		return &PersistError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.IncGateway(metricEndpoint(endpoint), "error")
		return &PersistError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: readErrorMessage(resp)}
	}
	metrics.IncGateway(metricEndpoint(endpoint), "ok")

	if out == nil {
		return nil
	}
	// Some write endpoints answer 2xx with an empty body.
	data, err := io.ReadAll(resp.Body)
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("ignoring undecodable write response body")
	}
	return nil
}

// readErrorMessage best-effort extracts a human-readable message from an
// error response. The backend uses {"detail": ...}; {"error": ...} is
// accepted for compatibility.
func readErrorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return resp.Status
	}

	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return resp.Status
}

func (c *Client) readCache(ctx context.Context, key string, out interface{}) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, cacheKey(key)).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val interface{}) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKey(key), data, c.cacheTTL).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func cacheKey(key string) string { return "ebadmin:gw:" + key }

// metricEndpoint collapses ids and dates in a path so metric labels stay
// low-cardinality.
func metricEndpoint(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	parts := strings.Split(endpoint, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
			continue
		}
		if _, err := time.Parse(models.SlotDateFormat, p); err == nil {
			parts[i] = ":date"
		}
	}
	return strings.Join(parts, "/")
}
