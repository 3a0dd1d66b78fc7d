package models

// Status is the lifecycle state of a booking. The backend owns the
// transition history; this UI only requests transitions between the five
// known values.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCheckedIn Status = "checked-in"
	StatusServing   Status = "serving"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every valid status in board-column order.
var Statuses = []Status{
	StatusScheduled,
	StatusCheckedIn,
	StatusServing,
	StatusCompleted,
	StatusCancelled,
}

// Valid reports whether s is one of the five enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCheckedIn, StatusServing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Title returns the column heading for a status.
func (s Status) Title() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusCheckedIn:
		return "Checked In"
	case StatusServing:
		return "Serving"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// ServiceSnapshot is the denormalized service copy embedded in a booking.
// It is a point-in-time snapshot, not a live reference to a Service.
type ServiceSnapshot struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

// TimeSlotSnapshot is the denormalized slot copy embedded in a booking.
type TimeSlotSnapshot struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Booking is one scheduled appointment as served by the backend.
// Timestamps and slot fields are kept as the backend's wire strings; this
// layer renders them, it never does date arithmetic on them.
type Booking struct {
	ID            int64            `json:"id"`
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	CustomerEmail string           `json:"customer_email,omitempty"`
	Service       ServiceSnapshot  `json:"service"`
	TimeSlot      TimeSlotSnapshot `json:"time_slot"`
	Status        Status           `json:"status"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
}

// CreateBookingRequest is the payload for POST /admin/appointments. The
// backend assigns the id and the embedded snapshots.
type CreateBookingRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email,omitempty"`
	ServiceID     int64  `json:"service_id"`
	TimeSlotID    int64  `json:"time_slot_id"`
	Notes         string `json:"notes,omitempty"`
}

// Service is a bookable service, fetched read-only.
type Service struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	IsActive        bool    `json:"is_active"`
}

// TimeSlot is a bookable slot for a given date. Only slots with
// IsAvailable set may be offered on the create-booking form.
type TimeSlot struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

// DocumentStatus is the backend-side processing state of a knowledge document.
type DocumentStatus string

const (
	DocumentProcessing DocumentStatus = "processing"
	DocumentReady      DocumentStatus = "ready"
	DocumentError      DocumentStatus = "error"
)

// Document is one knowledge-base entry.
type Document struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	FileName     string         `json:"file_name"`
	FileType     string         `json:"file_type"`
	FileSize     int64          `json:"file_size"`
	Tags         string         `json:"tags"`
	Status       DocumentStatus `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// Summary carries the dashboard KPI numbers. Field names follow the
// backend's camelCase contract.
type Summary struct {
	TotalBookings    int     `json:"totalBookings"`
	CompletionRate   float64 `json:"completionRate"`
	TodaysBookings   int     `json:"todaysBookings"`
	CancellationRate float64 `json:"cancellationRate"`
}

// RecentBooking is the partial booking shape returned by the
// recent-bookings dashboard endpoint.
type RecentBooking struct {
	ID           int64  `json:"id"`
	CustomerName string `json:"customer_name"`
	Service      struct {
		Name string `json:"name"`
	} `json:"service"`
	TimeSlot struct {
		StartTime string `json:"start_time"`
	} `json:"time_slot"`
	Status Status `json:"status"`
}
