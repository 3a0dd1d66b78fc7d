package models

import "time"

const (
	// TablePageSize is the fixed page size of the booking table view.
	TablePageSize = 10

	// MaxUploadBytes caps knowledge uploads at 10 MiB, checked locally
	// before any request is made.
	MaxUploadBytes = 10 << 20

	// SuccessNoticeTTL is how long an upload success message stays visible.
	SuccessNoticeTTL = 3 * time.Second

	// FailureNoticeTTL is how long an upload failure message stays visible.
	FailureNoticeTTL = 8 * time.Second

	// DefaultHealthInterval is the backend liveness probe period.
	DefaultHealthInterval = 30 * time.Second

	// SlotDateFormat is the wire format of timeslot dates.
	SlotDateFormat = "2006-01-02"
)

// AllowedUploadExtensions lists the file extensions accepted for knowledge
// uploads, lowercase with the leading dot.
var AllowedUploadExtensions = []string{".pdf", ".doc", ".docx", ".txt"}
