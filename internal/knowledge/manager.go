package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ebadmin/internal/domain"
	"ebadmin/internal/events"
	"ebadmin/internal/gateway"
	"ebadmin/internal/metrics"
	"ebadmin/internal/models"

	"github.com/rs/zerolog"
)

// ValidationError is a client-side precondition failure: the request was
// rejected before any network call was made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Notice is a transient status message shown near the upload control.
// Success notices expire after 3s, failure notices after 8s.
type Notice struct {
	Message   string
	Failed    bool
	expiresAt time.Time
}

// Manager drives the knowledge-base flows: validate-then-upload, list with
// server-side search, and delete. It has none of the board's optimistic
// complexity; every operation is plain request/response.
type Manager struct {
	gateway  DocumentGateway
	bus      domain.EventPublisher
	logger   *zerolog.Logger
	maxBytes int64
	allowed  map[string]bool
	now      func() time.Time

	mu     sync.Mutex
	notice *Notice
}

// DocumentGateway is the slice of the backend gateway the manager needs.
type DocumentGateway interface {
	ListDocuments(ctx context.Context, search string) ([]models.Document, error)
	UploadDocument(ctx context.Context, title, fileName string, file io.Reader) (string, error)
	DeleteDocument(ctx context.Context, documentID int64) error
}

func NewManager(gw DocumentGateway, bus domain.EventPublisher, maxBytes int64, allowedExtensions []string, logger *zerolog.Logger) *Manager {
	if maxBytes <= 0 {
		maxBytes = models.MaxUploadBytes
	}
	if len(allowedExtensions) == 0 {
		allowedExtensions = models.AllowedUploadExtensions
	}

	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}

	return &Manager{
		gateway:  gw,
		bus:      bus,
		logger:   logger,
		maxBytes: maxBytes,
		allowed:  allowed,
		now:      time.Now,
	}
}

// ValidateUpload checks extension and size locally. It must be called (and
// must pass) before the backend sees a single byte.
func (m *Manager) ValidateUpload(fileName string, size int64) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !m.allowed[ext] {
		metrics.IncUploadRejected()
		return &ValidationError{Reason: fmt.Sprintf("file type %s is not supported; use %s", ext, m.allowedList())}
	}
	if size > m.maxBytes {
		metrics.IncUploadRejected()
		return &ValidationError{
			Reason: fmt.Sprintf("file too large: maximum size is %s, this file is %s",
				FormatFileSize(m.maxBytes), FormatFileSize(size)),
		}
	}
	return nil
}

// Upload validates and then performs exactly one multipart POST. The
// resulting notice (success or failure) is stored for the next render.
func (m *Manager) Upload(ctx context.Context, title, fileName string, size int64, file io.Reader) error {
	if err := m.ValidateUpload(fileName, size); err != nil {
		m.setNotice(err.Error(), true)
		return err
	}

	if title == "" {
		title = fileName
	}
	storedName, err := m.gateway.UploadDocument(ctx, title, fileName, file)
	if err != nil {
		m.setNotice("upload failed: "+uploadErrorMessage(err), true)
		return err
	}

	m.logger.Info().Str("file_name", storedName).Msg("document uploaded")
	m.setNotice("uploaded: "+storedName, false)

	if m.bus != nil {
		_ = m.bus.PublishJSON(events.EventDocumentUploaded, events.DocumentEventPayload{
			Title:    title,
			FileName: storedName,
		})
	}
	return nil
}

// Documents lists documents, optionally filtered by a server-side search
// term.
func (m *Manager) Documents(ctx context.Context, search string) ([]models.Document, error) {
	return m.gateway.ListDocuments(ctx, strings.TrimSpace(search))
}

// Delete removes one document. The caller refetches the list afterwards.
func (m *Manager) Delete(ctx context.Context, documentID int64) error {
	if err := m.gateway.DeleteDocument(ctx, documentID); err != nil {
		m.setNotice("delete failed: "+uploadErrorMessage(err), true)
		return err
	}

	if m.bus != nil {
		_ = m.bus.PublishJSON(events.EventDocumentDeleted, events.DocumentEventPayload{DocumentID: documentID})
	}
	return nil
}

// Notice returns the current transient message, hiding it once expired.
func (m *Manager) Notice() (Notice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.notice == nil || m.now().After(m.notice.expiresAt) {
		m.notice = nil
		return Notice{}, false
	}
	return *m.notice, true
}

func (m *Manager) setNotice(message string, failed bool) {
	ttl := models.SuccessNoticeTTL
	if failed {
		ttl = models.FailureNoticeTTL
	}

	m.mu.Lock()
	m.notice = &Notice{Message: message, Failed: failed, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
}

func (m *Manager) allowedList() string {
	exts := make([]string, 0, len(m.allowed))
	for _, ext := range models.AllowedUploadExtensions {
		if m.allowed[ext] {
			exts = append(exts, ext)
		}
	}
	if len(exts) == 0 {
		for ext := range m.allowed {
			exts = append(exts, ext)
		}
	}
	return strings.Join(exts, ", ")
}

// uploadErrorMessage prefers the server-provided detail and falls back to a
// status-code message.
func uploadErrorMessage(err error) string {
	var pe *gateway.PersistError
	if errors.As(err, &pe) {
		if pe.Message != "" {
			return pe.Message
		}
		if pe.StatusCode > 0 {
			return fmt.Sprintf("server error: %d", pe.StatusCode)
		}
	}
	return err.Error()
}

// FormatFileSize renders a byte count the way the documents table shows it.
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMG"[exp])
}
