package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"ebadmin/internal/board"
	"ebadmin/internal/config"
	"ebadmin/internal/domain"
	"ebadmin/internal/knowledge"
	"ebadmin/internal/models"
	"ebadmin/internal/worker"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server renders the admin dashboard and translates browser gestures into
// controller calls. It never talks to the backend directly except for the
// pass-through endpoints (timeslots, dashboard reads) that have no local
// state to manage.
type Server struct {
	cfg     config.ServerConfig
	board   *board.Controller
	docs    *knowledge.Manager
	gateway domain.Gateway
	watcher *worker.HealthWatcher
	logger  *zerolog.Logger
	tmpl    *template.Template
	server  *http.Server
	auth    *accessGate
}

func NewServer(
	cfg config.ServerConfig,
	boardCtrl *board.Controller,
	docs *knowledge.Manager,
	gw domain.Gateway,
	watcher *worker.HealthWatcher,
	logger *zerolog.Logger,
) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	srv := &Server{
		cfg:     cfg,
		board:   boardCtrl,
		docs:    docs,
		gateway: gw,
		watcher: watcher,
		logger:  logger,
		tmpl:    tmpl,
		auth:    newAccessGate(cfg),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleIndex)
	mux.HandleFunc("/dashboard", srv.handleDashboard)
	mux.HandleFunc("/board", srv.handleBoard)
	mux.HandleFunc("/board/move", srv.handleBoardMove)
	mux.HandleFunc("/board/bookings", srv.handleBoardCreate)
	mux.HandleFunc("/board/export", srv.handleBoardExport)
	mux.HandleFunc("/api/timeslots/", srv.handleTimeSlots)
	mux.HandleFunc("/knowledge", srv.handleKnowledge)
	mux.HandleFunc("/knowledge/upload", srv.handleKnowledgeUpload)
	mux.HandleFunc("/knowledge/delete", srv.handleKnowledgeDelete)
	mux.HandleFunc("/settings", srv.handleSettings)
	mux.HandleFunc("/settings/password", srv.handleSettingsPassword)
	mux.HandleFunc("/healthz", srv.handleHealthz)

	handler := requestIDMiddleware(srv.loggingMiddleware(srv.rateLimitMiddleware(srv.auth.Wrap(mux))))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv, nil
}

// Handler exposes the full middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("dashboard listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// pageData is the envelope every template receives.
type pageData struct {
	Title     string
	Active    string
	Connected bool
	Checked   bool
	Error     string
	Flash     string
	Data      interface{}
}

func (s *Server) newPageData(title, active string, r *http.Request) pageData {
	return pageData{
		Title:     title,
		Active:    active,
		Connected: s.watcher != nil && s.watcher.Connected(),
		Checked:   s.watcher != nil && s.watcher.Checked(),
		Error:     r.URL.Query().Get("err"),
		Flash:     r.URL.Query().Get("ok"),
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"statusTitle": func(st models.Status) string { return st.Title() },
		"statusClass": statusClass,
		"serviceClass": func(id int64) string {
			return serviceBadgePalette[int(id)%len(serviceBadgePalette)]
		},
		"fileSize": knowledge.FormatFileSize,
		"inc":      func(i int) int { return i + 1 },
		"dec":      func(i int) int { return i - 1 },
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
	}
}

// serviceBadgePalette is keyed by service id (stable identifier), not by
// display name: names get renamed and translated, ids do not.
var serviceBadgePalette = []string{
	"badge-purple", "badge-pink", "badge-blue",
	"badge-green", "badge-yellow", "badge-indigo",
}

func statusClass(st models.Status) string {
	switch st {
	case models.StatusScheduled:
		return "status-scheduled"
	case models.StatusCheckedIn:
		return "status-checked-in"
	case models.StatusServing:
		return "status-serving"
	case models.StatusCompleted:
		return "status-completed"
	case models.StatusCancelled:
		return "status-cancelled"
	}
	return "status-unknown"
}
