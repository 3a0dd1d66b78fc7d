package web

import (
	"net/http"
	"strings"
	"time"

	"ebadmin/internal/metrics"
	"ebadmin/internal/models"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

type dashboardData struct {
	Summary models.Summary
	Recent  []models.RecentBooking
}

// handleDashboard tolerates a dead backend: each card falls back to zero
// values so the page always renders.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncPage("dashboard")

	page := s.newPageData("Dashboard", "dashboard", r)
	data := dashboardData{}

	summary, err := s.gateway.DashboardSummary(r.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("dashboard summary unavailable")
		page.Error = "Statistics are temporarily unavailable."
	} else if summary != nil {
		data.Summary = *summary
	}

	recent, err := s.gateway.RecentBookings(r.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("recent bookings unavailable")
	} else {
		data.Recent = recent
	}

	page.Data = data
	s.render(w, "dashboard.html", page)
}

// handleTimeSlots backs the booking form's date picker. Only bookable slots
// are returned; the browser has no reason to see taken ones.
func (s *Server) handleTimeSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	date := strings.TrimPrefix(r.URL.Path, "/api/timeslots/")
	if _, err := time.Parse(models.SlotDateFormat, date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	slots, err := s.gateway.ListTimeSlots(r.Context(), date)
	if err != nil {
		s.logger.Warn().Err(err).Str("date", date).Msg("timeslot fetch failed")
		writeError(w, http.StatusBadGateway, "could not load time slots")
		return
	}

	available := make([]models.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.IsAvailable {
			available = append(available, slot)
		}
	}
	writeJSON(w, http.StatusOK, available)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":            "ok",
		"backend_connected": s.watcher != nil && s.watcher.Connected(),
	}
	writeJSON(w, http.StatusOK, status)
}
