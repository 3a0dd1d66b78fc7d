package web

import (
	"net/http"
	"net/url"

	"ebadmin/internal/metrics"
)

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncPage("settings")
	s.render(w, "settings.html", s.newPageData("Settings", "settings", r))
}

// handleSettingsPassword validates the change-password form. There is no
// account store behind the dashboard yet, so a passing form only reports
// success; the check still runs so the form behaves like the real thing.
func (s *Server) handleSettingsPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	current := r.PostFormValue("current_password")
	next := r.PostFormValue("new_password")
	confirm := r.PostFormValue("confirm_password")

	switch {
	case current == "" || next == "" || confirm == "":
		s.redirectSettings(w, r, "All password fields are required.", "")
	case next != confirm:
		s.redirectSettings(w, r, "New passwords do not match.", "")
	case len(next) < 6:
		s.redirectSettings(w, r, "The new password must be at least 6 characters.", "")
	default:
		s.redirectSettings(w, r, "", "Password updated.")
	}
}

func (s *Server) redirectSettings(w http.ResponseWriter, r *http.Request, errMsg, okMsg string) {
	q := url.Values{}
	if errMsg != "" {
		q.Set("err", errMsg)
	}
	if okMsg != "" {
		q.Set("ok", okMsg)
	}
	target := "/settings"
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
