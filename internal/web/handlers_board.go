package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ebadmin/internal/board"
	"ebadmin/internal/export"
	"ebadmin/internal/metrics"
	"ebadmin/internal/models"
)

type boardData struct {
	View     string
	Columns  []board.Column
	Table    board.Page
	Services []models.Service
	Statuses []models.Status
	SortDirs map[string]string
	Query    string
}

// handleBoard renders the status board in either kanban or list mode. The
// mode, sort key, direction and page all travel in the query string so the
// browser's back button and refresh keep working.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncPage("board")

	q := r.URL.Query()
	view := q.Get("view")
	if view != "list" {
		view = "kanban"
	}

	page := s.newPageData("Status Board", "board", r)
	if err := s.board.Err(); err != nil && page.Error == "" {
		page.Error = "The booking backend is unreachable. Showing the last known state."
	}

	data := boardData{
		View:     view,
		Services: s.board.Services(),
		Statuses: models.Statuses,
		Query:    boardQuery(q),
	}

	bookings := s.board.Snapshot()
	if view == "list" {
		opts := board.ViewOptions{
			SortKey: q.Get("sort"),
			Desc:    q.Get("dir") == "desc",
		}
		if p, err := strconv.Atoi(q.Get("page")); err == nil {
			opts.Page = p
		}
		data.Table = board.TableView(bookings, opts)
		data.SortDirs = nextSortDirs(data.Table)
	} else {
		data.Columns = board.Columns(bookings)
	}

	page.Data = data
	s.render(w, "board.html", page)
}

// nextSortDirs tells the template which direction each column header should
// request next: clicking the already-active column flips it, any other
// column starts ascending.
func nextSortDirs(table board.Page) map[string]string {
	dirs := map[string]string{
		"customer_name":  "asc",
		"customer_phone": "asc",
		"status":         "asc",
		"notes":          "asc",
		"created_at":     "asc",
	}
	if !table.Desc {
		dirs[table.SortKey] = "desc"
	}
	return dirs
}

func boardQuery(q url.Values) string {
	keep := url.Values{}
	for _, key := range []string{"view", "sort", "dir", "page"} {
		if v := q.Get(key); v != "" {
			keep.Set(key, v)
		}
	}
	return keep.Encode()
}

// handleBoardMove is the drop target for a kanban drag. The controller
// applies the change optimistically, so this handler redirects immediately
// without waiting on the backend.
func (s *Server) handleBoardMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	id, err := strconv.ParseInt(r.PostFormValue("booking_id"), 10, 64)
	status := models.Status(r.PostFormValue("status"))
	if err != nil || !status.Valid() {
		// A drop outside any column or a stale card: nothing to do.
		s.redirectBoard(w, r, "")
		return
	}

	s.board.RequestStatusChange(r.Context(), id, status)
	s.redirectBoard(w, r, "")
}

func (s *Server) handleBoardCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	req := models.CreateBookingRequest{
		CustomerName:  r.PostFormValue("customer_name"),
		CustomerPhone: r.PostFormValue("customer_phone"),
		CustomerEmail: r.PostFormValue("customer_email"),
		Notes:         r.PostFormValue("notes"),
	}
	req.ServiceID, _ = strconv.ParseInt(r.PostFormValue("service_id"), 10, 64)
	req.TimeSlotID, _ = strconv.ParseInt(r.PostFormValue("time_slot_id"), 10, 64)

	if req.CustomerName == "" || req.CustomerPhone == "" || req.ServiceID == 0 || req.TimeSlotID == 0 {
		s.redirectBoard(w, r, "Name, phone, service and time slot are required.")
		return
	}

	if err := s.board.CreateBooking(r.Context(), req); err != nil {
		s.redirectBoard(w, r, "Could not create the booking.")
		return
	}
	s.redirectBoard(w, r, "")
}

func (s *Server) redirectBoard(w http.ResponseWriter, r *http.Request, errMsg string) {
	target := "/board"
	q := url.Values{}
	if raw := r.PostFormValue("return"); raw != "" {
		if parsed, err := url.ParseQuery(raw); err == nil {
			q = parsed
		}
	}
	if errMsg != "" {
		q.Set("err", errMsg)
	}
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleBoardExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := export.FileName(time.Now().Format(models.SlotDateFormat))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if err := export.WriteBookings(w, s.board.Snapshot()); err != nil {
		s.logger.Error().Err(err).Msg("excel export failed")
	}
}
