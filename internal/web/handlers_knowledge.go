package web

import (
	"net/http"
	"net/url"
	"strconv"

	"ebadmin/internal/knowledge"
	"ebadmin/internal/metrics"
	"ebadmin/internal/models"
)

type knowledgeData struct {
	Documents []models.Document
	Search    string
	Notice    *knowledge.Notice
	MaxSize   string
}

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncPage("knowledge")

	search := r.URL.Query().Get("q")
	page := s.newPageData("Knowledge Base", "knowledge", r)

	docs, err := s.docs.Documents(r.Context(), search)
	if err != nil {
		s.logger.Warn().Err(err).Msg("document list unavailable")
		page.Error = "Could not load documents from the backend."
	}

	var notice *knowledge.Notice
	if n, ok := s.docs.Notice(); ok {
		notice = &n
	}

	page.Data = knowledgeData{
		Documents: docs,
		Search:    search,
		Notice:    notice,
		MaxSize:   knowledge.FormatFileSize(models.MaxUploadBytes),
	}
	s.render(w, "knowledge.html", page)
}

// handleKnowledgeUpload accepts the multipart upload form. Validation
// happens in the manager before any byte reaches the backend; the request
// body itself is capped one megabyte above the document limit so an
// oversized file is rejected by inspection, not by a transport error.
func (s *Server) handleKnowledgeUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, models.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(models.MaxUploadBytes); err != nil {
		s.redirectKnowledge(w, r, "The selected file is too large.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.redirectKnowledge(w, r, "Choose a file to upload.")
		return
	}
	defer file.Close()

	title := r.PostFormValue("title")
	if title == "" {
		title = header.Filename
	}

	s.docs.Upload(r.Context(), title, header.Filename, header.Size, file)
	s.redirectKnowledge(w, r, "")
}

func (s *Server) handleKnowledgeDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	if err != nil {
		s.redirectKnowledge(w, r, "")
		return
	}

	if err := s.docs.Delete(r.Context(), id); err != nil {
		s.redirectKnowledge(w, r, "Could not delete the document.")
		return
	}
	s.redirectKnowledge(w, r, "")
}

func (s *Server) redirectKnowledge(w http.ResponseWriter, r *http.Request, errMsg string) {
	target := "/knowledge"
	q := url.Values{}
	if search := r.PostFormValue("q"); search != "" {
		q.Set("q", search)
	}
	if errMsg != "" {
		q.Set("err", errMsg)
	}
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
