package web

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/logging"
)

// handleUploadPDF attaches the multipart "pdf" part to an existing Article.
func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, s.cfg.Import.MaxPDFSize); err != nil {
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := formFile(r, "pdf")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer file.Close()

	a, err := s.service.AttachPDF(r.Context(), chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleDownloadPDF streams an Article's PDF.
func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	rc, a, err := s.service.OpenPDF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, a.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logging.FromContext(r.Context()).Warn("pdf download interrupted", "article_id", a.ID, "error", err)
	}
}

// handleUploadBibTeX imports the multipart "file" part as one batch and
// answers with the aggregated statistics.
func (s *Server) handleUploadBibTeX(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, s.cfg.Import.MaxBibFileSize); err != nil {
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := formFile(r, "file")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer file.Close()

	stats, err := s.service.ImportBibTeX(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.ImportResponse{
		Message: fmt.Sprintf("import finished: %d of %d entries created", stats.ArticlesCreated, stats.Total),
		Stats:   stats,
	})
}
