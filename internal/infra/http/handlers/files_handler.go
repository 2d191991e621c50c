package handlers

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nicl-mu/renewal-portal/internal/entity"
	"github.com/nicl-mu/renewal-portal/internal/infra/storage"
	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

// FilesHandler lists and serves the PDFs a team's pipeline produced.
type FilesHandler struct {
	Pipe  usecase.Pipeline
	Store *storage.Store
}

func NewFilesHandler(pipe usecase.Pipeline, store *storage.Store) *FilesHandler {
	return &FilesHandler{Pipe: pipe, Store: store}
}

type filesResponse struct {
	Individual []entity.Artifact `json:"individual"`
	Merged     []entity.Artifact `json:"merged"`
}

// Files (GET /files) lists individual and merged PDFs with download URLs.
func (h *FilesHandler) Files(w http.ResponseWriter, r *http.Request) {
	h.listFiles(w, h.Pipe.OutputDir, h.Pipe.MergedDir, "individual", "merged")
}

// PrinterFiles (GET /printer-files) lists the printer variant's outputs.
func (h *FilesHandler) PrinterFiles(w http.ResponseWriter, r *http.Request) {
	if h.Pipe.Printer == nil {
		writeErrorMessage(w, http.StatusNotFound, "No printer variant for this team")
		return
	}
	h.listFiles(w, h.Pipe.Printer.OutputDir, h.Pipe.Printer.MergedDir, "printer-individual", "printer-merged")
}

func (h *FilesHandler) listFiles(w http.ResponseWriter, outputDir, mergedDir, individualKind, mergedKind string) {
	individual, err := h.Store.List(outputDir, h.downloadPrefix(individualKind))
	if err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to get files list")
		return
	}
	merged, err := h.Store.List(mergedDir, h.downloadPrefix(mergedKind))
	if err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to get files list")
		return
	}
	writeJSON(w, http.StatusOK, filesResponse{Individual: individual, Merged: merged})
}

// Download (GET /download/{kind}/{filename}) serves one PDF as an
// attachment. kind selects the directory.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	filename := chi.URLParam(r, "filename")

	dir, ok := h.dirFor(kind)
	if !ok {
		writeErrorMessage(w, http.StatusNotFound, "File not found")
		return
	}
	if filename == "" || filename != filepath.Base(filename) || !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		writeErrorMessage(w, http.StatusNotFound, "File not found")
		return
	}
	path := filepath.Join(dir, filename)
	if !h.Store.Exists(path) {
		writeErrorMessage(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// DownloadAll (GET /download/all-individual, /download/all-printer-individual)
// streams every individual PDF as one zip archive. Headers go out before the
// archive is built; a failure mid-stream truncates the download.
func (h *FilesHandler) DownloadAll(printer bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dir, prefix := h.Pipe.OutputDir, h.Pipe.Team
		if printer {
			if h.Pipe.Printer == nil {
				writeErrorMessage(w, http.StatusNotFound, "No printer variant for this team")
				return
			}
			dir, prefix = h.Pipe.Printer.OutputDir, h.Pipe.Team+"_printer"
		}

		count, err := h.Store.CountPDFs(dir)
		if err != nil || count == 0 {
			writeErrorMessage(w, http.StatusNotFound, "No PDF files found")
			return
		}

		zipName := fmt.Sprintf("%s_renewal_notices_%s.zip", prefix, time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", zipName))

		if err := h.Store.StreamZip(w, dir); err != nil {
			log.Printf("Zip download of %s failed mid-stream: %v", dir, err)
		}
	}
}

func (h *FilesHandler) dirFor(kind string) (string, bool) {
	switch kind {
	case "individual":
		return h.Pipe.OutputDir, true
	case "merged":
		return h.Pipe.MergedDir, true
	case "printer-individual":
		if h.Pipe.Printer != nil {
			return h.Pipe.Printer.OutputDir, true
		}
	case "printer-merged":
		if h.Pipe.Printer != nil {
			return h.Pipe.Printer.MergedDir, true
		}
	}
	return "", false
}

func (h *FilesHandler) downloadPrefix(kind string) string {
	return "/api/" + h.Pipe.Team + "/download/" + kind
}
