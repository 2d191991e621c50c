package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicl-mu/renewal-portal/internal/entity"
	"github.com/nicl-mu/renewal-portal/internal/infra/http/middleware"
	"github.com/nicl-mu/renewal-portal/internal/infra/pipeline"
	"github.com/nicl-mu/renewal-portal/internal/usecase"
)

const maxUploadBytes = 10 << 20 // 10MB

type WorkflowHandler struct {
	UC       *usecase.WorkflowUseCase
	Registry usecase.TeamRegistry
	Tracker  *pipeline.Tracker
}

func NewWorkflowHandler(uc *usecase.WorkflowUseCase, registry usecase.TeamRegistry, tracker *pipeline.Tracker) *WorkflowHandler {
	return &WorkflowHandler{UC: uc, Registry: registry, Tracker: tracker}
}

// UploadExcel (POST /upload-excel) accepts the renewal listing as multipart
// form data and saves it under the fixed name the scripts expect.
func (h *WorkflowHandler) UploadExcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+4096)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if !isSpreadsheet(header.Filename, header.Header.Get("Content-Type")) {
		writeErrorMessage(w, http.StatusBadRequest, "Only Excel files are allowed")
		return
	}

	target := h.UC.Pipe.UploadPath()
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	out, err := os.Create(target)
	if err != nil {
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	out.Close()

	count, err := h.UC.Ingest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.RecordStageRun(h.UC.Pipe.Team, entity.StageUpload, entity.RunCompleted)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Excel file uploaded successfully",
		"filename":    header.Filename,
		"savedAs":     h.UC.Pipe.UploadFile,
		"recordCount": count,
	})
}

// GeneratePDFs (POST /generate-pdfs, /generate-printer-pdfs) runs the
// generation script and reports its output.
func (h *WorkflowHandler) GeneratePDFs(printer bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, output, err := h.UC.Generate(r.Context(), printer)
		stage := entity.StageGenerate
		message := "PDFs generated successfully"
		if printer {
			stage = entity.StageGeneratePrint
			message = "Printer PDFs generated successfully"
		}
		if err != nil {
			middleware.RecordStageRun(h.UC.Pipe.Team, stage, entity.RunFailed)
			writeError(w, err)
			return
		}
		middleware.RecordStageRun(h.UC.Pipe.Team, stage, entity.RunCompleted)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": message,
			"runId":   runID,
			"output":  output,
		})
	}
}

// AttachForms (POST /attach-forms) runs the form-attachment script.
func (h *WorkflowHandler) AttachForms(w http.ResponseWriter, r *http.Request) {
	runID, output, err := h.UC.Attach(r.Context())
	if err != nil {
		middleware.RecordStageRun(h.UC.Pipe.Team, entity.StageAttach, entity.RunFailed)
		writeError(w, err)
		return
	}
	middleware.RecordStageRun(h.UC.Pipe.Team, entity.StageAttach, entity.RunCompleted)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Forms attached successfully",
		"runId":   runID,
		"output":  output,
	})
}

// MergePDFs (POST /merge-pdfs, /merge-printer-pdfs) consolidates the
// generated PDFs.
func (h *WorkflowHandler) MergePDFs(printer bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, output, err := h.UC.Merge(r.Context(), printer)
		stage := entity.StageMerge
		message := "PDFs merged successfully"
		if printer {
			stage = entity.StageMergePrint
			message = "Printer PDFs merged successfully"
		}
		if err != nil {
			middleware.RecordStageRun(h.UC.Pipe.Team, stage, entity.RunFailed)
			writeError(w, err)
			return
		}
		middleware.RecordStageRun(h.UC.Pipe.Team, stage, entity.RunCompleted)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": message,
			"runId":   runID,
			"output":  output,
		})
	}
}

// SendEmails (POST /send-emails) dispatches renewal notices to every
// recipient parsed from the uploaded listing.
func (h *WorkflowHandler) SendEmails(w http.ResponseWriter, r *http.Request) {
	team := h.Registry.Team(h.UC.Pipe.Team)
	if team == nil {
		writeErrorMessage(w, http.StatusInternalServerError, "Team configuration missing")
		return
	}

	result, err := h.UC.SendEmails(r.Context(), team)
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.RecordEmails(team.ID, result.Success, result.Failed)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Email sending completed: %d sent, %d failed", result.Success, result.Failed),
		"sender":  team.SenderName,
		"results": result,
	})
}

// Status (GET /status) reports per-stage completion from recorded runs.
func (h *WorkflowHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.UC.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Progress (GET /progress) reports the team's latest stage progress, or a
// specific run's when ?run= is given.
func (h *WorkflowHandler) Progress(w http.ResponseWriter, r *http.Request) {
	if runID := r.URL.Query().Get("run"); runID != "" {
		p, ok := h.Tracker.Run(runID)
		if !ok {
			writeErrorMessage(w, http.StatusNotFound, "Unknown run")
			return
		}
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeJSON(w, http.StatusOK, h.Tracker.Latest(h.UC.Pipe.Team))
}

func isSpreadsheet(name, contentType string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".xlsx" || ext == ".xls" {
		return true
	}
	return strings.Contains(contentType, "spreadsheet") || contentType == "application/vnd.ms-excel"
}
