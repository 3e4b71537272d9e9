// Package api exposes the triage agent over REST. Handlers parse the
// request, delegate to the agent and serialize the outcome; all domain
// decisions live in the pipeline package.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/0JaeminKim0/pipe-prpo/internal/config"
	"github.com/0JaeminKim0/pipe-prpo/internal/ingest"
	"github.com/0JaeminKim0/pipe-prpo/internal/pipeline"
	"github.com/0JaeminKim0/pipe-prpo/internal/report"
)

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	Agent *pipeline.Agent
	Cfg   *config.Config
}

// NewHandler wires a Handler around the agent.
func NewHandler(agent *pipeline.Agent, cfg *config.Config) *Handler {
	return &Handler{Agent: agent, Cfg: cfg}
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Upload ingests one or more workbook files from a multipart form. Files the
// detector cannot place are reported but never fail the request.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(h.Cfg.Ingest.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form", err)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided", nil)
		return
	}

	tables := make([]ingest.NamedTable, len(files))
	readErrs := make(map[int]error)
	for i, fh := range files {
		tables[i] = ingest.NamedTable{Filename: fh.Filename}

		src, err := fh.Open()
		if err != nil {
			readErrs[i] = err
			continue
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			readErrs[i] = err
			continue
		}
		t, err := ingest.ReadTableBytes(data)
		if err != nil {
			readErrs[i] = err
			continue
		}
		tables[i].Table = t
	}

	ds, reports := ingest.Assemble(tables, readErrs)

	if len(ds.PO) > 0 {
		if err := h.Agent.SetData(nil, ds.PO); err != nil {
			writeError(w, http.StatusConflict, "run in progress", err)
			return
		}
	}
	if len(ds.PR) > 0 {
		if err := h.Agent.AppendPR(ds.PR); err != nil {
			writeError(w, http.StatusConflict, "run in progress", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"files":   reports,
		"dataset": h.Agent.Data(),
	})
}

// LoadSample ingests the bundled sample workbooks, replacing any loaded data.
func (h *Handler) LoadSample(w http.ResponseWriter, r *http.Request) {
	paths, err := ingest.ListSampleFiles(h.Cfg.Server.SampleDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list sample files", err)
		return
	}
	if len(paths) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no sample files under %s", h.Cfg.Server.SampleDir), nil)
		return
	}

	ds, reports, err := ingest.LoadFiles(r.Context(), paths)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load sample files", err)
		return
	}

	if err := h.Agent.SetData(ds.PR, ds.PO); err != nil {
		writeError(w, http.StatusConflict, "run in progress", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"files":   reports,
		"dataset": h.Agent.Data(),
	})
}

// Status returns the run state and progress log.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	status, progress := h.Agent.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"progress": progress,
	})
}

// DataSummary describes what is loaded, before any processing.
func (h *Handler) DataSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Agent.Data())
}

// Process runs the pipeline synchronously and returns the result.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	result, err := h.Agent.Process(r.Context())
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		writeError(w, http.StatusConflict, "run already in progress", nil)
		return
	case errors.Is(err, pipeline.ErrNoPRData):
		writeError(w, http.StatusBadRequest, "no requisition data loaded", nil)
		return
	case err != nil:
		zap.L().Error("api: process failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "processing failed", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Results returns the latest completed run.
func (h *Handler) Results(w http.ResponseWriter, _ *http.Request) {
	result := h.Agent.Result()
	if result == nil {
		writeError(w, http.StatusNotFound, "no completed run", nil)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Quotations returns the quotation records of the latest run.
func (h *Handler) Quotations(w http.ResponseWriter, _ *http.Request) {
	result := h.Agent.Result()
	if result == nil {
		writeError(w, http.StatusNotFound, "no completed run", nil)
		return
	}
	writeJSON(w, http.StatusOK, result.Quotations)
}

// UpdateQuotation applies a partial edit to one quotation.
func (h *Handler) UpdateQuotation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var upd pipeline.QuotationUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	rec, err := h.Agent.UpdateQuotation(id, upd)
	if err != nil {
		writeQuotationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Approve marks one quotation approved.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Agent.Approve(id)
	if err != nil {
		writeQuotationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// BatchApprove approves a list of quotations; failures are reported per id.
func (h *Handler) BatchApprove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(body.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "no ids provided", nil)
		return
	}

	approved, failed := h.Agent.BatchApprove(body.IDs)
	writeJSON(w, http.StatusOK, map[string]any{
		"approved": len(approved),
		"failed":   failed,
	})
}

// Export streams the latest run as an xlsx workbook.
func (h *Handler) Export(w http.ResponseWriter, _ *http.Request) {
	result := h.Agent.Result()
	if result == nil {
		writeError(w, http.StatusNotFound, "no completed run", nil)
		return
	}

	data, err := report.Bytes(result)
	if err != nil {
		zap.L().Error("api: export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed", err)
		return
	}

	filename := fmt.Sprintf("pr-review-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Emails returns the queued missing-field notifications of the latest run.
func (h *Handler) Emails(w http.ResponseWriter, _ *http.Request) {
	result := h.Agent.Result()
	if result == nil {
		writeError(w, http.StatusNotFound, "no completed run", nil)
		return
	}
	writeJSON(w, http.StatusOK, result.Notifications)
}

// PricingLog returns the external estimation audit log of the latest run.
func (h *Handler) PricingLog(w http.ResponseWriter, _ *http.Request) {
	result := h.Agent.Result()
	if result == nil {
		writeError(w, http.StatusNotFound, "no completed run", nil)
		return
	}
	writeJSON(w, http.StatusOK, result.PricingLog)
}

func writeQuotationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrNoResult):
		writeError(w, http.StatusNotFound, "no completed run", nil)
	case errors.Is(err, pipeline.ErrQuotationNotFound):
		writeError(w, http.StatusNotFound, "quotation not found", nil)
	default:
		writeError(w, http.StatusInternalServerError, "quotation update failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
