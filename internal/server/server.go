// Package server serves the appraisal API and a small web page over HTTP.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
	"github.com/iwvelando/project-appraisal/internal/cache"
	"github.com/iwvelando/project-appraisal/internal/extract"
	"github.com/iwvelando/project-appraisal/internal/project"
	"github.com/iwvelando/project-appraisal/internal/report"
	"github.com/iwvelando/project-appraisal/pkg/constants"
	"github.com/iwvelando/project-appraisal/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Dependencies are the collaborators behind the API. Nil fields get defaults:
// an in-memory memoizer, a disabled extractor and a private metrics registry.
type Dependencies struct {
	Memoizer  *cache.Memoizer
	Extractor *extract.Service
	Report    report.Options
	Registry  *prometheus.Registry
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	memo          *cache.Memoizer
	extractor     *extract.Service
	reportOpts    report.Options
	metrics       *httpMetrics
}

// NewHandler constructs the HTTP handler that serves the web UI and appraisal API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, deps Dependencies) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	if deps.Memoizer == nil {
		deps.Memoizer = cache.NewMemoizer(cache.NewMemoryStore(), constants.DefaultCacheTTL, appraisal.NewEngine(logger), logger)
	}
	if deps.Extractor == nil {
		deps.Extractor = extract.NewService(nil, extract.Options{}, logger)
	}
	if deps.Report.Currency == "" {
		deps.Report = report.DefaultOptions()
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		memo:          deps.Memoizer,
		extractor:     deps.Extractor,
		reportOpts:    deps.Report,
		metrics:       newHTTPMetrics(deps.Registry),
	}

	mux := http.NewServeMux()

	// Appraisal of an edited or sample project
	mux.HandleFunc("/api/appraise", h.handleAppraise)

	// AI extraction from business-plan text
	mux.HandleFunc("/api/extract", h.handleExtract)

	// AI narrative of computed metrics
	mux.HandleFunc("/api/analyze", h.handleAnalyze)

	// Workbook download
	mux.HandleFunc("/api/export/xlsx", h.handleExportXLSX)

	mux.HandleFunc("/api/samples", h.handleSamples)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	mux.Handle("/metrics", h.metrics.handler())

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	mux.Handle("/", http.FileServer(http.FS(sub)))

	return h.withRequestContext(mux)
}

type projectRequest struct {
	Project *project.Input `json:"project"`
}

type appraiseResponse struct {
	Project    project.Input               `json:"project"`
	Parameters appraisal.ProjectParameters `json:"parameters"`
	Rows       []appraisal.CashFlowRow     `json:"rows"`
	Metrics    appraisal.Metrics           `json:"metrics"`
	Display    report.MetricsText          `json:"display"`
	CSV        string                      `json:"csv"`
	Cached     bool                        `json:"cached"`
	Duration   string                      `json:"duration"`
}

type extractResponse struct {
	Project  project.Input `json:"project"`
	Duration string        `json:"duration"`
}

type analyzeResponse struct {
	Markdown string             `json:"markdown"`
	HTML     string             `json:"html"`
	Display  report.MetricsText `json:"display"`
	Duration string             `json:"duration"`
}

type errorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func (h *handler) handleAppraise(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAppraise"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	in, params, ok := h.decodeProject(w, r, op)
	if !ok {
		return
	}

	result, cached := h.memo.Appraise(r.Context(), params)
	h.metrics.appraisal(cached)

	var csvBuf bytes.Buffer
	if err := report.CSV(&csvBuf, result); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to render csv: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, appraiseResponse{
		Project:    in,
		Parameters: result.Parameters,
		Rows:       result.Rows,
		Metrics:    result.Metrics,
		Display:    report.FormatMetrics(result, h.reportOpts),
		CSV:        csvBuf.String(),
		Cached:     cached,
		Duration:   time.Since(start).String(),
	})
}

func (h *handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExtract"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !h.extractor.Enabled() {
		h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, extract.ErrProviderDisabled.Error(), op)
		return
	}

	start := time.Now()
	text, ok := h.readPlanText(w, r, op)
	if !ok {
		return
	}

	in, err := h.extractor.ExtractProjectData(r.Context(), text)
	h.metrics.ai("extract", err)
	if err != nil {
		h.respondExtractionError(w, r, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, extractResponse{
		Project:  in,
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAnalyze"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !h.extractor.Enabled() {
		h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, extract.ErrProviderDisabled.Error(), op)
		return
	}

	start := time.Now()
	_, params, ok := h.decodeProject(w, r, op)
	if !ok {
		return
	}

	result, cached := h.memo.Appraise(r.Context(), params)
	h.metrics.appraisal(cached)

	markdown, err := h.extractor.AnalyzeMetrics(r.Context(), result)
	h.metrics.ai("analyze", err)
	if err != nil {
		h.respondExtractionError(w, r, err, op)
		return
	}

	html, err := extract.RenderHTML(markdown)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, analyzeResponse{
		Markdown: markdown,
		HTML:     html,
		Display:  report.FormatMetrics(result, h.reportOpts),
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportXLSX"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	_, params, ok := h.decodeProject(w, r, op)
	if !ok {
		return
	}
	result, cached := h.memo.Appraise(r.Context(), params)
	h.metrics.appraisal(cached)

	var buf bytes.Buffer
	if err := report.XLSX(&buf, result, h.reportOpts); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to build workbook: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="appraisal.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed to write workbook",
			zap.String("op", op),
			zap.String("requestId", RequestID(r.Context())),
			zap.Error(err),
		)
	}
}

func (h *handler) handleSamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, project.Samples())
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":     h.version,
		"aiAvailable": h.extractor.Enabled(),
	})
}

// decodeProject reads {"project": {...}}, validates it and answers 400 on failure.
func (h *handler) decodeProject(w http.ResponseWriter, r *http.Request, op string) (project.Input, appraisal.ProjectParameters, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var req projectRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return project.Input{}, appraisal.ProjectParameters{}, false
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return project.Input{}, appraisal.ProjectParameters{}, false
	}
	if req.Project == nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "missing project", op)
		return project.Input{}, appraisal.ProjectParameters{}, false
	}

	if err := project.Validate(*req.Project); err != nil {
		h.respondValidationError(w, r, err, op)
		return project.Input{}, appraisal.ProjectParameters{}, false
	}
	return *req.Project, req.Project.Parameters(), true
}

// readPlanText accepts a multipart "file" upload or a JSON {"text": "..."} body.
func (h *handler) readPlanText(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			h.respondBodyError(w, r, err, "failed to parse upload", op)
			return "", false
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, "missing business plan file", op)
			return "", false
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				h.logger.Warn("failed to close uploaded file",
					zap.String("op", op),
					zap.Error(closeErr),
				)
			}
		}()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, file); err != nil {
			h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read business plan: %v", err), op)
			return "", false
		}
		return buf.String(), true
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondBodyError(w, r, err, "failed to decode request", op)
		return "", false
	}
	return req.Text, true
}

func (h *handler) respondBodyError(w http.ResponseWriter, r *http.Request, err error, msg, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
		return
	}
	h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("%s: %v", msg, err), op)
}

func (h *handler) respondValidationError(w http.ResponseWriter, r *http.Request, err error, op string) {
	resp := errorResponse{Error: err.Error()}
	var ferrs validation.FieldErrors
	if errors.As(err, &ferrs) {
		resp.Fields = ferrs
	}
	h.logger.Debug("rejected project",
		zap.String("op", op),
		zap.String("requestId", RequestID(r.Context())),
		zap.Error(err),
	)
	h.writeJSON(w, http.StatusBadRequest, resp)
}

func (h *handler) respondExtractionError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var (
		missing   *extract.MissingFieldsError
		malformed *extract.MalformedResponseError
		ferrs     validation.FieldErrors
	)

	switch {
	case errors.Is(err, extract.ErrEmptyText):
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
	case errors.Is(err, extract.ErrProviderDisabled):
		h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, err.Error(), op)
	case errors.As(err, &ferrs), errors.As(err, &missing), errors.As(err, &malformed), errors.Is(err, extract.ErrInvalidValue), errors.Is(err, project.ErrIncomplete):
		h.respondErrorWithOp(w, r, http.StatusUnprocessableEntity, err.Error(), op)
	case errors.Is(err, context.DeadlineExceeded):
		h.respondErrorWithOp(w, r, http.StatusGatewayTimeout, err.Error(), op)
	default:
		h.respondErrorWithOp(w, r, http.StatusBadGateway, err.Error(), op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.String("requestId", RequestID(r.Context())),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}
	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to encode response", zap.String("op", "server.writeJSON"), zap.Error(err))
	}
}
