// Package httpapi serves figure extraction over a JSON HTTP API.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/a3tai/mcp-pdf-figures/internal/document"
	"github.com/a3tai/mcp-pdf-figures/internal/figures"
	"github.com/a3tai/mcp-pdf-figures/internal/layout"
	"github.com/a3tai/mcp-pdf-figures/internal/report"
)

const requestIDHeader = "X-Request-ID"

// API holds the dependencies of the HTTP handlers
type API struct {
	service *document.Service
	logger  *slog.Logger
	name    string
}

// NewRouter returns the HTTP routes for svc. name is reported by /health.
func NewRouter(svc *document.Service, logger *slog.Logger, name string) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	api := &API{service: svc, logger: logger, name: name}

	r := chi.NewRouter()
	r.Use(api.requestID)
	r.Use(api.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", api.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/files", api.handleListFiles)
		r.Post("/extract/file", api.handleExtractFile)
		r.Post("/extract/pages", api.handleExtractPages)
		r.Post("/extract/text", api.handleExtractText)
		r.Post("/extract/table", api.handleExtractTable)
		r.Post("/headers", api.handleResolveHeaders)
	})

	return r
}

// requestID tags every request with a uuid, reusing a caller supplied one
func (a *API) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", w.Header().Get(requestIDHeader),
			"elapsed", time.Since(start),
		)
	})
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Service: a.name})
}

func (a *API) handleListFiles(w http.ResponseWriter, _ *http.Request) {
	files, err := a.service.FindDocuments(0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"directory": a.service.Directory(),
		"files":     files,
	})
}

type fileRequest struct {
	Path string `json:"path"`
}

func (a *API) handleExtractFile(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}

	rep, err := a.service.ExtractFile(r.Context(), req.Path)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	a.writeReport(w, r, rep)
}

type pagesRequest struct {
	Source string `json:"source"`
}

func (a *API) handleExtractPages(w http.ResponseWriter, r *http.Request) {
	body, ok := a.readBody(w, r)
	if !ok {
		return
	}

	pages, err := layout.DecodeJSON(bytes.NewReader(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req pagesRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	doc := &document.Document{Source: req.Source, Format: layout.FormatJSON, Pages: pages}
	rep, err := a.service.ExtractDocument(r.Context(), doc)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	a.writeReport(w, r, rep)
}

// provenanceFields are the optional location fields accepted by the
// text and table endpoints
type provenanceFields struct {
	Section *string `json:"section"`
	Page    *int    `json:"page"`
	Source  *string `json:"source"`
}

func (p provenanceFields) provenance() figures.Provenance {
	return figures.Provenance{Section: p.Section, Page: p.Page, Source: p.Source}
}

func (p provenanceFields) source() string {
	if p.Source == nil {
		return ""
	}
	return *p.Source
}

type textRequest struct {
	Text string `json:"text"`
	provenanceFields
}

func (a *API) handleExtractText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !a.decode(w, r, &req) {
		return
	}

	numbers := a.service.Extractor().ExtractFromText(req.Text, req.provenance())
	a.writeReport(w, r, report.New(req.source(), numbers))
}

type tableRequest struct {
	Rows  []figures.Row `json:"rows"`
	Scale string        `json:"scale"`
	provenanceFields
}

func (a *API) handleExtractTable(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if !a.decode(w, r, &req) {
		return
	}

	opts := figures.TableOptions{Scale: figures.ParseScale(req.Scale), Provenance: req.provenance()}
	if req.Scale != "" && opts.Scale == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unrecognized scale %q", req.Scale))
		return
	}

	numbers := a.service.Extractor().ExtractFromTable(req.Rows, opts)
	a.writeReport(w, r, report.New(req.source(), numbers))
}

type headersResponse struct {
	Headers []string `json:"headers"`
}

func (a *API) handleResolveHeaders(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if !a.decode(w, r, &req) {
		return
	}

	headers := figures.ResolveColumnHeaders(req.Rows)
	if headers == nil {
		headers = []string{}
	}
	writeJSON(w, http.StatusOK, headersResponse{Headers: headers})
}

func (a *API) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.service.MaxFileSize()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
		} else {
			writeError(w, http.StatusBadRequest, err)
		}
		return nil, false
	}
	return body, true
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, ok := a.readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

var contentTypes = map[report.Format]string{
	report.FormatJSON:     "application/json",
	report.FormatYAML:     "application/yaml",
	report.FormatMarkdown: "text/markdown; charset=utf-8",
	report.FormatText:     "text/plain; charset=utf-8",
}

// writeReport renders rep in the ?format= requested, JSON by default
func (a *API) writeReport(w http.ResponseWriter, r *http.Request, rep *report.Report) {
	format := report.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := report.ParseFormat(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		format = f
	}

	var buf bytes.Buffer
	if err := rep.Write(&buf, format); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		a.logger.Warn("write response failed", "error", err)
	}
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	var layoutErr *layout.Error
	switch {
	case errors.Is(err, layout.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &layoutErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
