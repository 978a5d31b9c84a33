package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/martinsuchenak/merakilife/internal/lifecycle"
	"github.com/martinsuchenak/merakilife/internal/log"
	"github.com/martinsuchenak/merakilife/internal/model"
	"github.com/martinsuchenak/merakilife/internal/report"
)

// Handler handles HTTP requests
type Handler struct {
	service *report.Service
	version string
}

// NewHandler creates a new API handler
func NewHandler(s *report.Service, version string) *Handler {
	return &Handler{service: s, version: version}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.health)
	mux.HandleFunc("GET /api/organizations", h.listOrganizations)
	mux.HandleFunc("GET /api/catalog", h.getCatalog)
	mux.HandleFunc("POST /api/reports", h.createReport)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// listOrganizations handles GET /api/organizations
func (h *Handler) listOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.service.ListOrganizations(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}
	if orgs == nil {
		orgs = []model.Organization{}
	}
	writeJSON(w, http.StatusOK, orgs)
}

// getCatalog handles GET /api/catalog, or a single model with ?model=
func (h *Handler) getCatalog(w http.ResponseWriter, r *http.Request) {
	if name := strings.TrimSpace(r.URL.Query().Get("model")); name != "" {
		a, err := h.service.Lookup(r.Context(), name)
		if err != nil {
			h.serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
		return
	}

	announcements, err := h.service.Catalog(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}
	if announcements == nil {
		announcements = []model.Announcement{}
	}
	writeJSON(w, http.StatusOK, announcements)
}

type reportRequest struct {
	OrganizationIDs []string `json:"organization_ids"`
}

// createReport handles POST /api/reports. An empty body reports on every
// organization.
func (h *Handler) createReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := h.service.Report(r.Context(), req.OrganizationIDs)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	log.Info("Report generated via API", "run_id", summary.RunID, "organizations", len(summary.Reports))
	writeJSON(w, http.StatusOK, summary)
}

// serviceError maps service errors onto HTTP statuses
func (h *Handler) serviceError(w http.ResponseWriter, err error) {
	var fetchErr *model.FetchError
	var integrityErr *lifecycle.DataIntegrityError

	switch {
	case errors.Is(err, report.ErrUnknownOrganization):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound) && !errors.As(err, &fetchErr):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &fetchErr):
		log.Warn("Upstream fetch failed", "source", fetchErr.Source, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &integrityErr):
		log.Error("Data integrity error", "model", integrityErr.Model, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		internalError(w, err)
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// internalError logs the error and writes a generic 500 response
func internalError(w http.ResponseWriter, err error) {
	log.Error("Internal Server Error", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
