package triage

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kbristol/sift/internal/approval"
	"github.com/kbristol/sift/pkg/handlers"
	"github.com/kbristol/sift/pkg/pagination"
	"github.com/kbristol/sift/pkg/routes"
)

// Handler provides HTTP endpoints for triage operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "triage"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for triage endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/instances",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/resume", Handler: h.Resume},
			{Method: "POST", Pattern: "/process", Handler: h.Process},
		},
	}
}

// List returns a paginated list of instances, optionally filtered by the
// stage query parameter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	stage := r.URL.Query().Get("stage")

	result, err := h.sys.List(r.Context(), page, stage)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single instance by its id path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	inst, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, inst)
}

// Resume accepts a decision body and delivers it to a suspended instance.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	var decision approval.Decision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	inst, err := h.sys.Resume(r.Context(), r.PathValue("id"), decision)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, inst)
}

// Process triggers an unread-mailbox processing run.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.ProcessUnread(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
