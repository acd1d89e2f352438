package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/edvin/flowgate/internal/api/request"
	"github.com/edvin/flowgate/internal/api/response"
	"github.com/edvin/flowgate/internal/core"
	"github.com/edvin/flowgate/internal/n8n"
)

// Workflow handles trigger execution, template listing and backend
// health for the /workflow routes.
type Workflow struct {
	execution  *core.ExecutionService
	templates  *core.TemplateService
	backend    core.Backend
	backendURL string
	envPrefix  string
}

func NewWorkflow(execution *core.ExecutionService, templates *core.TemplateService, backend core.Backend, backendURL, envPrefix string) *Workflow {
	return &Workflow{
		execution:  execution,
		templates:  templates,
		backend:    backend,
		backendURL: backendURL,
		envPrefix:  envPrefix,
	}
}

// Execute godoc
//
//	@Summary		Trigger the workflow for a workspace/segment
//	@Description	Routes the JSON payload to the workflow instance at the canonical webhook path, provisioning one from a template on first use.
//	@Tags			Workflows
//	@Param			workspace path string true "Workspace"
//	@Param			segment path string true "Segment"
//	@Param			body body object true "Payload passed through to the workflow"
//	@Success		200 {object} response.Envelope
//	@Failure		400 {object} response.Envelope
//	@Failure		422 {object} response.Envelope
//	@Failure		502 {object} response.Envelope
//	@Router			/workflow/{workspace}/{segment} [post]
func (h *Workflow) Execute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	key, err := request.TriggerKey(r)
	if err != nil {
		response.WriteFailure(w, http.StatusBadRequest, start, err)
		return
	}
	payload, err := request.Payload(r)
	if err != nil {
		response.WriteFailure(w, http.StatusBadRequest, start, err)
		return
	}

	result, err := h.execution.Execute(r.Context(), key, payload, request.BearerToken(r))
	if err != nil {
		response.WriteFailure(w, statusFor(err), start, err)
		return
	}

	response.WriteResult(w, http.StatusOK, result.StartedAt, result.Data)
}

// ListTemplates godoc
//
//	@Summary		List template workflows
//	@Tags			Workflows
//	@Success		200 {array} model.TemplateInfo
//	@Failure		502 {object} response.ErrorResponse
//	@Router			/workflow/templates [get]
func (h *Workflow) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		response.WriteError(w, statusFor(err), err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, templates)
}

// Health godoc
//
//	@Summary		Check automation backend reachability
//	@Tags			Workflows
//	@Success		200 {object} map[string]string
//	@Failure		503 {object} map[string]string
//	@Router			/workflow/health [get]
func (h *Workflow) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := map[string]string{
		"status":     "healthy",
		"service":    "workflow-gateway",
		"base_url":   h.backendURL,
		"env_prefix": h.envPrefix,
	}
	if err := h.backend.Ping(ctx); err != nil {
		status["status"] = "unhealthy"
		status["error"] = err.Error()
		response.WriteJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	response.WriteJSON(w, http.StatusOK, status)
}

// statusFor maps the core/backend error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrTemplateMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, n8n.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, n8n.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, n8n.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
