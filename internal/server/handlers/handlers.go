// Package handlers implements the ops server's HTTP handlers.
package handlers

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/catalogsync/internal/server/response"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/reconciler"
	"github.com/agentstation/catalogsync/pkg/refresh"
)

// Providers is the part of the catalogsync client the handlers need.
type Providers interface {
	Providers() []string
	Refresh(ctx context.Context, name string) (*reconciler.Result, error)
	Status() []refresh.Status
}

// Handlers holds the dependencies of every handler.
type Handlers struct {
	providers Providers
	logger    *zerolog.Logger
	startTime time.Time
}

// New creates a Handlers.
func New(providers Providers, logger *zerolog.Logger, startTime time.Time) *Handlers {
	return &Handlers{providers: providers, logger: logger, startTime: startTime}
}

// ProviderStatus is the JSON view of one provider's refresh status.
type ProviderStatus struct {
	refresh.Status
	State   string `json:"state"`
	Healthy bool   `json:"healthy"`
}

func view(s refresh.Status) ProviderStatus {
	return ProviderStatus{Status: s, State: s.State.String(), Healthy: s.Healthy()}
}

// HandleHealth handles GET /health.
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleReady handles GET /api/v1/ready. The server is ready once every
// provider is connected to its sink.
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	var pending []string
	for _, s := range h.providers.Status() {
		if s.State == refresh.StateUnconnected {
			pending = append(pending, s.Provider)
		}
	}
	if len(pending) > 0 {
		response.ServiceUnavailable(w, "providers not connected: "+strings.Join(pending, ", "))
		return
	}
	response.OK(w, map[string]any{"status": "ready", "providers": len(h.providers.Providers())})
}

// HandleListProviders handles GET /api/v1/providers.
// @Summary List provider refresh status
// @Tags providers
// @Produce json
// @Success 200 {object} response.Response{data=[]ProviderStatus}
// @Router /providers [get].
func (h *Handlers) HandleListProviders(w http.ResponseWriter, _ *http.Request) {
	statuses := h.providers.Status()
	out := make([]ProviderStatus, len(statuses))
	for i, s := range statuses {
		out[i] = view(s)
	}
	response.OK(w, out)
}

// HandleGetProvider handles GET /api/v1/providers/{name}.
// @Summary Get one provider's refresh status
// @Tags providers
// @Produce json
// @Param name path string true "Provider name, e.g. RDSEntityProvider:east"
// @Success 200 {object} response.Response{data=ProviderStatus}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /providers/{name} [get].
func (h *Handlers) HandleGetProvider(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	for _, s := range h.providers.Status() {
		if s.Provider == name {
			response.OK(w, view(s))
			return
		}
	}
	response.NotFound(w, "Provider not found", name)
}

// HandleRefresh handles POST /api/v1/providers/{name}/refresh. The refresh
// runs synchronously and responds with the cycle result.
// @Summary Refresh one provider now
// @Tags providers
// @Produce json
// @Param name path string true "Provider name"
// @Success 200 {object} response.Response{data=reconciler.Result}
// @Failure 404 {object} response.Response{error=response.Error}
// @Failure 409 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Security ApiKeyAuth
// @Router /providers/{name}/refresh [post].
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !slices.Contains(h.providers.Providers(), name) {
		response.NotFound(w, "Provider not found", name)
		return
	}

	result, err := h.providers.Refresh(r.Context(), name)
	if err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Str(logging.FieldProvider, name).Msg("Manual refresh failed")
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, result)
}
