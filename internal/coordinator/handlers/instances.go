package handlers

import (
	"net/http"

	"tradeplane/pkg/api"
)

// ListInstances handles GET /instances, returning the sibling worker
// processes currently discoverable through the advertisement directory.
func (h *Handlers) ListInstances(w http.ResponseWriter, r *http.Request) {
	instances := h.svc.Instances()
	h.respondJson(w, http.StatusOK, api.ListInstancesResponse{Instances: instances})
}

// Healthz is a liveness probe.
// It returns 200 OK if the server is running.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	h.respondJson(w, http.StatusOK, map[string]string{"status": "healthy"})
}
