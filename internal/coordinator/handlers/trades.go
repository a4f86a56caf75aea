package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"tradeplane/internal/service"
	"tradeplane/pkg/api"
)

// SubmitTrade handles POST /trades.
func (h *Handlers) SubmitTrade(w http.ResponseWriter, r *http.Request) {
	var req api.SubmitTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	// Front-end submissions never carry a pre-assigned job ID; only the
	// routing RPC does.
	req.JobID = ""

	snap, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			h.httpError(w, verr.Reason, http.StatusBadRequest)
			return
		}
		h.httpError(w, "Failed to submit trade", http.StatusInternalServerError)
		return
	}
	h.respondJson(w, http.StatusAccepted, snap)
}

// SubmitBatch handles POST /trades/batch. Processing stops at the first
// failed item; the response holds every attempted result.
func (h *Handlers) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req api.BatchSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Trades) == 0 {
		h.httpError(w, "Batch is empty", http.StatusBadRequest)
		return
	}

	results := h.svc.SubmitBatch(r.Context(), req.Trades)
	h.respondJson(w, http.StatusAccepted, api.BatchSubmitResponse{Results: results})
}

// GetTrade handles GET /trades/{id}.
func (h *Handlers) GetTrade(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	snap, err := h.svc.Status(r.Context(), jobID)
	if err != nil {
		h.httpError(w, "Trade not found", http.StatusNotFound)
		return
	}
	h.respondJson(w, http.StatusOK, snap)
}

// CancelTrade handles DELETE /trades/{id}. The owner comes from the request
// body, or the owner_id query parameter for clients that cannot send a body
// with DELETE.
func (h *Handlers) CancelTrade(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	var req api.CancelTradeRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.OwnerID == "" {
		req.OwnerID = r.URL.Query().Get("owner_id")
	}
	if req.OwnerID == "" {
		h.httpError(w, "owner_id is required", http.StatusBadRequest)
		return
	}

	snap, err := h.svc.Cancel(r.Context(), jobID, req.OwnerID)
	if err != nil {
		h.httpError(w, "Trade not found or not cancellable", http.StatusNotFound)
		return
	}
	h.respondJson(w, http.StatusOK, snap)
}

// ListUserTrades handles GET /users/{id}/trades.
func (h *Handlers) ListUserTrades(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("id")
	trades := h.svc.ListByOwner(ownerID)
	h.respondJson(w, http.StatusOK, api.ListTradesResponse{Trades: trades})
}
