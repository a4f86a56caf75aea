// Package handlers contains HTTP handlers for the coordinator API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"tradeplane/pkg/api"
)

// TradeService is the submission surface the handlers depend on.
type TradeService interface {
	Submit(ctx context.Context, req api.SubmitTradeRequest) (api.TradeSnapshot, error)
	SubmitBatch(ctx context.Context, reqs []api.SubmitTradeRequest) []api.TradeSnapshot
	Status(ctx context.Context, jobID string) (api.TradeSnapshot, error)
	ListByOwner(ownerID string) []api.TradeSnapshot
	Cancel(ctx context.Context, jobID, ownerID string) (api.TradeSnapshot, error)
	Instances() []api.InstanceInfo
}

// Subscriber attaches websocket connections to a job's update stream.
type Subscriber interface {
	Subscribe(jobID string, conn *websocket.Conn)
	Unsubscribe(jobID string, conn *websocket.Conn)
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	svc      TradeService
	streamer Subscriber
	logger   *slog.Logger
}

// New creates a new Handlers instance.
func New(svc TradeService, streamer Subscriber, logger *slog.Logger) *Handlers {
	return &Handlers{svc: svc, streamer: streamer, logger: logger}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}
