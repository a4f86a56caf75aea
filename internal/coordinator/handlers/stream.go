package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamTrade handles GET /trades/{id}/stream. It upgrades the connection
// and attaches it to the job's live update stream until the client hangs up.
func (h *Handlers) StreamTrade(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if _, err := h.svc.Status(r.Context(), jobID); err != nil {
		h.httpError(w, "Trade not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade stream connection", "job_id", jobID, "error", err)
		return
	}

	h.streamer.Subscribe(jobID, conn)
	defer h.streamer.Unsubscribe(jobID, conn)

	// Drain the connection; the first read error means the client left.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			conn.Close()
			return
		}
	}
}
