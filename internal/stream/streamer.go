// Package stream fans trade updates out to live websocket subscribers.
package stream

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tradeplane/pkg/api"
)

// writeTimeout bounds one subscriber write so a stalled client cannot wedge
// a broadcast forever.
const writeTimeout = 5 * time.Second

// Streamer manages per-job subscriber lists. Publishing with no subscribers
// is a no-op; a failed write drops only that subscriber.
type Streamer struct {
	// mu guards the subscriber map only. writeMu serializes websocket
	// writes, which do not support concurrent writers, without blocking
	// Subscribe and Unsubscribe behind a slow client.
	mu          sync.RWMutex
	writeMu     sync.Mutex
	subscribers map[string][]*websocket.Conn
	logger      *slog.Logger
}

// New creates a Streamer.
func New(logger *slog.Logger) *Streamer {
	return &Streamer{
		subscribers: make(map[string][]*websocket.Conn),
		logger:      logger,
	}
}

// Subscribe adds a connection to a job's update stream.
func (s *Streamer) Subscribe(jobID string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[jobID] = append(s.subscribers[jobID], conn)
}

// Unsubscribe removes a connection from a job's update stream.
func (s *Streamer) Unsubscribe(jobID string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.subscribers[jobID]
	for i, c := range subs {
		if c == conn {
			s.subscribers[jobID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(s.subscribers[jobID]) == 0 {
		delete(s.subscribers, jobID)
	}
}

// PublishSnapshot pushes a full trade snapshot to every subscriber of the job.
func (s *Streamer) PublishSnapshot(jobID string, snap api.TradeSnapshot) {
	s.broadcast(jobID, api.StreamEvent{Type: api.StreamEventSnapshot, Trade: &snap})
}

// PublishLine pushes one new progress line to every subscriber of the job.
func (s *Streamer) PublishLine(jobID, line string) {
	s.broadcast(jobID, api.StreamEvent{Type: api.StreamEventMessage, Line: line})
}

// broadcast writes one event to every subscriber of the job. The subscriber
// list is snapshotted under the map lock; the writes themselves happen under
// writeMu so a stalled client delays other publishers but never Subscribe or
// Unsubscribe. A write racing an Unsubscribe may hit a closed connection,
// which just errors and lands the connection on the dead list.
func (s *Streamer) broadcast(jobID string, event api.StreamEvent) {
	s.mu.RLock()
	subs := make([]*websocket.Conn, len(s.subscribers[jobID]))
	copy(subs, s.subscribers[jobID])
	s.mu.RUnlock()
	if len(subs) == 0 {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to encode stream event", "job_id", jobID, "error", err)
		return
	}

	var dead []*websocket.Conn
	s.writeMu.Lock()
	for _, conn := range subs {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			dead = append(dead, conn)
		}
	}
	s.writeMu.Unlock()

	for _, conn := range dead {
		s.logger.Debug("dropping stream subscriber", "job_id", jobID, "error", "write failed")
		conn.Close()
		s.Unsubscribe(jobID, conn)
	}
}

// Close closes every subscriber of a job and forgets the job.
func (s *Streamer) Close(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.subscribers[jobID] {
		conn.Close()
	}
	delete(s.subscribers, jobID)
}
