package stream

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tradeplane/pkg/api"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialPair returns a connected client/server websocket pair with the server
// side registered on the streamer.
func dialPair(t *testing.T, s *Streamer, jobID string) *websocket.Conn {
	t.Helper()

	serverConn := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverConn <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case conn := <-serverConn:
		s.Subscribe(jobID, conn)
		t.Cleanup(func() { conn.Close() })
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted the websocket")
	}
	return client
}

func readEvent(t *testing.T, conn *websocket.Conn) api.StreamEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var event api.StreamEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return event
}

func newStreamer() *Streamer {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublishSnapshotReachesSubscriber(t *testing.T) {
	s := newStreamer()
	client := dialPair(t, s, "j1")

	s.PublishSnapshot("j1", api.TradeSnapshot{JobID: "j1", Status: "searching"})

	event := readEvent(t, client)
	if event.Type != api.StreamEventSnapshot {
		t.Fatalf("event type = %q", event.Type)
	}
	if event.Trade == nil || event.Trade.Status != "searching" {
		t.Errorf("unexpected snapshot event: %+v", event)
	}
}

func TestPublishLineReachesAllSubscribers(t *testing.T) {
	s := newStreamer()
	a := dialPair(t, s, "j1")
	b := dialPair(t, s, "j1")

	s.PublishLine("j1", "Searching for you in-game.")

	for _, client := range []*websocket.Conn{a, b} {
		event := readEvent(t, client)
		if event.Type != api.StreamEventMessage || event.Line != "Searching for you in-game." {
			t.Errorf("unexpected event: %+v", event)
		}
	}
}

func TestPublishToOtherJobIsNotDelivered(t *testing.T) {
	s := newStreamer()
	client := dialPair(t, s, "j1")

	s.PublishLine("j2", "not for you")
	s.PublishLine("j1", "for you")

	event := readEvent(t, client)
	if event.Line != "for you" {
		t.Errorf("line = %q, want %q", event.Line, "for you")
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	s := newStreamer()
	// Must not panic or block.
	s.PublishSnapshot("ghost", api.TradeSnapshot{JobID: "ghost"})
	s.PublishLine("ghost", "hello")
}

func TestSubscribeNotBlockedByStalledBroadcast(t *testing.T) {
	s := newStreamer()
	client := dialPair(t, s, "j1")

	// Hold the write lock as a broadcast stuck on a slow client would.
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.Subscribe("j2", nil)
		s.Unsubscribe("j2", nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe blocked behind an in-flight broadcast")
	}
	_ = client
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	s := newStreamer()
	client := dialPair(t, s, "j1")

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.PublishLine("j1", "update")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			conn := &websocket.Conn{}
			s.Subscribe("j2", conn)
			s.Unsubscribe("j2", conn)
		}
	}()
	go func() {
		// Drain so the client's kernel buffer never fills.
		for {
			select {
			case <-stop:
				return
			default:
			}
			client.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	wg.Wait()
	close(stop)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := newStreamer()
	client := dialPair(t, s, "j1")

	// Find the server-side conn by publishing once, then unsubscribing it.
	s.PublishLine("j1", "first")
	readEvent(t, client)

	s.mu.Lock()
	conn := s.subscribers["j1"][0]
	s.mu.Unlock()
	s.Unsubscribe("j1", conn)

	s.PublishLine("j1", "second")
	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := client.ReadMessage(); err == nil {
		t.Error("unsubscribed client still received an event")
	}
}
