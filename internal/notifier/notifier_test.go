package notifier

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"tradeplane/internal/executor"
	"tradeplane/internal/registry"
	"tradeplane/internal/trade"
	"tradeplane/pkg/api"
)

type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []api.TradeSnapshot
	lines     []string
}

func (p *recordingPublisher) PublishSnapshot(_ string, snap api.TradeSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snap)
}

func (p *recordingPublisher) PublishLine(_ string, line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, line)
}

func (p *recordingPublisher) lastSnapshot(t *testing.T) api.TradeSnapshot {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.snapshots) == 0 {
		t.Fatal("no snapshots published")
	}
	return p.snapshots[len(p.snapshots)-1]
}

func newFixture(t *testing.T) (*Notifier, *registry.Registry, *recordingPublisher) {
	t.Helper()
	reg := registry.New()
	pub := &recordingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(reg, pub, logger), reg, pub
}

func createJob(t *testing.T, reg *registry.Registry, id string) {
	t.Helper()
	j := &trade.Job{
		ID:          id,
		OwnerID:     "u1",
		Variant:     trade.VariantSWSH,
		Status:      trade.StatusQueued,
		SubmittedAt: time.Now().UTC(),
	}
	if _, err := reg.Create(j); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestLifecycleCallbacksAdvanceStatus(t *testing.T) {
	n, reg, pub := newFixture(t)
	createJob(t, reg, "j1")
	e := &executor.Entry{JobID: "j1", ExchangeCode: "12345678"}

	n.TradeInitializing(e)
	if snap := pub.lastSnapshot(t); snap.Status != string(trade.StatusInitializing) {
		t.Fatalf("status after initializing = %s", snap.Status)
	}

	n.TradeSearching(e)
	snap := pub.lastSnapshot(t)
	if snap.Status != string(trade.StatusSearching) {
		t.Fatalf("status after searching = %s", snap.Status)
	}
	last := snap.Messages[len(snap.Messages)-1]
	if want := "Searching for you in-game. Enter exchange code 12345678."; last != want {
		t.Errorf("searching line = %q, want %q", last, want)
	}

	n.TradeFinished(e, &trade.GeneratedItem{Species: "Mewtwo"})
	snap = pub.lastSnapshot(t)
	if snap.Status != string(trade.StatusCompleted) {
		t.Fatalf("status after finished = %s", snap.Status)
	}
	last = snap.Messages[len(snap.Messages)-1]
	if want := "Trade completed. Enjoy your Mewtwo!"; last != want {
		t.Errorf("completion line = %q, want %q", last, want)
	}
}

func TestTradeFailedRecordsReason(t *testing.T) {
	n, reg, pub := newFixture(t)
	createJob(t, reg, "j1")
	e := &executor.Entry{JobID: "j1"}

	n.TradeFailed(e, "connection dropped")

	snap := pub.lastSnapshot(t)
	if snap.Status != string(trade.StatusFailed) {
		t.Fatalf("status = %s, want failed", snap.Status)
	}
	if snap.Error != "connection dropped" {
		t.Errorf("error = %q, want %q", snap.Error, "connection dropped")
	}
}

func TestLateCallbackOnTerminalJobKeepsStatus(t *testing.T) {
	n, reg, pub := newFixture(t)
	createJob(t, reg, "j1")
	e := &executor.Entry{JobID: "j1"}

	n.TradeCancelled(e, "user asked")
	published := len(pub.snapshots)
	n.TradeFailed(e, "late executor report")

	snap := pub.lastSnapshot(t)
	if snap.Status != string(trade.StatusCancelled) {
		t.Errorf("terminal status overwritten: %s", snap.Status)
	}
	if snap.Error != "" {
		t.Errorf("error set on job that did not fail: %q", snap.Error)
	}
	// A rejected callback appends nothing and publishes nothing.
	last := snap.Messages[len(snap.Messages)-1]
	if want := "Trade cancelled: user asked"; last != want {
		t.Errorf("last line = %q, want %q", last, want)
	}
	if len(pub.snapshots) != published {
		t.Errorf("rejected callback published %d extra snapshots", len(pub.snapshots)-published)
	}

	// Free-form lines still land on terminal jobs.
	n.SendNotification(e, "session torn down")
	snap = pub.lastSnapshot(t)
	if got := snap.Messages[len(snap.Messages)-1]; got != "session torn down" {
		t.Errorf("free-form line = %q", got)
	}
}

func TestUnknownJobIsDropped(t *testing.T) {
	n, _, pub := newFixture(t)

	n.SendNotification(&executor.Entry{JobID: "ghost"}, "hello")

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.snapshots) != 0 || len(pub.lines) != 0 {
		t.Error("callback for unknown job should publish nothing")
	}
}

func TestProgressLinesAccumulate(t *testing.T) {
	n, reg, pub := newFixture(t)
	createJob(t, reg, "j1")
	e := &executor.Entry{JobID: "j1", ExchangeCode: "87654321"}

	n.TradeInitializing(e)
	n.TradeSearching(e)
	n.TradeProgress(e, 1, 2)
	n.TradeProgress(e, 2, 2)

	snap := pub.lastSnapshot(t)
	if snap.Status != string(trade.StatusTrading) {
		t.Fatalf("status = %s, want trading", snap.Status)
	}
	if len(snap.Messages) != 4 {
		t.Fatalf("log has %d lines, want 4: %v", len(snap.Messages), snap.Messages)
	}
	if snap.Messages[3] != "Trade progress: 2/2." {
		t.Errorf("last line = %q", snap.Messages[3])
	}
}
