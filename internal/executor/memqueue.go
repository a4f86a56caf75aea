package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrQueueClosed is returned when enqueueing after shutdown began.
var ErrQueueClosed = errors.New("queue is not accepting trades")

// ErrQueueFull is returned when the queue's capacity is exhausted.
var ErrQueueFull = errors.New("queue is full")

// MemoryQueue is a channel-backed Queue that dispatches entries to a Driver
// from a fixed pool of automation sessions. One MemoryQueue serves exactly
// one game variant.
type MemoryQueue struct {
	driver   Driver
	workers  int
	entries  chan *Entry
	inflight atomic.Int64
	stopped  atomic.Bool
	wg       sync.WaitGroup
	logger   *slog.Logger

	// mu orders sends against the channel close in Stop. Enqueue holds
	// the read side across its send so a racing Stop cannot close the
	// channel underneath it.
	mu sync.RWMutex
}

// NewMemoryQueue creates a queue with the given session count and capacity.
func NewMemoryQueue(driver Driver, workers, capacity int, logger *slog.Logger) *MemoryQueue {
	if workers <= 0 {
		workers = 1
	}
	if capacity <= 0 {
		capacity = 64
	}
	return &MemoryQueue{
		driver:  driver,
		workers: workers,
		entries: make(chan *Entry, capacity),
		logger:  logger,
	}
}

// Start launches the session goroutines. It returns immediately; sessions
// drain the queue until Stop is called.
func (q *MemoryQueue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for e := range q.entries {
				q.process(ctx, e)
			}
		}()
	}
}

// Stop closes intake and waits for in-flight trades to finish.
func (q *MemoryQueue) Stop() {
	q.mu.Lock()
	if q.stopped.Swap(true) {
		q.mu.Unlock()
		return
	}
	close(q.entries)
	q.mu.Unlock()
	q.wg.Wait()
}

// Enqueue adds an entry, rejecting when closed or full.
func (q *MemoryQueue) Enqueue(ctx context.Context, e *Entry) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped.Load() {
		return ErrQueueClosed
	}
	select {
	case q.entries <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Len returns waiting plus in-flight entries.
func (q *MemoryQueue) Len() int {
	return len(q.entries) + int(q.inflight.Load())
}

// ActiveWorkers returns the configured session count.
func (q *MemoryQueue) ActiveWorkers() int {
	return q.workers
}

// Accepting reports whether new entries can still be enqueued.
func (q *MemoryQueue) Accepting() bool {
	return !q.stopped.Load() && len(q.entries) < cap(q.entries)
}

// process runs one entry through the driver, emitting lifecycle callbacks.
func (q *MemoryQueue) process(ctx context.Context, e *Entry) {
	if e.ShouldRun != nil && !e.ShouldRun() {
		q.logger.Info("skipping cancelled trade", "job_id", e.JobID)
		return
	}

	q.inflight.Add(1)
	defer q.inflight.Add(-1)

	e.Notifier.TradeInitializing(e)
	e.Notifier.TradeSearching(e)

	if err := q.driver.PerformTrade(ctx, e); err != nil {
		if ctx.Err() != nil {
			e.Notifier.TradeCancelled(e, "worker shutting down")
			return
		}
		q.logger.Error("trade failed", "job_id", e.JobID, "error", err)
		e.Notifier.TradeFailed(e, err.Error())
		return
	}

	e.Notifier.TradeFinished(e, e.Item)
}
