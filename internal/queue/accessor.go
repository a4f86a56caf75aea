// Package queue provides a read/mutate view over a variant's automation
// executor queue: enqueueing entries and computing advisory queue position
// and estimated wait.
package queue

import (
	"context"

	"tradeplane/internal/executor"
)

// minutesPerTrade is the rough duration of one automated hand-off, used
// only for the advisory wait estimate shown at submission time.
const minutesPerTrade = 2

// Accessor wraps one variant's executor queue.
type Accessor struct {
	q executor.Queue
}

// New wraps an executor queue.
func New(q executor.Queue) *Accessor {
	return &Accessor{q: q}
}

// Enqueue submits an entry to the underlying queue.
func (a *Accessor) Enqueue(ctx context.Context, e *executor.Entry) error {
	return a.q.Enqueue(ctx, e)
}

// Accepting reports whether the queue takes new entries.
func (a *Accessor) Accepting() bool {
	return a.q.Accepting()
}

// Position returns the 1-based position a newly enqueued entry would take.
func (a *Accessor) Position() int {
	return a.q.Len() + 1
}

// EstimatedWaitMinutes estimates how long an entry at the given position
// waits before its session starts, spread across the active sessions.
func (a *Accessor) EstimatedWaitMinutes(position int) int {
	workers := a.q.ActiveWorkers()
	if workers <= 0 {
		workers = 1
	}
	ahead := position - 1
	return (ahead / workers) * minutesPerTrade
}
