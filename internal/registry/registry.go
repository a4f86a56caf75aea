// Package registry provides the in-memory, process-local trade job registry.
// Each worker process owns exactly one registry; there is no shared state
// across processes.
package registry

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"tradeplane/internal/trade"
	"tradeplane/pkg/api"
)

var (
	// ErrDuplicateID is returned when creating a job whose ID is already
	// registered in this process.
	ErrDuplicateID = errors.New("job id already registered")

	// ErrNotFound is returned when no job with the given ID exists.
	ErrNotFound = errors.New("job not found")
)

// entry guards one job. All mutation of the job goes through the entry
// mutex, so concurrent notifications for the same job serialize here.
type entry struct {
	mu  sync.Mutex
	job *trade.Job
}

// Registry is a thread-safe map from job ID to job state. Cross-job scans
// take copy-on-read snapshots and never hold a global lock across entries.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry

	// seq is the per-process trade intake counter. It resets on restart
	// and is never persisted.
	seq atomic.Int64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Create registers a new job. It fails if the ID is already present and
// returns the intake sequence number assigned to the job.
func (r *Registry) Create(job *trade.Job) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[job.ID]; exists {
		return 0, ErrDuplicateID
	}
	r.entries[job.ID] = &entry{job: job}
	return r.seq.Add(1), nil
}

// Sequence returns the number of jobs taken in by this process so far.
func (r *Registry) Sequence() int64 {
	return r.seq.Load()
}

func (r *Registry) lookup(jobID string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[jobID]
	return e, ok
}

// Update applies a mutator to the job under its entry lock. The mutator is
// responsible for honoring transition rules (trade.Job.Transition already
// rejects illegal moves). Returns ErrNotFound for unknown IDs.
func (r *Registry) Update(jobID string, mutate func(*trade.Job)) error {
	e, ok := r.lookup(jobID)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(e.job)
	return nil
}

// Snapshot returns a consistent wire copy of the job.
func (r *Registry) Snapshot(jobID string) (api.TradeSnapshot, error) {
	e, ok := r.lookup(jobID)
	if !ok {
		return api.TradeSnapshot{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.job.Snapshot(), nil
}

// ListByOwner returns the owner's most recent jobs, newest first, capped at
// limit. Entries are snapshotted one at a time; a concurrent update to some
// other job never blocks the scan.
func (r *Registry) ListByOwner(ownerID string, limit int) []api.TradeSnapshot {
	r.mu.RLock()
	candidates := make([]*entry, 0)
	for _, e := range r.entries {
		candidates = append(candidates, e)
	}
	r.mu.RUnlock()

	snaps := make([]api.TradeSnapshot, 0)
	for _, e := range candidates {
		e.mu.Lock()
		if e.job.OwnerID == ownerID {
			snaps = append(snaps, e.job.Snapshot())
		}
		e.mu.Unlock()
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].SubmittedAt.After(snaps[j].SubmittedAt)
	})
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps
}
