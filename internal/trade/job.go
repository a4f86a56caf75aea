// Package trade contains the domain model for trade jobs: the job itself,
// its lifecycle state machine, game variants and exchange codes.
package trade

import (
	"time"

	"tradeplane/pkg/api"
)

// Status represents the lifecycle state of a trade job.
type Status string

const (
	StatusQueued       Status = "queued"
	StatusInitializing Status = "initializing"
	StatusSearching    Status = "searching"
	StatusTrading      Status = "trading"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
	StatusFailed       Status = "failed"
)

// transitions lists the forward edges of the status state machine.
// Statuses without an entry are terminal.
var transitions = map[Status][]Status{
	StatusQueued:       {StatusInitializing, StatusSearching, StatusCancelled, StatusFailed},
	StatusInitializing: {StatusSearching, StatusCancelled, StatusFailed},
	StatusSearching:    {StatusTrading, StatusCancelled, StatusFailed},
	StatusTrading:      {StatusCompleted, StatusFailed},
}

// CanTransition reports whether moving from one status to the next is a
// legal forward transition. Terminal statuses accept nothing.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanReach reports whether a status is forward-reachable from another
// through any sequence of legal transitions. A status poll can miss
// intermediate states, so correlating a remote snapshot needs the closure
// of the transition table, not a single edge.
func CanReach(from, to Status) bool {
	if from == to {
		return false
	}
	seen := map[Status]bool{from: true}
	frontier := []Status{from}
	for len(frontier) > 0 {
		s := frontier[0]
		frontier = frontier[1:]
		for _, next := range transitions[s] {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				frontier = append(frontier, next)
			}
		}
	}
	return false
}

// IsTerminal reports whether a status accepts no further transitions.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Job is one user-submitted request to generate and hand over an item
// through an automated game session.
type Job struct {
	ID           string
	OwnerID      string
	Variant      GameVariant
	ItemSpec     string
	ExchangeCode string
	Status       Status

	// Advisory queue estimate, computed at submission time only.
	QueuePosition        int
	EstimatedWaitMinutes int

	// Messages is the append-only progress log. Lines are only ever added.
	Messages []string

	// ErrorMessage is set only when Status is failed.
	ErrorMessage string

	SubmittedAt   time.Time
	LastUpdatedAt time.Time
}

// Transition applies a status change if it is legal, updating the timestamp.
// Illegal transitions (including any update on a terminal status) are
// silently ignored so duplicate or late executor notifications are harmless.
// It reports whether the transition was applied.
func (j *Job) Transition(to Status) bool {
	if !CanTransition(j.Status, to) {
		return false
	}
	j.Status = to
	j.LastUpdatedAt = time.Now().UTC()
	return true
}

// AppendMessage adds one progress line to the job's log.
func (j *Job) AppendMessage(line string) {
	j.Messages = append(j.Messages, line)
	j.LastUpdatedAt = time.Now().UTC()
}

// Snapshot returns a wire copy of the job. The messages slice is copied so
// callers never observe a torn read of the log.
func (j *Job) Snapshot() api.TradeSnapshot {
	msgs := make([]string, len(j.Messages))
	copy(msgs, j.Messages)
	return api.TradeSnapshot{
		JobID:                j.ID,
		OwnerID:              j.OwnerID,
		GameVariant:          string(j.Variant),
		ItemSpec:             j.ItemSpec,
		ExchangeCode:         j.ExchangeCode,
		Status:               string(j.Status),
		QueuePosition:        j.QueuePosition,
		EstimatedWaitMinutes: j.EstimatedWaitMinutes,
		Messages:             msgs,
		Error:                j.ErrorMessage,
		SubmittedAt:          j.SubmittedAt,
		LastUpdatedAt:        j.LastUpdatedAt,
	}
}

// GeneratedItem is the opaque output of the generation engine: a concrete,
// legal item ready to be handed over by the automation executor.
type GeneratedItem struct {
	Species string
	Summary string
	Data    []byte
}

// Identity is the trainer identity descriptor consumed by the generation
// engine when the caller supplies overrides.
type Identity struct {
	TrainerName string
	TrainerID   int
	SecretID    int
	Language    string
}

// IdentityFromAPI converts the wire descriptor, returning nil when no
// override was supplied.
func IdentityFromAPI(d *api.IdentityDescriptor) *Identity {
	if d == nil {
		return nil
	}
	return &Identity{
		TrainerName: d.TrainerName,
		TrainerID:   d.TrainerID,
		SecretID:    d.SecretID,
		Language:    d.Language,
	}
}
