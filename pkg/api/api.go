// Package api contains shared JSON request/response structs.
// This package is shared between the CLI, the coordinator and the routing RPC.
package api

import "time"

// IdentityDescriptor carries optional trainer identity overrides passed
// through to the generation engine.
type IdentityDescriptor struct {
	TrainerName string `json:"trainer_name,omitempty"`
	TrainerID   int    `json:"trainer_id,omitempty"`
	SecretID    int    `json:"secret_id,omitempty"`
	Language    string `json:"language,omitempty"`
}

// SubmitTradeRequest is the request body for submitting a single trade job.
// JobID is empty for front-end submissions; a routing coordinator fills it in
// so the receiving worker registers the job under the same identifier.
type SubmitTradeRequest struct {
	JobID        string              `json:"job_id,omitempty"`
	OwnerID      string              `json:"owner_id"`
	GameVariant  string              `json:"game_variant"`
	ItemSpec     string              `json:"item_spec"`
	ExchangeCode string              `json:"exchange_code,omitempty"`
	Identity     *IdentityDescriptor `json:"identity,omitempty"`
}

// BatchSubmitRequest submits an ordered list of trade jobs.
// Processing stops at the first failed item.
type BatchSubmitRequest struct {
	Trades []SubmitTradeRequest `json:"trades"`
}

// TradeSnapshot is the wire representation of a trade job's current state.
// It is the response body for submissions and status queries, and the
// payload of SUBMIT_TRADE replies on the routing RPC.
type TradeSnapshot struct {
	JobID                string    `json:"job_id"`
	OwnerID              string    `json:"owner_id"`
	GameVariant          string    `json:"game_variant"`
	ItemSpec             string    `json:"item_spec"`
	ExchangeCode         string    `json:"exchange_code"`
	Status               string    `json:"status"`
	QueuePosition        int       `json:"queue_position"`
	EstimatedWaitMinutes int       `json:"estimated_wait_minutes"`
	Messages             []string  `json:"messages"`
	Error                string    `json:"error,omitempty"`
	SubmittedAt          time.Time `json:"submitted_at"`
	LastUpdatedAt        time.Time `json:"last_updated_at"`
}

// BatchSubmitResponse contains the snapshots produced before the batch
// stopped. On a mid-batch failure the last entry is the failed job and the
// remaining items were never attempted.
type BatchSubmitResponse struct {
	Results []TradeSnapshot `json:"results"`
}

// CancelTradeRequest asks for a queued trade to be cancelled.
// The owner must match the job's owner.
type CancelTradeRequest struct {
	OwnerID string `json:"owner_id"`
}

// ListTradesResponse is the response body for a user's trade history.
type ListTradesResponse struct {
	Trades []TradeSnapshot `json:"trades"`
}

// InstanceInfo is a worker process self-description, returned by the INFO
// command and by the coordinator's instance listing.
type InstanceInfo struct {
	Port        int    `json:"port"`
	GameVariant string `json:"game_variant"`
	Role        string `json:"role"`
}

// ListInstancesResponse is the response body for GET /instances.
type ListInstancesResponse struct {
	Instances []InstanceInfo `json:"instances"`
}

// Stream event types pushed over the live subscription channel.
const (
	StreamEventSnapshot = "snapshot"
	StreamEventMessage  = "message"
)

// StreamEvent is one push on a trade's live subscription channel: a full
// snapshot on every status change, or a single new progress line.
type StreamEvent struct {
	Type  string         `json:"type"`
	Trade *TradeSnapshot `json:"trade,omitempty"`
	Line  string         `json:"line,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
