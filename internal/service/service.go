// Package service implements the top-level trade submission entry point:
// intake, coordinator routing, local processing, status, history, batch
// submission and cancellation.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"tradeplane/internal/config"
	"tradeplane/internal/executor"
	"tradeplane/internal/notifier"
	"tradeplane/internal/queue"
	"tradeplane/internal/registry"
	"tradeplane/internal/trade"
	"tradeplane/pkg/api"
)

// historyLimit caps a user's trade history listing.
const historyLimit = 20

// VariantRuntime carries the statically typed handles for one locally
// served game variant: its generation engine and its executor queue.
type VariantRuntime struct {
	Variant trade.GameVariant
	Engine  executor.Engine
	Queue   *queue.Accessor
}

// Locator resolves which sibling instance serves a variant. The filesystem
// instance directory satisfies this.
type Locator interface {
	ListInstances() []api.InstanceInfo
	FindVariant(v trade.GameVariant) (api.InstanceInfo, bool)
}

// Router forwards trade jobs and status polls to sibling workers. The
// routing RPC client satisfies this.
type Router interface {
	SubmitTrade(addr string, req api.SubmitTradeRequest) (api.TradeSnapshot, error)
	GetStatus(addr, jobID string) (api.TradeSnapshot, error)
}

// Params collects the service's dependencies.
type Params struct {
	Role      config.Role
	Port      int
	Registry  *registry.Registry
	Notifier  executor.Notifier
	Publisher notifier.Publisher
	Locator   Locator
	Router    Router
	Runtimes  map[trade.GameVariant]*VariantRuntime
	Logger    *slog.Logger
}

// Service is the job submission entry point for one process.
type Service struct {
	role      config.Role
	port      int
	registry  *registry.Registry
	notifier  executor.Notifier
	publisher notifier.Publisher
	locator   Locator
	router    Router
	runtimes  map[trade.GameVariant]*VariantRuntime
	logger    *slog.Logger

	// routes remembers, per job ID, which worker address accepted the
	// forwarded job so later status polls skip discovery.
	routes sync.Map
}

// New creates the service.
func New(p Params) *Service {
	return &Service{
		role:      p.Role,
		port:      p.Port,
		registry:  p.Registry,
		notifier:  p.Notifier,
		publisher: p.Publisher,
		locator:   p.Locator,
		router:    p.Router,
		runtimes:  p.Runtimes,
		logger:    p.Logger,
	}
}

// SetPort records the bound routing RPC port once the listener is up.
// Call before serving requests.
func (s *Service) SetPort(port int) {
	s.port = port
}

// Info returns this process's self-description for the INFO command.
func (s *Service) Info() api.InstanceInfo {
	info := api.InstanceInfo{Port: s.port, Role: string(s.role)}
	for v := range s.runtimes {
		info.GameVariant = string(v)
		break
	}
	return info
}

// Instances lists the sibling processes currently discoverable.
func (s *Service) Instances() []api.InstanceInfo {
	return s.locator.ListInstances()
}

// Submit takes in one trade job. The job is registered as queued before any
// routing or generation happens, so status queries resolve even when a later
// step fails. Generation, routing and queue failures degrade to a failed job
// snapshot; only validation problems are returned as errors.
func (s *Service) Submit(ctx context.Context, req api.SubmitTradeRequest) (api.TradeSnapshot, error) {
	ctx, span := otel.Tracer("trade-service").Start(ctx, "submit_trade")
	defer span.End()

	variant, code, err := s.validate(req)
	if err != nil {
		return api.TradeSnapshot{}, err
	}

	jobID := req.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	span.SetAttributes(
		attribute.String("trade.job_id", jobID),
		attribute.String("trade.variant", string(variant)),
	)

	now := time.Now().UTC()
	job := &trade.Job{
		ID:            jobID,
		OwnerID:       req.OwnerID,
		Variant:       variant,
		ItemSpec:      req.ItemSpec,
		ExchangeCode:  code,
		Status:        trade.StatusQueued,
		SubmittedAt:   now,
		LastUpdatedAt: now,
	}
	seq, err := s.registry.Create(job)
	if err != nil {
		return api.TradeSnapshot{}, &ValidationError{Reason: fmt.Sprintf("job %s already registered", jobID)}
	}
	tradesSubmittedTotal.Inc()
	s.logger.Info("trade registered", "job_id", jobID, "seq", seq, "owner_id", req.OwnerID, "variant", variant)

	rt, local := s.runtimes[variant]
	if !local {
		if s.role == config.RoleCoordinator {
			return s.route(jobID, variant, req, code)
		}
		// A worker was handed a variant it does not serve; this is a
		// routing mistake upstream, reported on the job.
		s.failJob(jobID, "routing", fmt.Sprintf("this worker does not serve variant %s", variant))
		return s.snapshot(jobID)
	}
	return s.processLocal(ctx, rt, job, trade.IdentityFromAPI(req.Identity))
}

// SubmitBatch submits an ordered batch, stopping at the first failure. The
// returned snapshots cover every attempted item; unattempted items have no
// entry.
func (s *Service) SubmitBatch(ctx context.Context, reqs []api.SubmitTradeRequest) []api.TradeSnapshot {
	results := make([]api.TradeSnapshot, 0, len(reqs))
	for _, req := range reqs {
		snap, err := s.Submit(ctx, req)
		if err != nil {
			// Rejected before a job existed; carried as a failed
			// placeholder so callers see why the batch stopped.
			results = append(results, api.TradeSnapshot{
				OwnerID:     req.OwnerID,
				GameVariant: req.GameVariant,
				ItemSpec:    req.ItemSpec,
				Status:      string(trade.StatusFailed),
				Error:       err.Error(),
			})
			return results
		}
		results = append(results, snap)
		if snap.Status == string(trade.StatusFailed) {
			return results
		}
	}
	return results
}

// Status returns the current snapshot for a job. On a coordinator, jobs that
// were routed are polled directly at the worker that accepted them; the
// merged result is served from the local registry, so an unreachable worker
// still yields the last known state.
func (s *Service) Status(ctx context.Context, jobID string) (api.TradeSnapshot, error) {
	if addr, ok := s.routes.Load(jobID); ok {
		remote, err := s.router.GetStatus(addr.(string), jobID)
		if err != nil {
			s.logger.Warn("status poll failed", "job_id", jobID, "addr", addr, "error", err)
		} else {
			s.mergeRemote(jobID, remote)
		}
	}
	snap, err := s.registry.Snapshot(jobID)
	if err != nil {
		return api.TradeSnapshot{}, ErrNotFound
	}
	return snap, nil
}

// LocalStatus answers a routing RPC status poll from this process's own
// registry only.
func (s *Service) LocalStatus(jobID string) (api.TradeSnapshot, error) {
	snap, err := s.registry.Snapshot(jobID)
	if err != nil {
		return api.TradeSnapshot{}, ErrNotFound
	}
	return snap, nil
}

// ListByOwner returns the owner's most recent trades, newest first.
func (s *Service) ListByOwner(ownerID string) []api.TradeSnapshot {
	return s.registry.ListByOwner(ownerID, historyLimit)
}

// Cancel requests cancellation of a queued or searching trade owned by the
// given user. It is idempotent; any job that is unknown, owned by someone
// else or no longer cancellable yields ErrNotFound without distinguishing
// the cases. In-flight automation work is never interrupted.
func (s *Service) Cancel(ctx context.Context, jobID, ownerID string) (api.TradeSnapshot, error) {
	cancelled := false
	err := s.registry.Update(jobID, func(j *trade.Job) {
		if j.OwnerID != ownerID {
			return
		}
		if j.Status != trade.StatusQueued && j.Status != trade.StatusSearching {
			return
		}
		if j.Transition(trade.StatusCancelled) {
			j.AppendMessage("Trade cancelled by request.")
			cancelled = true
		}
	})
	if err != nil || !cancelled {
		return api.TradeSnapshot{}, ErrNotFound
	}
	snap, err := s.registry.Snapshot(jobID)
	if err != nil {
		return api.TradeSnapshot{}, ErrNotFound
	}
	s.publisher.PublishSnapshot(jobID, snap)
	s.publisher.PublishLine(jobID, "Trade cancelled by request.")
	s.logger.Info("trade cancelled", "job_id", jobID, "owner_id", ownerID)
	return snap, nil
}

// validate rejects bad submissions before a job ID is even created.
func (s *Service) validate(req api.SubmitTradeRequest) (trade.GameVariant, string, error) {
	if req.OwnerID == "" {
		return "", "", &ValidationError{Reason: "owner_id is required"}
	}
	if req.ItemSpec == "" {
		return "", "", &ValidationError{Reason: "item_spec is required"}
	}
	variant, ok := trade.NormalizeVariant(req.GameVariant)
	if !ok {
		return "", "", &ValidationError{Reason: fmt.Sprintf("unsupported game variant %q", req.GameVariant)}
	}
	code := req.ExchangeCode
	if code == "" {
		code = trade.NewExchangeCode()
	} else if !trade.ValidExchangeCode(code) {
		return "", "", &ValidationError{Reason: "exchange_code must be exactly 8 digits"}
	}
	return variant, code, nil
}

// route forwards the job to the worker advertising the variant, propagating
// the locally assigned job ID so both registries track the same identifier.
func (s *Service) route(jobID string, variant trade.GameVariant, req api.SubmitTradeRequest, code string) (api.TradeSnapshot, error) {
	inst, ok := s.locator.FindVariant(variant)
	if !ok {
		s.failJob(jobID, "routing", fmt.Sprintf("no worker advertises variant %s", variant))
		return s.snapshot(jobID)
	}
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(inst.Port))

	fwd := req
	fwd.JobID = jobID
	fwd.ExchangeCode = code
	remote, err := s.router.SubmitTrade(addr, fwd)
	if err != nil {
		s.failJob(jobID, "routing", fmt.Sprintf("worker for variant %s at %s: %v", variant, addr, err))
		return s.snapshot(jobID)
	}

	s.routes.Store(jobID, addr)
	tradesRoutedTotal.Inc()
	s.logger.Info("trade routed", "job_id", jobID, "variant", variant, "addr", addr)
	s.mergeRemote(jobID, remote)
	return s.snapshot(jobID)
}

// processLocal runs generation and enqueueing for a variant this process
// serves itself.
func (s *Service) processLocal(ctx context.Context, rt *VariantRuntime, job *trade.Job, identity *trade.Identity) (api.TradeSnapshot, error) {
	item, err := s.generate(ctx, rt, job.ItemSpec, identity)
	if err != nil {
		s.failJob(job.ID, "generation", fmt.Sprintf("could not generate item: %v", err))
		return s.snapshot(job.ID)
	}

	entry := &executor.Entry{
		JobID:        job.ID,
		OwnerID:      job.OwnerID,
		ExchangeCode: job.ExchangeCode,
		Item:         item,
		Notifier:     s.notifier,
		ShouldRun: func() bool {
			snap, err := s.registry.Snapshot(job.ID)
			return err == nil && snap.Status == string(trade.StatusQueued)
		},
	}

	if !rt.Queue.Accepting() {
		s.failJob(job.ID, "queue", "queue is not accepting trades")
		return s.snapshot(job.ID)
	}
	position := rt.Queue.Position()
	wait := rt.Queue.EstimatedWaitMinutes(position)
	if err := rt.Queue.Enqueue(ctx, entry); err != nil {
		s.failJob(job.ID, "queue", fmt.Sprintf("queue rejected trade: %v", err))
		return s.snapshot(job.ID)
	}
	queueDepth.WithLabelValues(string(rt.Variant)).Set(float64(position))

	s.registry.Update(job.ID, func(j *trade.Job) {
		j.QueuePosition = position
		j.EstimatedWaitMinutes = wait
		j.AppendMessage("Trade submitted to the queue.")
		j.AppendMessage(fmt.Sprintf("Your exchange code is %s.", j.ExchangeCode))
		j.AppendMessage(fmt.Sprintf("You are position %d in line. Estimated wait: %d minutes.", position, wait))
	})
	return s.snapshot(job.ID)
}

// generate calls the external engine, converting a panic into a failure so
// a misbehaving engine never crosses the service boundary.
func (s *Service) generate(ctx context.Context, rt *VariantRuntime, spec string, identity *trade.Identity) (item *trade.GeneratedItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generation engine panicked: %v", r)
		}
	}()
	return rt.Engine.Generate(ctx, spec, identity)
}

// failJob transitions a job to failed with a descriptive message and
// publishes the result. Safe to call for jobs already terminal.
func (s *Service) failJob(jobID, reason, message string) {
	s.registry.Update(jobID, func(j *trade.Job) {
		if j.Transition(trade.StatusFailed) {
			j.ErrorMessage = message
			j.AppendMessage(fmt.Sprintf("Trade failed: %s", message))
		}
	})
	tradesFailedTotal.WithLabelValues(reason).Inc()
	s.logger.Warn("trade failed", "job_id", jobID, "reason", reason, "error", message)
	if snap, err := s.registry.Snapshot(jobID); err == nil {
		s.publisher.PublishSnapshot(jobID, snap)
	}
}

// mergeRemote folds a worker's snapshot into the coordinator's local entry.
// The worker's status is authoritative: any status forward-reachable from
// the local one is accepted, even when the poll skipped intermediate
// states. Backward moves are ignored and the message log only extends, so
// a stale or duplicated reply cannot rewind the local view.
func (s *Service) mergeRemote(jobID string, remote api.TradeSnapshot) {
	s.registry.Update(jobID, func(j *trade.Job) {
		remoteStatus := trade.Status(remote.Status)
		if trade.CanReach(j.Status, remoteStatus) {
			j.Status = remoteStatus
			j.LastUpdatedAt = time.Now().UTC()
		}
		if remote.Error != "" && j.ErrorMessage == "" {
			j.ErrorMessage = remote.Error
		}
		if remote.ExchangeCode != "" {
			j.ExchangeCode = remote.ExchangeCode
		}
		if remote.QueuePosition > 0 {
			j.QueuePosition = remote.QueuePosition
			j.EstimatedWaitMinutes = remote.EstimatedWaitMinutes
		}
		if len(remote.Messages) > len(j.Messages) {
			for _, line := range remote.Messages[len(j.Messages):] {
				j.AppendMessage(line)
			}
		}
	})
}

func (s *Service) snapshot(jobID string) (api.TradeSnapshot, error) {
	snap, err := s.registry.Snapshot(jobID)
	if err != nil {
		return api.TradeSnapshot{}, ErrNotFound
	}
	return snap, nil
}
