package service

import (
	"context"

	"tradeplane/pkg/api"
)

// RPCHandler adapts the service to the routing RPC server. Status polls are
// answered from the local registry only; a worker never re-routes.
type RPCHandler struct {
	Service *Service
}

func (h *RPCHandler) Info() api.InstanceInfo {
	return h.Service.Info()
}

func (h *RPCHandler) SubmitTrade(ctx context.Context, req api.SubmitTradeRequest) (api.TradeSnapshot, error) {
	return h.Service.Submit(ctx, req)
}

func (h *RPCHandler) GetStatus(ctx context.Context, jobID string) (api.TradeSnapshot, error) {
	return h.Service.LocalStatus(jobID)
}
