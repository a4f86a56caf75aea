package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tradeplane/pkg/api"
)

// TradeClient handles API calls to the tradeplane coordinator.
type TradeClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewTradeClient creates a new client with the given base URL.
func NewTradeClient(baseURL string) *TradeClient {
	return &TradeClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// do performs one JSON round-trip and decodes the response into out.
func (c *TradeClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr api.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// SubmitTrade sends POST /trades.
func (c *TradeClient) SubmitTrade(req api.SubmitTradeRequest) (*api.TradeSnapshot, error) {
	var snap api.TradeSnapshot
	if err := c.do(http.MethodPost, "/trades", req, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetTrade sends GET /trades/{id}.
func (c *TradeClient) GetTrade(jobID string) (*api.TradeSnapshot, error) {
	var snap api.TradeSnapshot
	if err := c.do(http.MethodGet, "/trades/"+jobID, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// CancelTrade sends DELETE /trades/{id}.
func (c *TradeClient) CancelTrade(jobID, ownerID string) (*api.TradeSnapshot, error) {
	var snap api.TradeSnapshot
	if err := c.do(http.MethodDelete, "/trades/"+jobID, api.CancelTradeRequest{OwnerID: ownerID}, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListTrades sends GET /users/{id}/trades.
func (c *TradeClient) ListTrades(ownerID string) ([]api.TradeSnapshot, error) {
	var resp api.ListTradesResponse
	if err := c.do(http.MethodGet, "/users/"+ownerID+"/trades", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Trades, nil
}

// ListInstances sends GET /instances.
func (c *TradeClient) ListInstances() ([]api.InstanceInfo, error) {
	var resp api.ListInstancesResponse
	if err := c.do(http.MethodGet, "/instances", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Instances, nil
}
