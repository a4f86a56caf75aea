package rpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"tradeplane/pkg/api"
)

// Client performs single round-trip exchanges against a worker's routing
// port. Every call opens a short-lived connection bounded by explicit
// connect and read timeouts so one unreachable sibling cannot stall the
// caller.
type Client struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// NewClient creates a client with the recommended 5s timeouts.
func NewClient() *Client {
	return &Client{
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    5 * time.Second,
	}
}

// roundTrip sends one request line and reads one response line.
func (c *Client) roundTrip(addr, line string) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, c.ConnectTimeout)
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.ReadTimeout))

	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("write %s: %w", addr, err)
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read %s: %w", addr, err)
	}
	resp = strings.TrimRight(resp, "\r\n")
	if reason, isErr := isErrorLine(resp); isErr {
		return "", fmt.Errorf("%s: %s", addr, reason)
	}
	return resp, nil
}

// Info requests a process self-description.
func (c *Client) Info(addr string) (api.InstanceInfo, error) {
	resp, err := c.roundTrip(addr, CmdInfo)
	if err != nil {
		return api.InstanceInfo{}, err
	}
	var info api.InstanceInfo
	if err := json.Unmarshal([]byte(resp), &info); err != nil {
		return api.InstanceInfo{}, fmt.Errorf("malformed info reply from %s: %w", addr, err)
	}
	return info, nil
}

// SubmitTrade forwards a trade job to the worker at addr and returns the
// worker's snapshot of the registered job.
func (c *Client) SubmitTrade(addr string, req api.SubmitTradeRequest) (api.TradeSnapshot, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return api.TradeSnapshot{}, err
	}
	resp, err := c.roundTrip(addr, CmdSubmitTrade+":"+string(payload))
	if err != nil {
		return api.TradeSnapshot{}, err
	}
	return unmarshalSnapshot(addr, resp)
}

// GetStatus polls the worker at addr for a job's current snapshot.
func (c *Client) GetStatus(addr, jobID string) (api.TradeSnapshot, error) {
	resp, err := c.roundTrip(addr, CmdGetStatus+":"+jobID)
	if err != nil {
		return api.TradeSnapshot{}, err
	}
	return unmarshalSnapshot(addr, resp)
}

func unmarshalSnapshot(addr, resp string) (api.TradeSnapshot, error) {
	var snap api.TradeSnapshot
	if err := json.Unmarshal([]byte(resp), &snap); err != nil {
		return api.TradeSnapshot{}, fmt.Errorf("malformed snapshot reply from %s: %w", addr, err)
	}
	return snap, nil
}
