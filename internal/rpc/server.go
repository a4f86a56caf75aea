package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"strconv"
	"time"

	"tradeplane/pkg/api"
)

// requestTimeout bounds one request/response exchange on the server side.
const requestTimeout = 5 * time.Second

// Handler answers routing requests on behalf of this process.
type Handler interface {
	// Info returns this process's self-description.
	Info() api.InstanceInfo

	// SubmitTrade registers and processes a forwarded trade job.
	SubmitTrade(ctx context.Context, req api.SubmitTradeRequest) (api.TradeSnapshot, error)

	// GetStatus returns the current snapshot for a job.
	GetStatus(ctx context.Context, jobID string) (api.TradeSnapshot, error)
}

// Server accepts short-lived connections carrying one request line each.
type Server struct {
	handler  Handler
	logger   *slog.Logger
	listener net.Listener
}

// NewServer creates a routing RPC server.
func NewServer(h Handler, logger *slog.Logger) *Server {
	return &Server{handler: h, logger: logger}
}

// Listen binds the server to the given port. Port 0 picks a free port;
// use Port to learn the bound one.
func (s *Server) Listen(port int) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Port returns the bound TCP port. Listen must have succeeded.
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Serve accepts connections until the context is cancelled or the listener
// is closed.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

// Close stops the listener.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// handleConn serves exactly one request line, then closes the connection.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		s.logger.Debug("dropping malformed rpc connection", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	resp := s.dispatch(ctx, line)
	if _, err := conn.Write(append([]byte(resp), '\n')); err != nil {
		s.logger.Debug("failed to write rpc response", "remote", conn.RemoteAddr().String(), "error", err)
	}
}

func (s *Server) dispatch(ctx context.Context, line string) string {
	cmd, payload := parseRequest(line)
	switch cmd {
	case CmdInfo:
		return marshalOrError(s.handler.Info())

	case CmdSubmitTrade:
		var req api.SubmitTradeRequest
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return errorLine("malformed trade payload")
		}
		snap, err := s.handler.SubmitTrade(ctx, req)
		if err != nil {
			return errorLine(err.Error())
		}
		return marshalOrError(snap)

	case CmdGetStatus:
		if payload == "" {
			return errorLine("missing job id")
		}
		snap, err := s.handler.GetStatus(ctx, payload)
		if err != nil {
			return errorLine("not found")
		}
		return marshalOrError(snap)

	default:
		return errorLine("unknown command")
	}
}

func marshalOrError(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return errorLine("internal encoding error")
	}
	return string(b)
}
