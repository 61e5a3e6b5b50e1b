package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ironsheep/dinox-mcp/internal/detection"
	"github.com/ironsheep/dinox-mcp/internal/dinox"
	"github.com/ironsheep/dinox-mcp/internal/visualize"
)

// Server identity reported from initialize.
const (
	ServerName      = "dinox-mcp-server"
	ProtocolVersion = "2024-11-05"
)

// Version is reported in serverInfo. The binary overrides it at startup.
var Version = "0.1.0"

// maxMessageSize bounds one line of stdio input.
const maxMessageSize = 16 * 1024 * 1024

// Detector runs the detection operations behind the detection tools.
// *dinox.Pipeline implements it.
type Detector interface {
	DetectByText(ctx context.Context, imageURI, prompt string, includeDescription bool) (*dinox.DetectionResult, error)
	DetectAll(ctx context.Context, imageURI string, includeDescription bool) (*dinox.DetectionResult, error)
	DetectPose(ctx context.Context, imageURI string, includeDescription bool) (*dinox.DetectionResult, error)
}

// Renderer draws detections onto an image. *visualize.Renderer implements it.
type Renderer interface {
	Render(ctx context.Context, imageURI string, detections []detection.Formatted, opts visualize.Options) (string, error)
}

// Server handles MCP protocol communication
type Server struct {
	detector Detector
	renderer Renderer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRenderer enables the visualization tool.
func WithRenderer(r Renderer) Option {
	return func(s *Server) { s.renderer = r }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification reports whether the request carries no id.
func (r *MCPRequest) isNotification() bool {
	return r.ID == nil
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

// New creates a new MCP server over the given detector.
func New(detector Detector, opts ...Option) *Server {
	s := &Server{
		detector: detector,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves line-delimited JSON-RPC from in, writing responses to out.
//
// Each request is handled on its own goroutine so a slow detection does not
// block other calls; responses may therefore arrive out of order. Run returns
// when in is exhausted and every in-flight request has been answered.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxMessageSize)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	encoder := json.NewEncoder(out)
	write := func(resp *MCPResponse) {
		mu.Lock()
		defer mu.Unlock()
		if err := encoder.Encode(resp); err != nil {
			s.logger.Error("failed to encode response", "error", err)
		}
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			write(errorResponse(nil, codeParseError, "Parse error", err.Error()))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if resp := s.handleRequest(ctx, &req); resp != nil {
				write(resp)
			}
		}()
	}

	wg.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		if req.isNotification() {
			return nil
		}
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": Version,
			},
		},
	}
}

// errorResponse creates a JSON-RPC error response. An empty data string is
// omitted.
func errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}
