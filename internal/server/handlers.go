package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/ironsheep/dinox-mcp/internal/detection"
	"github.com/ironsheep/dinox-mcp/internal/dinox"
	"github.com/ironsheep/dinox-mcp/internal/visualize"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "detect-all-objects").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// ContentBlock is one item of a tool result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the result payload of tools/call.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

func textResult(texts ...string) *ToolResult {
	blocks := make([]ContentBlock, len(texts))
	for i, t := range texts {
		blocks[i] = ContentBlock{Type: "text", Text: t}
	}
	return &ToolResult{Content: blocks}
}

func failureResult(format string, args ...interface{}) *ToolResult {
	r := textResult(fmt.Sprintf(format, args...))
	r.IsError = true
	return r
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool output in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "..."}, ...],
//	  "isError": false
//	}
//
// Tool failures are reported in-band with isError set. Only malformed params,
// unknown tools and undecodable arguments produce JSON-RPC errors (-32602).
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if !s.hasTool(params.Name) {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name), "")
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid arguments", err.Error())
	}

	s.logger.Info("tool call finished",
		"tool", params.Name,
		"is_error", result.IsError,
		"duration", time.Since(start),
	)

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// A returned error means the arguments could not be decoded. Every other
// failure, including a panic inside the handler, becomes a failure result.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (result *ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool panicked", "tool", name, "panic", r)
			result, err = failureResult("Tool %s failed: %v", name, r), nil
		}
	}()

	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case ToolDetectByText:
		return s.handleDetectByText(ctx, args)
	case ToolDetectAllObjects:
		return s.handleDetectAllObjects(ctx, args)
	case ToolDetectHumanPose:
		return s.handleDetectHumanPose(ctx, args)
	case ToolVisualizeDetected:
		return s.handleVisualize(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

// === Detection Handlers ===

type detectByTextArgs struct {
	ImageFileURI       string `json:"imageFileUri"`
	TextPrompt         string `json:"textPrompt"`
	IncludeDescription bool   `json:"includeDescription"`
}

func (s *Server) handleDetectByText(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
	var a detectByTextArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ImageFileURI == "" || a.TextPrompt == "" {
		return failureResult("Image file URI and text prompt are required"), nil
	}

	res, err := s.detector.DetectByText(ctx, a.ImageFileURI, a.TextPrompt, a.IncludeDescription)
	return s.objectResult(res, err, a.IncludeDescription), nil
}

type detectArgs struct {
	ImageFileURI       string `json:"imageFileUri"`
	IncludeDescription bool   `json:"includeDescription"`
}

func (s *Server) handleDetectAllObjects(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
	var a detectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ImageFileURI == "" {
		return failureResult("Image file URI is required"), nil
	}

	res, err := s.detector.DetectAll(ctx, a.ImageFileURI, a.IncludeDescription)
	return s.objectResult(res, err, a.IncludeDescription), nil
}

func (s *Server) handleDetectHumanPose(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
	var a detectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ImageFileURI == "" {
		return failureResult("Image file URI is required"), nil
	}

	res, err := s.detector.DetectPose(ctx, a.ImageFileURI, a.IncludeDescription)
	if err != nil {
		return s.failure("Failed to detect human pose keypoints from image", err), nil
	}
	report, err := detection.PoseReport(res.Objects, a.IncludeDescription)
	if err != nil {
		return s.failure("Failed to detect human pose keypoints from image", err), nil
	}
	return textResult(report.Blocks()...), nil
}

func (s *Server) objectResult(res *dinox.DetectionResult, err error, includeDescription bool) *ToolResult {
	if err != nil {
		return s.failure("Failed to detect objects from image", err)
	}
	report, err := detection.ObjectReport(res.Objects, includeDescription)
	if err != nil {
		return s.failure("Failed to detect objects from image", err)
	}
	return textResult(report.Blocks()...)
}

func (s *Server) failure(prefix string, err error) *ToolResult {
	s.logger.Warn("tool call failed", "error", err)
	return failureResult("%s: %v", prefix, err)
}

// === Visualization Handler ===

type visualizeArgs struct {
	ImageFileURI string                `json:"imageFileUri"`
	Detections   []detection.Formatted `json:"detections"`
	FontSize     float64               `json:"fontSize"`
	BoxThickness float64               `json:"boxThickness"`
	ShowLabels   *bool                 `json:"showLabels"`
}

func (s *Server) handleVisualize(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
	var a visualizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ImageFileURI == "" || a.Detections == nil {
		return failureResult("Image file URI and detections array are required"), nil
	}

	path, err := s.renderer.Render(ctx, a.ImageFileURI, a.Detections, visualize.Options{
		FontSize:     a.FontSize,
		BoxThickness: int(math.Round(a.BoxThickness)),
		ShowLabels:   a.ShowLabels,
	})
	if err != nil {
		return s.failure("Failed to visualize detections", err), nil
	}
	return textResult(fmt.Sprintf("Visualization saved to: %s", path)), nil
}
