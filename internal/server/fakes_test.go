package server

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/ironsheep/dinox-mcp/internal/detection"
	"github.com/ironsheep/dinox-mcp/internal/dinox"
	"github.com/ironsheep/dinox-mcp/internal/visualize"
)

type detectCall struct {
	method             string
	imageURI           string
	prompt             string
	includeDescription bool
}

// fakeDetector records calls and answers with a canned result.
type fakeDetector struct {
	mu     sync.Mutex
	calls  []detectCall
	result *dinox.DetectionResult
	err    error
	panic  interface{}
	apiKey string
}

func (f *fakeDetector) record(c detectCall) (*dinox.DetectionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	if f.panic != nil {
		panic(f.panic)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &dinox.DetectionResult{}, nil
	}
	return f.result, nil
}

func (f *fakeDetector) DetectByText(ctx context.Context, imageURI, prompt string, includeDescription bool) (*dinox.DetectionResult, error) {
	return f.record(detectCall{"text", imageURI, prompt, includeDescription})
}

func (f *fakeDetector) DetectAll(ctx context.Context, imageURI string, includeDescription bool) (*dinox.DetectionResult, error) {
	return f.record(detectCall{"all", imageURI, "", includeDescription})
}

func (f *fakeDetector) DetectPose(ctx context.Context, imageURI string, includeDescription bool) (*dinox.DetectionResult, error) {
	return f.record(detectCall{"pose", imageURI, "", includeDescription})
}

func (f *fakeDetector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeRenderer records the last render request.
type fakeRenderer struct {
	path       string
	err        error
	imageURI   string
	detections []detection.Formatted
	opts       visualize.Options
}

func (f *fakeRenderer) Render(ctx context.Context, imageURI string, detections []detection.Formatted, opts visualize.Options) (string, error) {
	f.imageURI = imageURI
	f.detections = detections
	f.opts = opts
	return f.path, f.err
}

var catsAndDog = &dinox.DetectionResult{Objects: []dinox.DetectedObject{
	{Category: "cat", Score: 0.9, BBox: [4]float64{10.04, 20.06, 30, 40}, Caption: "tabby"},
	{Category: "dog", Score: 0.8, BBox: [4]float64{1, 2, 3, 4}},
	{Category: "cat", Score: 0.7, BBox: [4]float64{5, 6, 7, 8}},
}}

// callTool runs a tools/call request through handleRequest.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatal(err)
	}
	return s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
}

// toolResult extracts the tool result from a successful response.
func toolResult(t *testing.T, resp *MCPResponse) *ToolResult {
	t.Helper()
	if resp == nil {
		t.Fatal("nil response")
	}
	if resp.Error != nil {
		t.Fatalf("unexpected JSON-RPC error: %+v", resp.Error)
	}
	result, ok := resp.Result.(*ToolResult)
	if !ok {
		t.Fatalf("result type: %T", resp.Result)
	}
	return result
}
