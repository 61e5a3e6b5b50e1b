// Package server implements the MCP (Model Context Protocol) front ends for
// the DINO-X vision tools.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 and supports these MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Transports
//
// Run serves line-delimited JSON-RPC over a pipe (stdin/stdout). Every
// request runs on its own goroutine and responses are written as they
// complete.
//
// NewHTTPServer serves POST /mcp statelessly: each request gets a fresh
// Server. Access can be gated by a bearer token, and with client keys
// enabled each request must carry its own backend key in the "key" query
// parameter. Rejected requests receive HTTP 401 with a JSON-RPC error body
// (code -32000).
//
// # Available Tools
//
//   - object-detection-by-text: Detect objects named in a text prompt
//   - detect-all-objects: Detect every recognizable object
//   - detect-human-pose-keypoints: Detect people and 17 body keypoints
//   - visualize-detections: Draw boxes onto the image (only when a Renderer
//     is configured, which the stdio transport does)
//
// # Error Handling
//
// Failures inside a tool, including backend errors and panics, are returned
// as a single text block with isError set. JSON-RPC errors are reserved for
// protocol problems: -32601 for unknown methods and -32602 for unknown tools
// or undecodable arguments.
package server
