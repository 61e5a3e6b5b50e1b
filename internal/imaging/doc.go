// Package imaging resolves image references and provides the pixel-level
// helpers used to render detection results.
//
// # Image References
//
// Tools accept images as URIs in one of two forms:
//   - file:///absolute/path.png  - read from local disk
//   - https://host/path.jpg      - passed to the backend untouched
//
// Any other scheme fails with ErrInvalidImageURI before any I/O happens.
//
// # Transportable Images
//
// Resolve converts a reference into the value sent to the detection backend.
// Local files become a base64 data URI tagged image/png; remote URLs pass
// through. A tool call resolves its image once and reuses the value for every
// backend request it makes.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. This matches the bounding
// boxes produced by the backend.
//
// # Drawing
//
// Canvas, StrokeRect, FillRect and DrawText operate on NRGBA canvases and
// clip silently at the image edges.
package imaging
