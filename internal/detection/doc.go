// Package detection turns raw backend detections into the output shape the
// tools return.
//
// # Formatting
//
// Backend boxes arrive as [xmin, ymin, xmax, ymax] float arrays. Format
// converts them into named fields rounded to one decimal place, decodes pose
// arrays into 17 named keypoints, and attaches region captions as
// descriptions when asked to.
//
// # Keypoints
//
// Pose arrays hold 4 values per keypoint: x, y, a visibility code and a
// confidence. Codes map as:
//   - 0: "not visible"
//   - 2: "visible"
//
// Any other code leaves the visibility empty; it is omitted from JSON rather
// than treated as an error.
//
// # Reports
//
// ObjectReport and PoseReport produce the three text blocks of a tool
// result: a summary line, the indented JSON detections and a note on the
// coordinate system. Every function here is pure.
package detection
