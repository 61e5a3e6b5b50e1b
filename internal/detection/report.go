package detection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ironsheep/dinox-mcp/internal/dinox"
)

// Fixed explanatory notes appended to every report.
const (
	BBoxNote = "Note: The bbox coordinates are in {xmin, ymin, xmax, ymax} format, where the origin (0,0) is at the top-left corner of the image. " +
		"These coordinates help determine the exact position and spatial relationships of objects in the image."
	PoseNote = "Note: The bbox coordinates are in {xmin, ymin, xmax, ymax} format, where the origin (0,0) is at the top-left corner of the image. " +
		"The pose keypoints follow the same coordinate system, with visibility states (not visible, visible)."
)

// Report is the textual result of a detection tool call.
type Report struct {
	Summary string
	Details string
	Note    string

	// Detections is the structured form of Details.
	Detections []Formatted
}

// Blocks returns the report as ordered text blocks.
func (r Report) Blocks() []string {
	return []string{r.Summary, r.Details, r.Note}
}

// ObjectReport builds the report for the object detection tools.
func ObjectReport(objects []dinox.DetectedObject, includeDescription bool) (Report, error) {
	formatted, err := Format(objects, includeDescription)
	if err != nil {
		return Report{}, err
	}
	details, err := marshalDetails(formatted)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Summary:    CategorySummary(GroupByCategory(objects)),
		Details:    "Detailed object detection results: " + details,
		Note:       BBoxNote,
		Detections: formatted,
	}, nil
}

// PoseReport builds the report for human pose keypoint detection.
func PoseReport(objects []dinox.DetectedObject, includeDescription bool) (Report, error) {
	formatted, err := Format(objects, includeDescription)
	if err != nil {
		return Report{}, err
	}
	details, err := marshalDetails(formatted)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Summary:    fmt.Sprintf("%d human(s) detected in image.", len(formatted)),
		Details:    "Detailed human pose keypoints detection results: " + details,
		Note:       PoseNote,
		Detections: formatted,
	}, nil
}

// CategorySummary renders "Objects detected in image: cat (2), dog (1)."
func CategorySummary(groups []CategoryGroup) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = fmt.Sprintf("%s (%d)", g.Category, len(g.Objects))
	}
	return "Objects detected in image: " + strings.Join(parts, ", ") + "."
}

// marshalDetails renders detections as two-space indented JSON without HTML
// escaping, so category names such as "salt & pepper" read naturally.
func marshalDetails(formatted []Formatted) (string, error) {
	if formatted == nil {
		formatted = []Formatted{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(formatted); err != nil {
		return "", fmt.Errorf("encode detections: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
