package server

// Tool names.
const (
	ToolDetectByText      = "object-detection-by-text"
	ToolDetectAllObjects  = "detect-all-objects"
	ToolDetectHumanPose   = "detect-human-pose-keypoints"
	ToolVisualizeDetected = "visualize-detections"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var imageFileURIProperty = map[string]interface{}{
	"type":        "string",
	"description": "URI of the input image. Preferred for remote or local files. Must start with 'https://' or 'file://'.",
}

var includeDescriptionProperty = map[string]interface{}{
	"type":        "boolean",
	"description": "Whether to return a description of the objects detected in the image, but will take longer to process.",
}

// detectionTools are served on every transport.
var detectionTools = []Tool{
	{
		Name:        ToolDetectByText,
		Description: "Analyze an image based on a text prompt to identify and count specific objects, and return detailed descriptions of the objects and their 2D coordinates.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"imageFileUri": imageFileURIProperty,
				"textPrompt": map[string]interface{}{
					"type":        "string",
					"description": "Nouns of target objects (English only, avoid adjectives). Use periods to separate multiple categories (e.g., 'person.car.traffic light').",
				},
				"includeDescription": includeDescriptionProperty,
			},
			"required": []string{"imageFileUri", "textPrompt", "includeDescription"},
		},
	},
	{
		Name:        ToolDetectAllObjects,
		Description: "Analyze an image to detect all identifiable objects, returning the category, count, coordinate positions and detailed descriptions for each object.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"imageFileUri":       imageFileURIProperty,
				"includeDescription": includeDescriptionProperty,
			},
			"required": []string{"imageFileUri", "includeDescription"},
		},
	},
	{
		Name:        ToolDetectHumanPose,
		Description: "Detects 17 keypoints for each person in an image, supporting body posture and movement analysis.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"imageFileUri":       imageFileURIProperty,
				"includeDescription": includeDescriptionProperty,
			},
			"required": []string{"imageFileUri", "includeDescription"},
		},
	},
}

var visualizeTool = Tool{
	Name:        ToolVisualizeDetected,
	Description: "Visualize detection results by drawing bounding boxes and labels on the original image. Images are saved to the directory specified by IMAGE_STORAGE_DIRECTORY environment variable.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"imageFileUri": imageFileURIProperty,
			"detections": map[string]interface{}{
				"type":        "array",
				"description": "Array of detection results with name and bbox information.",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name": map[string]interface{}{
							"type":        "string",
							"description": "Object category name",
						},
						"bbox": map[string]interface{}{
							"type":        "object",
							"description": "Bounding box coordinates",
							"properties": map[string]interface{}{
								"xmin": map[string]interface{}{"type": "number"},
								"ymin": map[string]interface{}{"type": "number"},
								"xmax": map[string]interface{}{"type": "number"},
								"ymax": map[string]interface{}{"type": "number"},
							},
							"required": []string{"xmin", "ymin", "xmax", "ymax"},
						},
					},
					"required": []string{"name", "bbox"},
				},
			},
			"fontSize": map[string]interface{}{
				"type":        "number",
				"description": "Font size for labels (default: 24)",
			},
			"boxThickness": map[string]interface{}{
				"type":        "number",
				"description": "Thickness of bounding box lines (default: 4)",
			},
			"showLabels": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether to show category labels (default: true)",
			},
		},
		"required": []string{"imageFileUri", "detections"},
	},
}

// GetToolDefinitions returns the tool catalog. The visualization tool is only
// listed when withVisualize is set.
func GetToolDefinitions(withVisualize bool) []Tool {
	tools := make([]Tool, 0, len(detectionTools)+1)
	tools = append(tools, detectionTools...)
	if withVisualize {
		tools = append(tools, visualizeTool)
	}
	return tools
}

// Tools returns the tools this server instance serves.
func (s *Server) Tools() []Tool {
	return GetToolDefinitions(s.renderer != nil)
}

// hasTool reports whether name is served by this instance.
func (s *Server) hasTool(name string) bool {
	for _, t := range s.Tools() {
		if t.Name == name {
			return true
		}
	}
	return false
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": s.Tools(),
		},
	}
}
