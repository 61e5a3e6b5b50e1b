package dinox

import "encoding/json"

// Backend task endpoints.
const (
	EndpointDetection = "dinox/detection"
	EndpointRegionVL  = "dinox/region_vl"
)

// TaskStatus is the lifecycle state reported by task_status.
type TaskStatus string

const (
	StatusWaiting TaskStatus = "waiting"
	StatusRunning TaskStatus = "running"
	StatusSuccess TaskStatus = "success"
	StatusFailed  TaskStatus = "failed"
)

// Task is the observed state of one asynchronous backend task.
type Task struct {
	UUID   string          `json:"uuid"`
	Status TaskStatus      `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// hasResult reports whether the task carries a non-null result payload.
func (t *Task) hasResult() bool {
	return len(t.Result) > 0 && string(t.Result) != "null"
}

type createTaskResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		TaskUUID string `json:"task_uuid"`
	} `json:"data"`
}

type taskStatusResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data Task   `json:"data"`
}

type badRequestResponse struct {
	Errors []json.RawMessage `json:"errors"`
}

// Prompt selects what the detection model looks for.
type Prompt struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Universal int    `json:"universal,omitempty"`
}

// TextPrompt builds a free-text prompt. Multiple categories are separated by
// periods, e.g. "person.car.traffic light".
func TextPrompt(text string) Prompt {
	return Prompt{Type: "text", Text: text}
}

// UniversalPrompt asks the model to detect every object it can.
func UniversalPrompt() Prompt {
	return Prompt{Type: "universal", Universal: 1}
}

// Detection targets.
const (
	TargetBBox          = "bbox"
	TargetPoseKeypoints = "pose_keypoints"
	TargetCaption       = "caption"
)

// DetectionRequest is the payload of a dinox/detection task.
type DetectionRequest struct {
	Model         string   `json:"model"`
	Image         string   `json:"image"`
	Prompt        Prompt   `json:"prompt"`
	Targets       []string `json:"targets"`
	BBoxThreshold float64  `json:"bbox_threshold"`
	IoUThreshold  float64  `json:"iou_threshold"`
}

// RegionVLRequest is the payload of a dinox/region_vl task.
type RegionVLRequest struct {
	Model   string       `json:"model"`
	Image   string       `json:"image"`
	Regions [][4]float64 `json:"regions"`
	Targets []string     `json:"targets"`
}

// DetectedObject is one detection, optionally enriched with the caption of
// its region.
//
// BBox is [xmin, ymin, xmax, ymax] in source pixel space. Pose, when present,
// holds 17 keypoints of 4 values each (x, y, visibility code, confidence).
type DetectedObject struct {
	Category string      `json:"category"`
	Score    float64     `json:"score"`
	BBox     [4]float64  `json:"bbox"`
	Pose     []float64   `json:"pose,omitempty"`
	Region   *[4]float64 `json:"region,omitempty"`
	Caption  string      `json:"caption,omitempty"`
	ROC      string      `json:"roc,omitempty"`
	OCR      string      `json:"ocr,omitempty"`
}

// DetectionResult is the result payload of a detection task.
type DetectionResult struct {
	Objects []DetectedObject `json:"objects"`
}

// RegionCaption is one entry of a region_vl result.
type RegionCaption struct {
	Region  [4]float64 `json:"region"`
	Caption string     `json:"caption"`
	ROC     string     `json:"roc"`
	OCR     string     `json:"ocr"`
}

// RegionVLResult is the result payload of a region_vl task.
type RegionVLResult struct {
	Objects []RegionCaption `json:"objects"`
}
