package dinox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/ironsheep/dinox-mcp/internal/imaging"
)

// Detection request constants shared by every operation.
const (
	Model         = "DINO-X-1.0"
	BBoxThreshold = 0.25
	IoUThreshold  = 0.8
	PosePrompt    = "person"
)

// Submitter runs one backend task to completion. *Client implements it.
type Submitter interface {
	Submit(ctx context.Context, endpoint string, payload any) (json.RawMessage, error)
}

// Pipeline composes detection and optional region captioning.
type Pipeline struct {
	tasks  Submitter
	logger *slog.Logger
}

// NewPipeline creates a Pipeline over the given task submitter.
func NewPipeline(tasks Submitter, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{tasks: tasks, logger: logger}
}

// DetectByText detects the objects named by prompt. Multiple categories are
// separated with periods.
func (p *Pipeline) DetectByText(ctx context.Context, imageURI, prompt string, includeDescription bool) (*DetectionResult, error) {
	return p.performDetection(ctx, imageURI, TextPrompt(prompt), []string{TargetBBox}, includeDescription)
}

// DetectAll detects every object the model recognizes.
func (p *Pipeline) DetectAll(ctx context.Context, imageURI string, includeDescription bool) (*DetectionResult, error) {
	return p.performDetection(ctx, imageURI, UniversalPrompt(), []string{TargetBBox}, includeDescription)
}

// DetectPose detects people together with their 17 body keypoints.
func (p *Pipeline) DetectPose(ctx context.Context, imageURI string, includeDescription bool) (*DetectionResult, error) {
	return p.performDetection(ctx, imageURI, TextPrompt(PosePrompt), []string{TargetBBox, TargetPoseKeypoints}, includeDescription)
}

func (p *Pipeline) performDetection(ctx context.Context, imageURI string, prompt Prompt, targets []string, includeDescription bool) (*DetectionResult, error) {
	img, err := imaging.Resolve(imageURI)
	if err != nil {
		return nil, err
	}

	raw, err := p.tasks.Submit(ctx, EndpointDetection, DetectionRequest{
		Model:         Model,
		Image:         string(img),
		Prompt:        prompt,
		Targets:       targets,
		BBoxThreshold: BBoxThreshold,
		IoUThreshold:  IoUThreshold,
	})
	if err != nil {
		return nil, err
	}

	var detections DetectionResult
	if err := json.Unmarshal(raw, &detections); err != nil {
		return nil, fmt.Errorf("decode detection result: %w", err)
	}
	p.logger.Debug("detection finished", "prompt_type", prompt.Type, "objects", len(detections.Objects))

	if !includeDescription || len(detections.Objects) == 0 {
		return &detections, nil
	}

	regions := make([][4]float64, len(detections.Objects))
	for i, obj := range detections.Objects {
		regions[i] = obj.BBox
	}

	raw, err = p.tasks.Submit(ctx, EndpointRegionVL, RegionVLRequest{
		Model:   Model,
		Image:   string(img),
		Regions: regions,
		Targets: []string{TargetCaption},
	})
	if err != nil {
		return nil, err
	}

	var captions RegionVLResult
	if err := json.Unmarshal(raw, &captions); err != nil {
		return nil, fmt.Errorf("decode caption result: %w", err)
	}

	merged, err := mergeCaptions(detections.Objects, captions.Objects)
	if err != nil {
		return nil, err
	}
	return &DetectionResult{Objects: merged}, nil
}

// mergeCaptions attaches captions to detections by array position. The
// region_vl task answers in the order the regions were submitted.
func mergeCaptions(objects []DetectedObject, captions []RegionCaption) ([]DetectedObject, error) {
	if len(captions) != len(objects) {
		return nil, &CaptionMismatchError{Objects: len(objects), Captions: len(captions)}
	}

	merged := make([]DetectedObject, len(objects))
	for i, obj := range objects {
		c := captions[i]
		region := c.Region
		obj.Region = &region
		obj.Caption = c.Caption
		obj.ROC = c.ROC
		obj.OCR = c.OCR
		merged[i] = obj
	}
	return merged, nil
}
