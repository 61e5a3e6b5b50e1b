package detection

import "fmt"

// ValuesPerKeypoint is the stride of the backend pose array:
// x, y, visibility code, confidence.
const ValuesPerKeypoint = 4

// KeypointNames lists the 17 body landmarks in backend order.
var KeypointNames = [...]string{
	"nose", "leftEye", "rightEye", "leftEar", "rightEar",
	"leftShoulder", "rightShoulder", "leftElbow", "rightElbow",
	"leftWrist", "rightWrist", "leftHip", "rightHip",
	"leftKnee", "rightKnee", "leftAnkle", "rightAnkle",
}

// PoseLength is the number of floats in a complete pose array.
const PoseLength = len(KeypointNames) * ValuesPerKeypoint

// Visibility labels.
const (
	NotVisible = "not visible"
	Visible    = "visible"
)

var visibilityLabels = map[float64]string{
	0: NotVisible,
	2: Visible,
}

// Keypoint is one decoded landmark. Visible is empty, and omitted from JSON,
// when the backend reports a code outside the known map.
type Keypoint struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Visible string  `json:"visible,omitempty"`
}

// Pose holds the 17 named keypoints of one person, serialized in anatomical
// order.
type Pose struct {
	Nose          Keypoint `json:"nose"`
	LeftEye       Keypoint `json:"leftEye"`
	RightEye      Keypoint `json:"rightEye"`
	LeftEar       Keypoint `json:"leftEar"`
	RightEar      Keypoint `json:"rightEar"`
	LeftShoulder  Keypoint `json:"leftShoulder"`
	RightShoulder Keypoint `json:"rightShoulder"`
	LeftElbow     Keypoint `json:"leftElbow"`
	RightElbow    Keypoint `json:"rightElbow"`
	LeftWrist     Keypoint `json:"leftWrist"`
	RightWrist    Keypoint `json:"rightWrist"`
	LeftHip       Keypoint `json:"leftHip"`
	RightHip      Keypoint `json:"rightHip"`
	LeftKnee      Keypoint `json:"leftKnee"`
	RightKnee     Keypoint `json:"rightKnee"`
	LeftAnkle     Keypoint `json:"leftAnkle"`
	RightAnkle    Keypoint `json:"rightAnkle"`
}

// slots returns the keypoints in KeypointNames order.
func (p *Pose) slots() [len(KeypointNames)]*Keypoint {
	return [...]*Keypoint{
		&p.Nose, &p.LeftEye, &p.RightEye, &p.LeftEar, &p.RightEar,
		&p.LeftShoulder, &p.RightShoulder, &p.LeftElbow, &p.RightElbow,
		&p.LeftWrist, &p.RightWrist, &p.LeftHip, &p.RightHip,
		&p.LeftKnee, &p.RightKnee, &p.LeftAnkle, &p.RightAnkle,
	}
}

// Keypoint returns the keypoint with the given name from KeypointNames.
func (p *Pose) Keypoint(name string) (Keypoint, bool) {
	slots := p.slots()
	for i, n := range KeypointNames {
		if n == name {
			return *slots[i], true
		}
	}
	return Keypoint{}, false
}

// DecodePose converts a flat backend pose array into named keypoints.
// Coordinates are rounded to one decimal; confidences are dropped.
func DecodePose(values []float64) (*Pose, error) {
	if len(values) < PoseLength {
		return nil, fmt.Errorf("pose has %d values, want %d", len(values), PoseLength)
	}

	var pose Pose
	for i, slot := range pose.slots() {
		base := i * ValuesPerKeypoint
		*slot = Keypoint{
			X:       Round1(values[base]),
			Y:       Round1(values[base+1]),
			Visible: visibilityLabels[values[base+2]],
		}
	}
	return &pose, nil
}
