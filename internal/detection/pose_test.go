package detection

import (
	"encoding/json"
	"strings"
	"testing"
)

// fullPose builds a backend pose array where keypoint i sits at (i*10, i*10+1).
func fullPose(code float64) []float64 {
	values := make([]float64, 0, PoseLength)
	for i := range KeypointNames {
		values = append(values, float64(i*10), float64(i*10+1), code, 0.9)
	}
	return values
}

func TestDecodePose(t *testing.T) {
	values := fullPose(2)
	values[0], values[1] = 100, 200

	pose, err := DecodePose(values)
	if err != nil {
		t.Fatalf("DecodePose failed: %v", err)
	}

	nose, ok := pose.Keypoint("nose")
	if !ok {
		t.Fatal("nose not found")
	}
	if nose != (Keypoint{X: 100, Y: 200, Visible: Visible}) {
		t.Errorf("nose: got %+v", nose)
	}

	ankle, _ := pose.Keypoint("rightAnkle")
	if ankle.X != 160 || ankle.Y != 161 {
		t.Errorf("rightAnkle: got %+v", ankle)
	}
}

func TestDecodePose_Visibility(t *testing.T) {
	tests := []struct {
		code float64
		want string
	}{
		{0, NotVisible},
		{2, Visible},
		{1, ""},
		{3, ""},
	}

	for _, tt := range tests {
		pose, err := DecodePose(fullPose(tt.code))
		if err != nil {
			t.Fatalf("code %v: %v", tt.code, err)
		}
		if pose.LeftEye.Visible != tt.want {
			t.Errorf("code %v: got %q, want %q", tt.code, pose.LeftEye.Visible, tt.want)
		}
	}
}

func TestDecodePose_RoundsCoordinates(t *testing.T) {
	values := fullPose(2)
	values[4], values[5] = 10.04, 20.06

	pose, err := DecodePose(values)
	if err != nil {
		t.Fatal(err)
	}
	if pose.LeftEye.X != 10.0 || pose.LeftEye.Y != 20.1 {
		t.Errorf("leftEye: got %+v", pose.LeftEye)
	}
}

func TestDecodePose_TooShort(t *testing.T) {
	_, err := DecodePose(make([]float64, PoseLength-1))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestPose_KeypointUnknown(t *testing.T) {
	var p Pose
	if _, ok := p.Keypoint("tail"); ok {
		t.Error("unknown keypoint should not be found")
	}
}

func TestPose_JSONOrder(t *testing.T) {
	pose, err := DecodePose(fullPose(2))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(pose)
	if err != nil {
		t.Fatal(err)
	}

	last := -1
	for _, name := range KeypointNames {
		idx := strings.Index(string(data), `"`+name+`"`)
		if idx < 0 {
			t.Fatalf("missing %s in %s", name, data)
		}
		if idx < last {
			t.Errorf("%s out of order", name)
		}
		last = idx
	}
}

func TestPose_UnknownVisibilityOmitted(t *testing.T) {
	pose, err := DecodePose(fullPose(1))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(pose.Nose)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"x":0,"y":1}` {
		t.Errorf("got %s", data)
	}
}
