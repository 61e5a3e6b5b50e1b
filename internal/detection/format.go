package detection

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/ironsheep/dinox-mcp/internal/dinox"
)

// BBox is a bounding box with named, rounded corners.
type BBox struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// Formatted is the externally visible shape of one detection.
type Formatted struct {
	Name        string `json:"name"`
	BBox        BBox   `json:"bbox"`
	Pose        *Pose  `json:"pose,omitempty"`
	Description string `json:"description,omitempty"`
}

// CategoryGroup holds every detection of one category.
type CategoryGroup struct {
	Category string
	Objects  []dinox.DetectedObject
}

// Round1 rounds v to one decimal place.
//
// Rounding is decided on the exact binary value of v, with exact ties going
// away from zero. So 20.06 gives 20.1 and 0.25 gives 0.3, but 0.35 (stored
// as 0.34999...) gives 0.3.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	scaled := new(big.Float).SetPrec(128).SetFloat64(v)
	scaled.Mul(scaled, big.NewFloat(10))

	whole, _ := scaled.Int64()
	frac := new(big.Float).Sub(scaled, new(big.Float).SetInt64(whole))
	if frac.Abs(frac).Cmp(big.NewFloat(0.5)) == 0 {
		if v < 0 {
			whole--
		} else {
			whole++
		}
		return float64(whole) / 10
	}

	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// FormatBBox converts a backend [xmin, ymin, xmax, ymax] array into a BBox
// rounded to one decimal place.
func FormatBBox(b [4]float64) BBox {
	return BBox{
		XMin: Round1(b[0]),
		YMin: Round1(b[1]),
		XMax: Round1(b[2]),
		YMax: Round1(b[3]),
	}
}

// Format converts backend detections into their output shape, preserving
// order. Descriptions are only attached when includeDescription is set.
func Format(objects []dinox.DetectedObject, includeDescription bool) ([]Formatted, error) {
	out := make([]Formatted, 0, len(objects))
	for i, obj := range objects {
		f := Formatted{
			Name: obj.Category,
			BBox: FormatBBox(obj.BBox),
		}
		if len(obj.Pose) > 0 {
			pose, err := DecodePose(obj.Pose)
			if err != nil {
				return nil, fmt.Errorf("object %d: %w", i, err)
			}
			f.Pose = pose
		}
		if includeDescription {
			f.Description = obj.Caption
		}
		out = append(out, f)
	}
	return out, nil
}

// GroupByCategory groups detections by category. Groups appear in the order
// their category is first seen, and each group keeps detection order.
func GroupByCategory(objects []dinox.DetectedObject) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, obj := range objects {
		i, ok := index[obj.Category]
		if !ok {
			i = len(groups)
			index[obj.Category] = i
			groups = append(groups, CategoryGroup{Category: obj.Category})
		}
		groups[i].Objects = append(groups[i].Objects, obj)
	}
	return groups
}
