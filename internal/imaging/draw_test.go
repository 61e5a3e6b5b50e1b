package imaging

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func newWhiteCanvas(width, height int) *image.NRGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	FillRect(img, img.Bounds(), color.White)
	return Canvas(img)
}

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func TestCanvas_CopiesPixels(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 20, 20))
	src.Set(10, 10, color.RGBA{255, 0, 0, 255})

	dst := Canvas(src)
	if dst.Bounds().Min != (image.Point{}) {
		t.Errorf("canvas origin: got %v, want (0,0)", dst.Bounds().Min)
	}
	if !sameColor(dst.At(0, 0), color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel not copied: %v", dst.At(0, 0))
	}
}

func TestStrokeRect(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	img := newWhiteCanvas(100, 100)

	StrokeRect(img, image.Rect(10, 10, 60, 50), 3, red)

	tests := []struct {
		name string
		x, y int
		want color.Color
	}{
		{"top edge", 30, 10, red},
		{"top edge inner", 30, 12, red},
		{"below top stroke", 30, 13, color.White},
		{"left edge", 10, 30, red},
		{"right edge", 59, 30, red},
		{"bottom edge", 30, 49, red},
		{"interior", 30, 30, color.White},
		{"outside", 5, 5, color.White},
		{"past right", 60, 30, color.White},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := img.At(tt.x, tt.y); !sameColor(got, tt.want) {
				t.Errorf("pixel (%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestStrokeRect_ClipsAtEdges(t *testing.T) {
	img := newWhiteCanvas(20, 20)
	// Should not panic when the box runs off the canvas.
	StrokeRect(img, image.Rect(-10, -10, 40, 40), 4, color.Black)
	if !sameColor(img.At(10, 10), color.White) {
		t.Error("interior should stay untouched")
	}
}

func TestStrokeRect_ThickStrokeFills(t *testing.T) {
	img := newWhiteCanvas(20, 20)
	StrokeRect(img, image.Rect(5, 5, 9, 9), 4, color.Black)
	if !sameColor(img.At(7, 7), color.Black) {
		t.Error("small box with thick stroke should be filled")
	}
}

func TestFillRect(t *testing.T) {
	img := newWhiteCanvas(10, 10)
	FillRect(img, image.Rect(8, 8, 2, 2), color.Black) // non-canonical on purpose
	if !sameColor(img.At(5, 5), color.Black) {
		t.Error("FillRect should canonicalize the rectangle")
	}
	if !sameColor(img.At(9, 9), color.White) {
		t.Error("FillRect painted outside the rectangle")
	}
}

func TestDrawText(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 80, 20))
	DrawText(img, basicfont.Face7x13, 2, 14, "cat", color.White)

	painted := false
	for y := 0; y < 20 && !painted; y++ {
		for x := 0; x < 80; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				painted = true
				break
			}
		}
	}
	if !painted {
		t.Error("DrawText left the canvas empty")
	}
}

func TestMeasureText(t *testing.T) {
	if got := MeasureText(basicfont.Face7x13, "abcd"); got != 28 {
		t.Errorf("MeasureText: got %d, want 28", got)
	}
}
