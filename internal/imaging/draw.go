package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas returns a mutable NRGBA copy of img with its origin moved to (0,0),
// suitable for the drawing helpers below.
func Canvas(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// StrokeRect draws an unfilled rectangle with the given line thickness.
//
// The stroke grows inward from r so the outer edge matches the box exactly.
// Parts of the rectangle outside dst are clipped.
func StrokeRect(dst draw.Image, r image.Rectangle, thickness int, c color.Color) {
	r = r.Canon()
	if thickness < 1 {
		thickness = 1
	}
	if r.Empty() {
		return
	}
	if thickness*2 >= r.Dx() || thickness*2 >= r.Dy() {
		FillRect(dst, r, c)
		return
	}

	FillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), c) // top
	FillRect(dst, image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), c) // bottom
	FillRect(dst, image.Rect(r.Min.X, r.Min.Y+thickness, r.Min.X+thickness, r.Max.Y-thickness), c)
	FillRect(dst, image.Rect(r.Max.X-thickness, r.Min.Y+thickness, r.Max.X, r.Max.Y-thickness), c)
}

// FillRect paints r with a solid color, clipped to dst.
func FillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	r = r.Canon().Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// DrawText renders text with its baseline origin at (x, baseline).
func DrawText(dst draw.Image, face font.Face, x, baseline int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

// MeasureText returns the advance width of text in pixels.
func MeasureText(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}
