package visualize

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// FontSource supplies label faces at a requested pixel size.
type FontSource interface {
	Face(size float64) (font.Face, error)
}

// fallbackChains lists label fonts per GOOS, CJK-capable ones first.
var fallbackChains = map[string][]string{
	"darwin": {
		"/System/Library/Fonts/PingFang.ttc",
		"/System/Library/Fonts/STHeiti Medium.ttc",
		"/System/Library/Fonts/Hiragino Sans GB.ttc",
		"/Library/Fonts/Arial Unicode.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
	},
	"windows": {
		`C:\Windows\Fonts\msyh.ttc`,
		`C:\Windows\Fonts\simhei.ttf`,
		`C:\Windows\Fonts\simsun.ttc`,
		`C:\Windows\Fonts\arial.ttf`,
	},
	"linux": {
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
		"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
		"/usr/share/fonts/google-noto-cjk/NotoSansCJK-Regular.ttc",
		"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
		"/usr/share/fonts/wenquanyi/wqy-microhei/wqy-microhei.ttc",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
	},
}

// FallbackChain returns the font files tried for goos. Unknown systems use
// the linux list.
func FallbackChain(goos string) []string {
	if chain, ok := fallbackChains[goos]; ok {
		return chain
	}
	return fallbackChains["linux"]
}

// SystemFontSource loads the first usable font from a fallback chain and
// uses basicfont.Face7x13 when none can be parsed. The chosen font is parsed
// once and shared; faces are created per call.
type SystemFontSource struct {
	paths []string

	once sync.Once
	font *opentype.Font
}

// NewSystemFontSource returns a source for the running OS.
func NewSystemFontSource() *SystemFontSource {
	return NewFontSourceFromPaths(FallbackChain(runtime.GOOS))
}

// NewFontSourceFromPaths returns a source that tries paths in order.
func NewFontSourceFromPaths(paths []string) *SystemFontSource {
	return &SystemFontSource{paths: paths}
}

// Face returns a face at size pixels.
func (s *SystemFontSource) Face(size float64) (font.Face, error) {
	s.once.Do(func() {
		for _, p := range s.paths {
			if f, err := loadFont(p); err == nil {
				s.font = f
				return
			}
		}
	})

	if s.font == nil {
		return basicfont.Face7x13, nil
	}
	face, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// loadFont parses a single font or the first font of a collection.
func loadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if f, err := opentype.Parse(data); err == nil {
		return f, nil
	}
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return coll.Font(0)
}
