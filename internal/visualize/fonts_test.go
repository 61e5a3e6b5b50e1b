package visualize

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

func TestFallbackChain(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "/System/Library/Fonts/PingFang.ttc"},
		{"windows", `C:\Windows\Fonts\msyh.ttc`},
		{"linux", "/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc"},
		{"freebsd", "/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc"},
	}

	for _, tt := range tests {
		chain := FallbackChain(tt.goos)
		if len(chain) == 0 || chain[0] != tt.want {
			t.Errorf("%s: got %v, want first %s", tt.goos, chain, tt.want)
		}
	}
}

func TestSystemFontSource_FallsBackToBitmap(t *testing.T) {
	garbage := filepath.Join(t.TempDir(), "broken.ttf")
	if err := os.WriteFile(garbage, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFontSourceFromPaths([]string{"/nonexistent/font.ttf", garbage})
	face, err := src.Face(24)
	if err != nil {
		t.Fatalf("Face failed: %v", err)
	}
	if face != basicfont.Face7x13 {
		t.Errorf("expected bitmap fallback, got %T", face)
	}
}

func TestSystemFontSource_LoadsTrueType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFontSourceFromPaths([]string{"/nonexistent/font.ttf", path})
	face, err := src.Face(32)
	if err != nil {
		t.Fatalf("Face failed: %v", err)
	}
	if face == basicfont.Face7x13 {
		t.Fatal("expected parsed font, got bitmap fallback")
	}
	defer face.Close()

	if h := face.Metrics().Height.Ceil(); h < 30 {
		t.Errorf("face height %d too small for size 32", h)
	}
}
