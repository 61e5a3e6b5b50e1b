package imaging

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// createTestImage creates a simple test image file and returns its path.
// The file lives in a per-test temp directory.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "test-image.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	return path
}

func TestLoader_Load_LocalFile(t *testing.T) {
	imgPath := createTestImage(t, 100, 80, color.RGBA{255, 0, 0, 255})

	ref, err := ParseReference(FileScheme + imgPath)
	if err != nil {
		t.Fatalf("ParseReference failed: %v", err)
	}

	img, err := NewLoader(nil).Load(context.Background(), ref)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 80 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x80", bounds.Dx(), bounds.Dy())
	}
}

// exifOrientationSegment is an APP1 segment holding a little-endian TIFF
// block with a single Orientation tag set to 6 (rotate 90 clockwise).
var exifOrientationSegment = []byte{
	0xFF, 0xE1, 0x00, 0x22,
	'E', 'x', 'i', 'f', 0x00, 0x00,
	'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00,
	0x01, 0x00,
	0x12, 0x01, 0x03, 0x00, 0x01, 0x00, 0x00, 0x00, 0x06, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// createRotatedJPEG writes a width x height JPEG tagged with EXIF
// orientation 6.
func createRotatedJPEG(t *testing.T, width, height int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height)), nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	raw := buf.Bytes()

	tagged := append([]byte{}, raw[:2]...)
	tagged = append(tagged, exifOrientationSegment...)
	tagged = append(tagged, raw[2:]...)

	path := filepath.Join(t.TempDir(), "rotated.jpg")
	if err := os.WriteFile(path, tagged, 0o644); err != nil {
		t.Fatalf("failed to write jpeg: %v", err)
	}
	return path
}

func TestLoader_Load_AppliesEXIFOrientation(t *testing.T) {
	ref, err := ParseReference(FileScheme + createRotatedJPEG(t, 40, 20))
	if err != nil {
		t.Fatalf("ParseReference failed: %v", err)
	}

	img, err := NewLoader(nil).Load(context.Background(), ref)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Boxes are drawn in display orientation, so width and height swap.
	bounds := img.Bounds()
	if bounds.Dx() != 20 || bounds.Dy() != 40 {
		t.Errorf("unexpected dimensions: got %dx%d, want 20x40", bounds.Dx(), bounds.Dy())
	}
}

func TestLoader_Load_PercentEncodedPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "with space")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	src := createTestImage(t, 10, 10, color.White)
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "a.png")
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		t.Fatal(err)
	}

	ref := Reference{Kind: LocalFile, Path: filepath.ToSlash(filepath.Join(filepath.Dir(dir), "with%20space", "a.png"))}
	if _, err := NewLoader(nil).Load(context.Background(), ref); err != nil {
		t.Fatalf("Load failed for encoded path: %v", err)
	}
}

func TestLoader_Load_NonExistent(t *testing.T) {
	ref := Reference{Kind: LocalFile, Path: "/nonexistent/path/to/image.png"}
	if _, err := NewLoader(nil).Load(context.Background(), ref); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestLoader_Load_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	ref := Reference{Kind: LocalFile, Path: path}
	if _, err := NewLoader(nil).Load(context.Background(), ref); err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestLoader_Load_Remote(t *testing.T) {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 16)))

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	ref, err := ParseReference(srv.URL + "/img.png")
	if err != nil {
		t.Fatalf("ParseReference failed: %v", err)
	}

	img, err := NewLoader(srv.Client()).Load(context.Background(), ref)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Errorf("unexpected dimensions: %v", img.Bounds())
	}
}

func TestLoader_Load_RemoteStatusError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ref := Reference{Kind: RemoteHTTPS, URL: srv.URL + "/missing.png"}
	if _, err := NewLoader(srv.Client()).Load(context.Background(), ref); err == nil {
		t.Error("Load should fail on 404")
	}
}
