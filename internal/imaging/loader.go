package imaging

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"net/http"
	"os"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultFetchTimeout bounds a single remote image download.
const DefaultFetchTimeout = 60 * time.Second

// maxRemoteImageBytes caps how much of a remote response is decoded.
const maxRemoteImageBytes = 64 << 20

// Loader decodes referenced images into pixels.
//
// Local files are opened from disk; https references are downloaded with the
// configured HTTP client. EXIF orientation is applied, so the returned pixels
// are in display orientation. Drawn boxes therefore assume the detection
// backend reports coordinates in display orientation too, even though it is
// sent the raw file bytes.
//
// A Loader is safe for concurrent use.
type Loader struct {
	httpClient *http.Client
}

// NewLoader creates a Loader. A nil client selects an http.Client with
// DefaultFetchTimeout.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &Loader{httpClient: client}
}

// Load decodes the image behind ref.
//
// Parameters:
//   - ctx: Bounds the remote download; ignored for local files.
//   - ref: A reference produced by ParseReference.
//
// Returns:
//   - image.Image: The decoded, orientation-corrected image.
//   - error: Non-nil if the image cannot be read, fetched or decoded.
//
// Supported formats are PNG, JPEG, GIF and WebP.
func (l *Loader) Load(ctx context.Context, ref Reference) (image.Image, error) {
	switch ref.Kind {
	case LocalFile:
		f, err := os.Open(ref.LocalPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		defer f.Close()
		return decode(f)
	case RemoteHTTPS:
		return l.fetch(ctx, ref.URL)
	default:
		return nil, ErrInvalidImageURI
	}
}

func (l *Loader) fetch(ctx context.Context, rawURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	return decode(io.LimitReader(resp.Body, maxRemoteImageBytes))
}

func decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
