package visualize

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/font"

	"github.com/ironsheep/dinox-mcp/internal/detection"
	"github.com/ironsheep/dinox-mcp/internal/imaging"
)

// Rendering defaults.
const (
	DefaultFontSize     = 24
	DefaultBoxThickness = 4

	// labelPadding is the horizontal space added around label text.
	labelPadding = 10
	// labelExtraHeight is added to the font size to get the label height.
	labelExtraHeight = 8
	// charWidthRatio estimates glyph width as a fraction of the font size.
	charWidthRatio = 0.6

	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// DefaultStorageDirectory is used when no storage directory is configured.
func DefaultStorageDirectory() string {
	return filepath.Join(os.TempDir(), "dinox-mcp")
}

// ImageLoader decodes a referenced image. *imaging.Loader implements it.
type ImageLoader interface {
	Load(ctx context.Context, ref imaging.Reference) (image.Image, error)
}

// Options controls how detections are drawn. Zero values select defaults.
type Options struct {
	FontSize     float64
	BoxThickness int
	ShowLabels   *bool
}

func (o Options) withDefaults() Options {
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.BoxThickness <= 0 {
		o.BoxThickness = DefaultBoxThickness
	}
	if o.ShowLabels == nil {
		show := true
		o.ShowLabels = &show
	}
	return o
}

// Config configures a Renderer.
type Config struct {
	StorageDirectory string
	Loader           ImageLoader
	Fonts            FontSource
	Now              func() time.Time
	Logger           *slog.Logger
}

// Renderer draws detections and saves the annotated image. It holds no
// per-call state and is safe for concurrent use.
type Renderer struct {
	dir    string
	loader ImageLoader
	fonts  FontSource
	now    func() time.Time
	logger *slog.Logger
}

// NewRenderer creates a Renderer, filling unset Config fields with defaults.
func NewRenderer(cfg Config) *Renderer {
	r := &Renderer{
		dir:    cfg.StorageDirectory,
		loader: cfg.Loader,
		fonts:  cfg.Fonts,
		now:    cfg.Now,
		logger: cfg.Logger,
	}
	if r.dir == "" {
		r.dir = DefaultStorageDirectory()
	}
	if r.loader == nil {
		r.loader = imaging.NewLoader(nil)
	}
	if r.fonts == nil {
		r.fonts = NewSystemFontSource()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// StorageDirectory returns the directory rendered images are written to.
func (r *Renderer) StorageDirectory() string {
	return r.dir
}

// Render draws detections onto the image at imageURI and returns the path of
// the written PNG.
func (r *Renderer) Render(ctx context.Context, imageURI string, detections []detection.Formatted, opts Options) (string, error) {
	ref, err := imaging.ParseReference(imageURI)
	if err != nil {
		return "", err
	}
	opts = opts.withDefaults()

	src, err := r.loader.Load(ctx, ref)
	if err != nil {
		return "", err
	}
	canvas := imaging.Canvas(src)

	var face font.Face
	if *opts.ShowLabels {
		face, err = r.fonts.Face(opts.FontSize)
		if err != nil {
			return "", err
		}
		if c, ok := face.(io.Closer); ok {
			defer c.Close()
		}
	}

	colors := AssignColors(detections)
	for _, d := range detections {
		box := boxRect(d.BBox)
		c := colors[d.Name]
		imaging.StrokeRect(canvas, box, opts.BoxThickness, c)
		if face != nil {
			drawLabel(canvas, face, box, d.Name, opts.FontSize, c)
		}
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}
	path := filepath.Join(r.dir, OutputName(ref.BaseName(), r.now()))
	if err := imgio.Save(path, canvas, imgio.PNGEncoder()); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	r.logger.Debug("visualization saved", "path", path, "detections", len(detections))
	return path, nil
}

// OutputName builds "{base}_visualized_{timestamp}.png" with the UTC
// timestamp's ':' and '.' replaced by '-'.
func OutputName(base string, t time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(t.UTC().Format(timestampLayout))
	return fmt.Sprintf("%s_visualized_%s.png", base, stamp)
}

// LabelSize estimates the label background size for text at fontSize.
func LabelSize(text string, fontSize float64) (width, height int) {
	width = int(math.Round(float64(utf8.RuneCountInString(text))*fontSize*charWidthRatio)) + labelPadding
	height = int(math.Round(fontSize)) + labelExtraHeight
	return width, height
}

func boxRect(b detection.BBox) image.Rectangle {
	return image.Rect(
		int(math.Round(b.XMin)), int(math.Round(b.YMin)),
		int(math.Round(b.XMax)), int(math.Round(b.YMax)),
	)
}

// drawLabel places the label above box, or just inside its top edge when
// there is no room above.
func drawLabel(dst *image.NRGBA, face font.Face, box image.Rectangle, text string, fontSize float64, bg color.Color) {
	w, h := LabelSize(text, fontSize)
	top := box.Min.Y - h
	if top < dst.Bounds().Min.Y {
		top = box.Min.Y
	}
	label := image.Rect(box.Min.X, top, box.Min.X+w, top+h)
	imaging.FillRect(dst, label, bg)

	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	baseline := top + (h-ascent-descent)/2 + ascent
	imaging.DrawText(dst, face, box.Min.X+labelPadding/2, baseline, text, LabelTextColor)
}
