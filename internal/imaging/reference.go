package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
)

// URI scheme prefixes accepted for image references.
const (
	FileScheme  = "file://"
	HTTPSScheme = "https://"
)

// ErrInvalidImageURI is returned when an image reference uses neither the
// file:// nor the https:// scheme.
var ErrInvalidImageURI = errors.New("invalid image file URI")

// ReferenceKind identifies which form an image reference takes.
type ReferenceKind int

const (
	// LocalFile references an image on the local filesystem.
	LocalFile ReferenceKind = iota
	// RemoteHTTPS references an image reachable over HTTPS.
	RemoteHTTPS
)

// String returns a short name for the kind, used in logs.
func (k ReferenceKind) String() string {
	switch k {
	case LocalFile:
		return "file"
	case RemoteHTTPS:
		return "https"
	default:
		return "unknown"
	}
}

// Reference is a parsed, immutable image reference.
//
// Exactly one of Path or URL is meaningful, selected by Kind:
//   - LocalFile: Path holds the raw path portion of the file:// URI
//   - RemoteHTTPS: URL holds the full https:// URI, unchanged
type Reference struct {
	Kind ReferenceKind
	Path string
	URL  string
}

// ParseReference classifies a user supplied image URI.
//
// Parameters:
//   - uri: A string starting with "file://" or "https://".
//
// Returns:
//   - Reference: The classified reference.
//   - error: ErrInvalidImageURI (wrapped) for any other prefix. No I/O is
//     performed in either case.
func ParseReference(uri string) (Reference, error) {
	switch {
	case strings.HasPrefix(uri, FileScheme):
		return Reference{Kind: LocalFile, Path: strings.TrimPrefix(uri, FileScheme)}, nil
	case strings.HasPrefix(uri, HTTPSScheme):
		return Reference{Kind: RemoteHTTPS, URL: uri}, nil
	default:
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidImageURI, uri)
	}
}

// LocalPath returns the filesystem path of a LocalFile reference with any
// percent-encoding removed. For RemoteHTTPS references it returns "".
func (r Reference) LocalPath() string {
	if r.Kind != LocalFile {
		return ""
	}
	if p, err := url.PathUnescape(r.Path); err == nil {
		return p
	}
	return r.Path
}

// BaseName returns the file name of the referenced image without its
// extension, e.g. "street" for "file:///tmp/street.jpg" or
// "https://example.com/img/street.jpg?x=1".
func (r Reference) BaseName() string {
	var p string
	switch r.Kind {
	case LocalFile:
		p = r.LocalPath()
	case RemoteHTTPS:
		if u, err := url.Parse(r.URL); err == nil {
			p = u.Path
		}
	}

	p = strings.ReplaceAll(p, "\\", "/")
	base := path.Base(p)
	if base == "." || base == "/" || base == "" {
		return "image"
	}
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// TransportableImage is the representation of an image sent to the detection
// backend: either a base64 PNG data URI or an https URL used verbatim.
type TransportableImage string

// Resolve turns a user supplied image URI into a TransportableImage.
//
// Local files are read fully and embedded as "data:image/png;base64,...".
// The MIME tag is always image/png; the file's real encoding is not
// inspected and the backend sniffs the payload itself. HTTPS references are
// returned unchanged and fetched later by whoever needs the pixels.
//
// # Errors
//
//   - ErrInvalidImageURI for unsupported schemes (no I/O performed)
//   - A wrapped os error if the local file cannot be read
func Resolve(uri string) (TransportableImage, error) {
	ref, err := ParseReference(uri)
	if err != nil {
		return "", err
	}
	return ResolveReference(ref)
}

// ResolveReference is Resolve for an already parsed reference.
func ResolveReference(ref Reference) (TransportableImage, error) {
	switch ref.Kind {
	case LocalFile:
		data, err := os.ReadFile(ref.Path)
		if err != nil {
			return "", fmt.Errorf("failed to read image: %w", err)
		}
		return TransportableImage("data:image/png;base64," + base64.StdEncoding.EncodeToString(data)), nil
	case RemoteHTTPS:
		return TransportableImage(ref.URL), nil
	default:
		return "", ErrInvalidImageURI
	}
}
