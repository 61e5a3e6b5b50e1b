// Package visualize draws detection results onto their source image.
//
// A Renderer loads the image, strokes one rectangle per detection in a color
// chosen by category, optionally adds a filled label with the category name,
// and writes the result as a PNG into a storage directory:
//
//	r := visualize.NewRenderer(visualize.Config{StorageDirectory: dir})
//	path, err := r.Render(ctx, "file:///tmp/street.jpg", detections, visualize.Options{})
//
// Colors come from a fixed 20-entry palette, assigned in the order categories
// first appear and cycled when there are more categories than colors. Label
// fonts come from a FontSource; SystemFontSource searches a per-OS list of
// CJK-capable fonts and falls back to a built-in bitmap face.
package visualize
