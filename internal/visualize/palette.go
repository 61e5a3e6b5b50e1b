package visualize

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/dinox-mcp/internal/detection"
)

// Palette is the ordered list of box colors.
var Palette = mustParsePalette(
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
	"#008080", "#e6beff", "#9a6324", "#fffac8", "#800000",
	"#aaffc3", "#808000", "#ffd8b1", "#000075", "#808080",
)

// LabelTextColor is used for all label text.
var LabelTextColor = colorful.Color{R: 1, G: 1, B: 1}

func mustParsePalette(hexes ...string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

// AssignColors maps each category to a palette entry by first appearance.
func AssignColors(detections []detection.Formatted) map[string]colorful.Color {
	colors := make(map[string]colorful.Color)
	for _, d := range detections {
		if _, ok := colors[d.Name]; ok {
			continue
		}
		colors[d.Name] = Palette[len(colors)%len(Palette)]
	}
	return colors
}
