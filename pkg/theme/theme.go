// Package theme maps concept graphs onto light/dark color palettes.
//
// Projection rewrites visual style attributes only: node background,
// foreground, and border, plus edge stroke, label color, and label
// background fill. Topology, identifiers, and layout coordinates are
// never touched, and applying the same palette twice is a no-op.
package theme

// Mode names a built-in palette.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// Palette is the five-slot color set a graph is painted with.
type Palette struct {
	Bg        string `toml:"bg"`
	Color     string `toml:"color"`
	Border    string `toml:"border"`
	Edge      string `toml:"edge"`
	EdgeLabel string `toml:"edge_label"`
}

// Palettes holds the built-in light and dark palettes.
var Palettes = map[Mode]Palette{
	Dark: {
		Bg:        "#1e1e24",
		Color:     "#ffffff",
		Border:    "1px solid #6366f1",
		Edge:      "#6366f1",
		EdgeLabel: "#a5b4fc",
	},
	Light: {
		Bg:        "#ffffff",
		Color:     "#1f2937",
		Border:    "1px solid #4f46e5",
		Edge:      "#4f46e5",
		EdgeLabel: "#4f46e5",
	},
}

// Get returns the palette for mode, falling back to dark for unknown
// modes.
func Get(mode Mode) Palette {
	if p, ok := Palettes[mode]; ok {
		return p
	}
	return Palettes[Dark]
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}
