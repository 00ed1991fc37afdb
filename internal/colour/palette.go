package colour

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Swatch is one colour of an extracted palette.
type Swatch struct {
	RGB RGB
	HSV HSV

	// Count is the number of sampled pixels represented by the swatch.
	Count int

	// Weight is the method score multiplied by Count.
	Weight float64
}

// NewSwatch builds a swatch for rgb, deriving its HSV triple.
func NewSwatch(rgb RGB, count int, weight float64) Swatch {
	return Swatch{
		RGB:    rgb,
		HSV:    RGBToHSV(rgb),
		Count:  count,
		Weight: weight,
	}
}

// Hex returns the swatch colour as "#RRGGBB".
func (s Swatch) Hex() string {
	return s.RGB.Hex()
}

// Palette represents an ordered collection of colours extracted from an image.
type Palette struct {
	Swatches []Swatch

	// Samples is the number of pixels the extraction actually visited.
	Samples int

	// Buckets is the number of distinct candidates considered.
	Buckets int
}

// NewPalette creates a new Palette with the given swatches.
func NewPalette(swatches []Swatch) *Palette {
	return &Palette{
		Swatches: swatches,
	}
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Swatches)
}

// ToHex converts the palette colours to hex strings, preserving order.
func (p *Palette) ToHex() []string {
	hexColours := make([]string, len(p.Swatches))
	for i, s := range p.Swatches {
		hexColours[i] = s.Hex()
	}
	return hexColours
}

// SwatchDocument is the serialised form of a swatch. Hue, saturation and
// brightness are in [0, 1], matching what swatch-file exporters expect.
type SwatchDocument struct {
	Hex           string  `json:"hex" yaml:"hex"`
	RGB           RGB     `json:"rgb" yaml:"rgb"`
	HSV           HSV     `json:"hsv" yaml:"hsv"`
	Complementary string  `json:"complementary" yaml:"complementary"`
	Count         int     `json:"count" yaml:"count"`
	Weight        float64 `json:"weight" yaml:"weight"`
}

// PaletteDocument is the serialised form of a palette.
type PaletteDocument struct {
	Count   int              `json:"count" yaml:"count"`
	Samples int              `json:"samples" yaml:"samples"`
	Buckets int              `json:"buckets" yaml:"buckets"`
	Colours []SwatchDocument `json:"colours" yaml:"colours"`
}

// Document converts the palette to its serialisable form.
func (p *Palette) Document() PaletteDocument {
	doc := PaletteDocument{
		Count:   len(p.Swatches),
		Samples: p.Samples,
		Buckets: p.Buckets,
		Colours: make([]SwatchDocument, len(p.Swatches)),
	}
	for i, s := range p.Swatches {
		doc.Colours[i] = SwatchDocument{
			Hex:           s.Hex(),
			RGB:           s.RGB,
			HSV:           s.HSV,
			Complementary: s.RGB.Complementary().Hex(),
			Count:         s.Count,
			Weight:        s.Weight,
		}
	}
	return doc
}

// ToJSON converts the palette to indented JSON.
func (p *Palette) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p.Document(), "", "  ")
}

// ToYAML converts the palette to YAML.
func (p *Palette) ToYAML() ([]byte, error) {
	return yaml.Marshal(p.Document())
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if len(p.Swatches) == 0 {
		return "Empty palette"
	}

	result := fmt.Sprintf("Palette with %d colours:\n", len(p.Swatches))
	for i, s := range p.Swatches {
		result += fmt.Sprintf("  %2d: %s (%s)\n", i+1, s.Hex(), s.RGB.String())
	}
	return result
}

// Get returns the swatch at the specified index.
// Returns an error if the index is out of bounds.
func (p *Palette) Get(index int) (Swatch, error) {
	if index < 0 || index >= len(p.Swatches) {
		return Swatch{}, fmt.Errorf("index out of bounds: %d (palette has %d colours)", index, len(p.Swatches))
	}
	return p.Swatches[index], nil
}

// All returns an iterator over all swatches in the palette.
func (p *Palette) All() func(func(int, Swatch) bool) {
	return func(yield func(int, Swatch) bool) {
		for i, s := range p.Swatches {
			if !yield(i, s) {
				return
			}
		}
	}
}
