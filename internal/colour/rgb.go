// Package colour provides colour-space conversions and the palette types
// produced by extraction.
package colour

import "fmt"

// RGB represents an 8-bit sRGB colour.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as an uppercase hex string (e.g., "#1A2B3C").
func (rgb RGB) Hex() string {
	return FormatHex(int(rgb.R), int(rgb.G), int(rgb.B))
}

// HSV converts the colour to HSV.
func (rgb RGB) HSV() HSV {
	return RGBToHSV(rgb)
}

// Lab converts the colour to CIELAB.
func (rgb RGB) Lab() Lab {
	return RGBToLab(rgb)
}

// Complementary returns the channel-wise inverse of the colour.
func (rgb RGB) Complementary() RGB {
	return RGB{R: 255 - rgb.R, G: 255 - rgb.G, B: 255 - rgb.B}
}

// ClampChannel clamps an integer channel value to [0, 255].
func ClampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// clampUnit clamps v to [0, 1]. NaN maps to 0.
func clampUnit(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
