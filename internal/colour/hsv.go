package colour

import (
	"fmt"
	"math"
)

// HSV is a colour in hue/saturation/value form. All components are in [0, 1];
// hue is a fraction of a full turn rather than degrees.
type HSV struct {
	H float64 `json:"hue" yaml:"hue"`
	S float64 `json:"saturation" yaml:"saturation"`
	V float64 `json:"brightness" yaml:"brightness"`
}

// RGBToHSV converts RGB to HSV using the six-sector hue computation.
// Black and greys have zero hue and zero saturation.
func RGBToHSV(c RGB) HSV {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal

	hsv := HSV{V: maxVal}
	if maxVal == 0 {
		return hsv
	}
	hsv.S = delta / maxVal

	if delta == 0 {
		return hsv
	}

	switch maxVal {
	case r:
		hsv.H = (g - b) / delta
		if g < b {
			hsv.H += 6
		}
	case g:
		hsv.H = (b-r)/delta + 2
	default:
		hsv.H = (r-g)/delta + 4
	}
	hsv.H /= 6

	return hsv
}

// HSVToRGB converts HSV back to RGB. Hue wraps into [0, 1); saturation and
// value are clamped to [0, 1]. Channels are rounded to the nearest integer.
func HSVToRGB(c HSV) RGB {
	h := c.H - math.Floor(c.H)
	if math.IsNaN(h) || math.IsInf(c.H, 0) {
		h = 0
	}
	s := clampUnit(c.S)
	v := clampUnit(c.V)

	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return RGB{
		R: ClampChannel(int(math.Round(r * 255))),
		G: ClampChannel(int(math.Round(g * 255))),
		B: ClampChannel(int(math.Round(b * 255))),
	}
}

// String returns the colour as "hsv(h, s, v)" with three decimals.
func (c HSV) String() string {
	return fmt.Sprintf("hsv(%.3f, %.3f, %.3f)", c.H, c.S, c.V)
}
