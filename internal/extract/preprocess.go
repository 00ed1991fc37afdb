package extract

import (
	"fmt"
	"math"

	"github.com/jmylchreest/spectra/internal/colour"
)

// Adjust scales the saturation and value of every pixel by the given
// percentages and returns a new buffer; the input is left untouched.
// 100/100 is the identity. Negative percentages clamp to zero and the scaled
// components clamp to [0, 1]. Alpha is copied through unchanged.
func Adjust(buf PixelBuffer, saturationPct, brightnessPct float64) (PixelBuffer, error) {
	return adjust(buf, saturationPct, brightnessPct, 0)
}

func adjust(buf PixelBuffer, saturationPct, brightnessPct float64, workers int) (PixelBuffer, error) {
	if !isFinite(saturationPct) || !isFinite(brightnessPct) {
		return PixelBuffer{}, fmt.Errorf("%w: saturation and brightness must be finite numbers", colour.ErrInvalidInput)
	}
	if err := buf.Validate(); err != nil {
		return PixelBuffer{}, err
	}

	out := buf
	out.Pix = make([]uint8, len(buf.Pix))
	copy(out.Pix, buf.Pix)

	satFactor := math.Max(0, saturationPct) / 100
	valFactor := math.Max(0, brightnessPct) / 100
	if satFactor == 1 && valFactor == 1 {
		return out, nil
	}

	parallel(buf.Len(), workers, func(_, start, end int) {
		for i := start; i < end; i++ {
			hsv := colour.RGBToHSV(buf.At(i))
			hsv.S = clampUnit(hsv.S * satFactor)
			hsv.V = clampUnit(hsv.V * valFactor)
			rgb := colour.HSVToRGB(hsv)

			o := i * buf.Channels
			out.Pix[o] = rgb.R
			out.Pix[o+1] = rgb.G
			out.Pix[o+2] = rgb.B
		}
	})

	return out, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clampUnit(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
