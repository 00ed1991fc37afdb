package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/spectra/internal/colour"
	"github.com/jmylchreest/spectra/internal/config"
)

const previewWidth = 8

// formatPalette formats the palette according to the specified format.
// Preview adds ANSI colour swatches to the text formats.
func formatPalette(palette *colour.Palette, format string, preview bool) (string, error) {
	switch format {
	case "hex":
		return formatLines(palette, preview, func(s colour.Swatch) string { return s.Hex() }), nil
	case "rgb":
		return formatLines(palette, preview, func(s colour.Swatch) string { return s.RGB.String() }), nil
	case "hsv":
		return formatLines(palette, preview, func(s colour.Swatch) string { return s.HSV.String() }), nil
	case "json":
		data, err := palette.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(data) + "\n", nil
	case "yaml":
		data, err := palette.ToYAML()
		if err != nil {
			return "", fmt.Errorf("failed to convert to YAML: %w", err)
		}
		return string(data), nil
	case "table":
		return formatTable(palette, preview), nil
	default:
		return "", fmt.Errorf("%w: unsupported format: %s (supported: %s)",
			colour.ErrInvalidInput, format, strings.Join(config.Formats, ", "))
	}
}

// formatLines writes one colour per line, optionally prefixed by a swatch.
func formatLines(palette *colour.Palette, preview bool, text func(colour.Swatch) string) string {
	var b strings.Builder
	for _, s := range palette.Swatches {
		if preview {
			b.WriteString(colour.ColourPreview(s.RGB, previewWidth))
			b.WriteString(" ")
		}
		b.WriteString(text(s))
		b.WriteString("\n")
	}
	return b.String()
}

func formatTable(palette *colour.Palette, preview bool) string {
	headers := []string{"Hex", "RGB", "Hue", "Sat", "Bright", "Complement", "Count", "Weight"}
	if preview {
		headers = append([]string{"Swatch"}, headers...)
	}
	table := NewTable(headers)
	offset := len(headers) - 8
	for _, col := range []int{2, 3, 4, 6, 7} {
		table.AlignRight(offset + col)
	}

	for _, s := range palette.Swatches {
		row := []string{
			s.Hex(),
			fmt.Sprintf("%d,%d,%d", s.RGB.R, s.RGB.G, s.RGB.B),
			strconv.FormatFloat(s.HSV.H, 'f', 3, 64),
			strconv.FormatFloat(s.HSV.S, 'f', 3, 64),
			strconv.FormatFloat(s.HSV.V, 'f', 3, 64),
			s.RGB.Complementary().Hex(),
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.Weight, 'f', 2, 64),
		}
		if preview {
			row = append([]string{colour.ColourPreview(s.RGB, previewWidth)}, row...)
		}
		table.AddRow(row)
	}

	return table.Render() + fmt.Sprintf("\n%d colours from %d samples (%d candidates)\n",
		palette.Len(), palette.Samples, palette.Buckets)
}
