package extract

import (
	"fmt"

	"github.com/EdlinOrg/prominentcolor"

	"github.com/jmylchreest/spectra/internal/colour"
)

// KMeansExtractor implements colour extraction using k-means clustering.
type KMeansExtractor struct {
	resize    uint
	arguments int
}

// NewKMeansExtractor creates a new KMeansExtractor with default settings.
func NewKMeansExtractor() *KMeansExtractor {
	return &KMeansExtractor{
		resize:    prominentcolor.DefaultSize,
		arguments: prominentcolor.ArgumentNoCropping,
	}
}

// Extract clusters the adjusted image into opts.Colours groups and returns
// the cluster centres in display order. The scoring method is not used;
// clusters are weighted by size.
func (e *KMeansExtractor) Extract(buf PixelBuffer, opts Options) (*colour.Palette, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	log := opts.logger()
	if opts.Colours == 0 || buf.Len() == 0 {
		return colour.NewPalette([]colour.Swatch{}), nil
	}

	adjusted, err := adjust(buf, opts.Saturation, opts.Brightness, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust image: %w", err)
	}

	items, err := prominentcolor.KmeansWithAll(opts.Colours, adjusted.Image(), e.arguments, e.resize, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to cluster colours: %w", err)
	}

	// Centres can coincide on images with fewer distinct colours than k.
	byColour := make(map[colour.RGB]int, len(items))
	cands := make([]Candidate, 0, len(items))
	total := 0
	for _, item := range items {
		rgb := colour.RGB{
			R: colour.ClampChannel(int(item.Color.R)),
			G: colour.ClampChannel(int(item.Color.G)),
			B: colour.ClampChannel(int(item.Color.B)),
		}
		total += item.Cnt
		if idx, ok := byColour[rgb]; ok {
			cands[idx].Count += item.Cnt
			cands[idx].Weight = float64(cands[idx].Count)
			continue
		}
		byColour[rgb] = len(cands)
		c := newCandidate(rgb, item.Cnt)
		c.Score = 1
		c.Weight = float64(item.Cnt)
		cands = append(cands, c)
	}
	log.Debug("clustered", "k", opts.Colours, "clusters", len(items), "distinct", len(cands))

	ordered := Order(cands)
	swatches := make([]colour.Swatch, len(ordered))
	for i, c := range ordered {
		swatches[i] = c.Swatch()
	}

	palette := colour.NewPalette(swatches)
	palette.Samples = total
	palette.Buckets = len(cands)
	return palette, nil
}
