package extract

import (
	"cmp"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/spectra/internal/colour"
)

// DefaultColours is the default palette size.
const DefaultColours = 30

// Options configures a palette extraction.
type Options struct {
	// Colours is the maximum number of colours returned. Zero yields an
	// empty palette.
	Colours int

	// Method selects the scoring strategy. Empty selects MethodDominant.
	Method Method

	// Saturation and Brightness are percentages applied before analysis;
	// 100 leaves the image unchanged.
	Saturation float64
	Brightness float64

	// SampleTarget bounds the number of pixels visited.
	SampleTarget int

	// QuantStep is the Lab bucket size.
	QuantStep float64

	// Workers bounds the goroutines used for adjustment and quantisation.
	Workers int

	// Logger receives debug output. Nil discards it.
	Logger hclog.Logger
}

// DefaultOptions returns the default extraction options.
func DefaultOptions() Options {
	return Options{
		Colours:      DefaultColours,
		Method:       MethodDominant,
		Saturation:   100,
		Brightness:   100,
		SampleTarget: DefaultSampleTarget,
		QuantStep:    DefaultQuantStep,
	}
}

// Validate validates the options.
func (o Options) Validate() error {
	if o.Colours < 0 {
		return fmt.Errorf("%w: colour count must not be negative, got %d", colour.ErrInvalidInput, o.Colours)
	}
	if _, err := scorer(o.method()); err != nil {
		return err
	}
	if !isFinite(o.Saturation) || !isFinite(o.Brightness) {
		return fmt.Errorf("%w: saturation and brightness must be finite numbers", colour.ErrInvalidInput)
	}
	_, err := o.quantizeOptions().normalised()
	return err
}

func (o Options) quantizeOptions() QuantizeOptions {
	return QuantizeOptions{SampleTarget: o.SampleTarget, Step: o.QuantStep, Workers: o.Workers}
}

func (o Options) method() Method {
	return cmp.Or(o.Method, MethodDominant)
}

func (o Options) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

// ExtractPalette runs the full pipeline on buf: adjust saturation and
// brightness, quantise into a Lab histogram, score each candidate, select a
// diverse subset and order it for display.
func ExtractPalette(buf PixelBuffer, opts Options) (*colour.Palette, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	log := opts.logger()
	if opts.Colours == 0 || buf.Len() == 0 {
		log.Debug("nothing to extract", "colours", opts.Colours, "pixels", buf.Len())
		return colour.NewPalette([]colour.Swatch{}), nil
	}

	adjusted, err := adjust(buf, opts.Saturation, opts.Brightness, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust image: %w", err)
	}

	hist, err := Quantize(adjusted, opts.quantizeOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to quantise image: %w", err)
	}
	log.Debug("quantised", "pixels", buf.Len(), "samples", hist.Samples, "buckets", hist.Len(), "step", hist.Step)

	cands, err := ScoreCandidates(hist.Candidates(), opts.method())
	if err != nil {
		return nil, err
	}

	selected := Order(Select(cands, opts.Colours))
	log.Debug("selected", "method", opts.method(), "candidates", len(cands), "requested", opts.Colours, "selected", len(selected))

	swatches := make([]colour.Swatch, len(selected))
	for i, c := range selected {
		swatches[i] = c.Swatch()
	}

	palette := colour.NewPalette(swatches)
	palette.Samples = hist.Samples
	palette.Buckets = len(cands)
	return palette, nil
}
