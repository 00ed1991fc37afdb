package extract

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/jmylchreest/spectra/internal/colour"
)

const (
	// DefaultSampleTarget is the approximate number of pixels visited per image.
	DefaultSampleTarget = 20000

	// DefaultQuantStep is the Lab bucket size. Smaller steps yield more
	// distinct candidates at the cost of more buckets to score.
	DefaultQuantStep = 5.0
)

// QuantizeOptions controls histogram construction.
type QuantizeOptions struct {
	// SampleTarget bounds the number of pixels visited. Zero selects
	// DefaultSampleTarget.
	SampleTarget int

	// Step is the Lab quantisation step. Zero selects DefaultQuantStep.
	Step float64

	// Workers is the number of goroutines used. Zero picks a default.
	Workers int
}

func (o QuantizeOptions) normalised() (QuantizeOptions, error) {
	if o.SampleTarget < 0 {
		return o, fmt.Errorf("%w: sample target %d must not be negative", colour.ErrOutOfRange, o.SampleTarget)
	}
	if o.SampleTarget == 0 {
		o.SampleTarget = DefaultSampleTarget
	}
	if math.IsNaN(o.Step) || math.IsInf(o.Step, 0) {
		return o, fmt.Errorf("%w: quantisation step must be a finite number", colour.ErrInvalidInput)
	}
	if o.Step < 0 {
		return o, fmt.Errorf("%w: quantisation step %g must not be negative", colour.ErrOutOfRange, o.Step)
	}
	if o.Step == 0 {
		o.Step = DefaultQuantStep
	}
	return o, nil
}

// BucketKey identifies a histogram cell by the index of the step multiple
// nearest to each Lab coordinate.
type BucketKey struct {
	L, A, B int
}

// Lab returns the quantised Lab coordinate the key stands for.
func (k BucketKey) Lab(step float64) colour.Lab {
	return colour.Lab{L: float64(k.L) * step, A: float64(k.A) * step, B: float64(k.B) * step}
}

func keyFor(lab colour.Lab, step float64) BucketKey {
	return BucketKey{
		L: int(math.Round(lab.L / step)),
		A: int(math.Round(lab.A / step)),
		B: int(math.Round(lab.B / step)),
	}
}

// Bucket accumulates the samples that fall into one histogram cell.
type Bucket struct {
	Key   BucketKey
	Count int

	sumR, sumG, sumB int
}

func (b *Bucket) add(c colour.RGB) {
	b.Count++
	b.sumR += int(c.R)
	b.sumG += int(c.G)
	b.sumB += int(c.B)
}

func (b *Bucket) merge(other *Bucket) {
	b.Count += other.Count
	b.sumR += other.sumR
	b.sumG += other.sumG
	b.sumB += other.sumB
}

// Colour returns the mean colour of the bucket's samples.
func (b *Bucket) Colour() colour.RGB {
	if b.Count == 0 {
		return colour.RGB{}
	}
	mean := func(sum int) uint8 {
		return colour.ClampChannel(int(math.Round(float64(sum) / float64(b.Count))))
	}
	return colour.RGB{R: mean(b.sumR), G: mean(b.sumG), B: mean(b.sumB)}
}

// Histogram maps quantised Lab cells to sample counts.
type Histogram struct {
	// Samples is the number of pixels visited; bucket counts sum to it.
	Samples int

	// Step is the quantisation step the histogram was built with.
	Step float64

	buckets map[BucketKey]*Bucket
}

func newHistogram(step float64) *Histogram {
	return &Histogram{Step: step, buckets: make(map[BucketKey]*Bucket)}
}

func (h *Histogram) add(c colour.RGB) {
	key := keyFor(colour.RGBToLab(c), h.Step)
	b, ok := h.buckets[key]
	if !ok {
		b = &Bucket{Key: key}
		h.buckets[key] = b
	}
	b.add(c)
	h.Samples++
}

func (h *Histogram) merge(other *Histogram) {
	for key, ob := range other.buckets {
		b, ok := h.buckets[key]
		if !ok {
			b = &Bucket{Key: key}
			h.buckets[key] = b
		}
		b.merge(ob)
	}
	h.Samples += other.Samples
}

// Len returns the number of non-empty buckets.
func (h *Histogram) Len() int {
	return len(h.buckets)
}

// Buckets returns the buckets ordered by key.
func (h *Histogram) Buckets() []Bucket {
	out := make([]Bucket, 0, len(h.buckets))
	for _, b := range h.buckets {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b Bucket) int {
		return cmp.Or(cmp.Compare(a.Key.L, b.Key.L), cmp.Compare(a.Key.A, b.Key.A), cmp.Compare(a.Key.B, b.Key.B))
	})
	return out
}

// Candidates converts the buckets into unscored candidates, one per distinct
// representative colour, sorted by hex. Buckets whose mean colours coincide
// are merged.
func (h *Histogram) Candidates() []Candidate {
	byColour := make(map[colour.RGB]int, len(h.buckets))
	out := make([]Candidate, 0, len(h.buckets))
	for _, b := range h.buckets {
		rgb := b.Colour()
		if idx, ok := byColour[rgb]; ok {
			out[idx].Count += b.Count
			continue
		}
		byColour[rgb] = len(out)
		out = append(out, newCandidate(rgb, b.Count))
	}
	slices.SortFunc(out, func(a, b Candidate) int { return cmp.Compare(a.Hex, b.Hex) })
	return out
}

// Stride returns the sampling stride for a buffer of pixelCount pixels.
func Stride(pixelCount, sampleTarget int) int {
	if sampleTarget <= 0 {
		return 1
	}
	return max(1, pixelCount/sampleTarget)
}

// Quantize samples every stride-th pixel of buf, converts it to Lab and counts
// it in the cell whose coordinates are the nearest multiples of the step.
// The sampled range is split across workers into partial histograms that are
// merged once all workers finish, so the result does not depend on Workers.
func Quantize(buf PixelBuffer, opts QuantizeOptions) (*Histogram, error) {
	opts, err := opts.normalised()
	if err != nil {
		return nil, err
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	stride := Stride(buf.Len(), opts.SampleTarget)
	samples := (buf.Len() + stride - 1) / stride

	workers := normaliseWorkers(opts.Workers, max(samples, 1))
	partials := make([]*Histogram, workers)
	parallel(samples, workers, func(worker, start, end int) {
		local := newHistogram(opts.Step)
		for j := start; j < end; j++ {
			local.add(buf.At(j * stride))
		}
		partials[worker] = local
	})

	hist := newHistogram(opts.Step)
	for _, p := range partials {
		if p != nil {
			hist.merge(p)
		}
	}
	return hist, nil
}
