package extract

import (
	"fmt"

	"github.com/jmylchreest/spectra/internal/colour"
)

// Extractor defines the interface for colour extraction algorithms.
type Extractor interface {
	// Extract extracts a colour palette from a pixel buffer.
	Extract(buf PixelBuffer, opts Options) (*colour.Palette, error)
}

// Algorithm represents the colour extraction algorithm type.
type Algorithm string

const (
	// AlgorithmFarthest quantises into a Lab histogram and picks colours by
	// farthest-point selection. It is deterministic.
	AlgorithmFarthest Algorithm = "farthest"

	// AlgorithmKMeans clusters the adjusted image with k-means. Useful as a
	// comparison; seeding makes it non-deterministic.
	AlgorithmKMeans Algorithm = "kmeans"
)

// ErrUnknownAlgorithm is returned for an unrecognised algorithm name.
var ErrUnknownAlgorithm = fmt.Errorf("%w: unknown algorithm", colour.ErrInvalidInput)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmFarthest,
		AlgorithmKMeans,
	}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// NewExtractor creates a new Extractor based on the specified algorithm.
func NewExtractor(alg Algorithm) (Extractor, error) {
	switch alg {
	case AlgorithmFarthest, "":
		return FarthestPointExtractor{}, nil
	case AlgorithmKMeans:
		return NewKMeansExtractor(), nil
	default:
		return nil, fmt.Errorf("%w: %s (valid algorithms: %v)", ErrUnknownAlgorithm, alg, ValidAlgorithms())
	}
}

// FarthestPointExtractor runs ExtractPalette.
type FarthestPointExtractor struct{}

// Extract implements Extractor.
func (FarthestPointExtractor) Extract(buf PixelBuffer, opts Options) (*colour.Palette, error) {
	return ExtractPalette(buf, opts)
}
