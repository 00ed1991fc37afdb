package extract

import (
	"math/rand/v2"

	"github.com/jmylchreest/spectra/internal/colour"
)

// solidBuffer returns an RGBA buffer filled with c.
func solidBuffer(width, height int, c colour.RGB) PixelBuffer {
	pix := make([]uint8, width*height*4)
	for i := 0; i < width*height; i++ {
		pix[i*4] = c.R
		pix[i*4+1] = c.G
		pix[i*4+2] = c.B
		pix[i*4+3] = 255
	}
	return PixelBuffer{Pix: pix, Width: width, Height: height, Channels: 4}
}

// checkerboard returns an RGB buffer alternating a and b per pixel.
func checkerboard(width, height int, a, b colour.RGB) PixelBuffer {
	pix := make([]uint8, 0, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := a
			if (x+y)%2 == 1 {
				c = b
			}
			pix = append(pix, c.R, c.G, c.B)
		}
	}
	return PixelBuffer{Pix: pix, Width: width, Height: height, Channels: 3}
}

// noiseBuffer returns a reproducible RGB buffer of random colours drawn from
// a small set of blobs plus noise, so histograms have realistic structure.
func noiseBuffer(width, height int, seed uint64) PixelBuffer {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	bases := []colour.RGB{
		{R: 200, G: 40, B: 40}, {R: 30, G: 120, B: 200}, {R: 240, G: 220, B: 60},
		{R: 20, G: 20, B: 20}, {R: 230, G: 230, B: 230}, {R: 60, G: 170, B: 90},
	}
	jitter := func(v uint8) uint8 {
		return colour.ClampChannel(int(v) + r.IntN(41) - 20)
	}

	pix := make([]uint8, 0, width*height*3)
	for i := 0; i < width*height; i++ {
		base := bases[r.IntN(len(bases))]
		pix = append(pix, jitter(base.R), jitter(base.G), jitter(base.B))
	}
	return PixelBuffer{Pix: pix, Width: width, Height: height, Channels: 3}
}

func randomCandidates(n int, seed uint64) []Candidate {
	r := rand.New(rand.NewPCG(seed, seed+1))
	seen := make(map[colour.RGB]bool)
	out := make([]Candidate, 0, n)
	for len(out) < n {
		rgb := colour.RGB{R: uint8(r.IntN(256)), G: uint8(r.IntN(256)), B: uint8(r.IntN(256))}
		if seen[rgb] {
			continue
		}
		seen[rgb] = true
		c := newCandidate(rgb, 1+r.IntN(50))
		c.Score = 1
		c.Weight = float64(c.Count)
		out = append(out, c)
	}
	return out
}

func hexes(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Hex
	}
	return out
}
