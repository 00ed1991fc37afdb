package extract

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// Tie bands used by the display ordering.
const (
	hueTieBand        = 0.01
	saturationTieBand = 0.01
)

// Rank returns a copy of cands sorted by descending weight, ties broken by
// ascending hex.
func Rank(cands []Candidate) []Candidate {
	ranked := slices.Clone(cands)
	slices.SortFunc(ranked, func(a, b Candidate) int {
		return cmp.Or(cmp.Compare(b.Weight, a.Weight), strings.Compare(a.Hex, b.Hex))
	})
	return ranked
}

// Select picks up to n candidates by greedy farthest-point sampling in Lab
// space. The highest-ranked candidate seeds the set; each further pick is the
// remaining candidate whose distance to its nearest selected colour is
// largest, ties going to higher weight and then lower hex. The result is in
// selection order.
func Select(cands []Candidate, n int) []Candidate {
	if n <= 0 || len(cands) == 0 {
		return []Candidate{}
	}

	ranked := Rank(cands)
	n = min(n, len(ranked))

	selected := make([]Candidate, 0, n)
	selected = append(selected, ranked[0])

	pool := ranked[1:]
	nearest := make([]float64, len(pool))
	for i := range pool {
		nearest[i] = pool[i].Lab.Distance(ranked[0].Lab)
	}

	for len(selected) < n && len(pool) > 0 {
		best := 0
		for i := 1; i < len(pool); i++ {
			if fartherThan(pool[i], nearest[i], pool[best], nearest[best]) {
				best = i
			}
		}

		pick := pool[best]
		selected = append(selected, pick)
		pool = slices.Delete(pool, best, best+1)
		nearest = slices.Delete(nearest, best, best+1)

		for i := range pool {
			if d := pool[i].Lab.Distance(pick.Lab); d < nearest[i] {
				nearest[i] = d
			}
		}
	}

	return selected
}

func fartherThan(a Candidate, da float64, b Candidate, db float64) bool {
	if da != db {
		return da > db
	}
	if a.Weight != b.Weight {
		return a.Weight > b.Weight
	}
	return a.Hex < b.Hex
}

// Order sorts cands for display: hue ascending; within 0.01 of hue,
// saturation descending; within 0.01 of saturation, value descending. The
// input is first put in hex order so the result depends only on the set of
// colours, not on the order they were selected in.
func Order(cands []Candidate) []Candidate {
	ordered := slices.Clone(cands)
	slices.SortFunc(ordered, func(a, b Candidate) int { return strings.Compare(a.Hex, b.Hex) })
	slices.SortStableFunc(ordered, compareDisplay)
	return ordered
}

func compareDisplay(a, b Candidate) int {
	if math.Abs(a.HSV.H-b.HSV.H) > hueTieBand {
		return cmp.Compare(a.HSV.H, b.HSV.H)
	}
	if math.Abs(a.HSV.S-b.HSV.S) > saturationTieBand {
		return cmp.Compare(b.HSV.S, a.HSV.S)
	}
	return cmp.Compare(b.HSV.V, a.HSV.V)
}

// MinPairwiseDistance returns the smallest Lab distance between any two
// candidates, or +Inf when there are fewer than two.
func MinPairwiseDistance(cands []Candidate) float64 {
	best := math.Inf(1)
	for i := range cands {
		for j := i + 1; j < len(cands); j++ {
			best = math.Min(best, cands[i].Lab.Distance(cands[j].Lab))
		}
	}
	return best
}
