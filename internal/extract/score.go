package extract

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/jmylchreest/spectra/internal/colour"
)

// Method names a scoring strategy.
type Method string

const (
	// MethodDominant ranks purely by frequency.
	MethodDominant Method = "dominant"

	// MethodVibrant favours saturated, bright colours.
	MethodVibrant Method = "vibrant"

	// MethodMuted favours mid saturation with brightness.
	MethodMuted Method = "muted"

	// MethodBalanced combines chroma, brightness and distance of the hue from
	// the middle of the wheel.
	MethodBalanced Method = "balanced"
)

// ErrUnknownMethod is returned for a method name with no registered scorer.
var ErrUnknownMethod = fmt.Errorf("%w: unknown scoring method", colour.ErrInvalidInput)

// ScoreFunc scores a colour; results below zero are treated as zero.
type ScoreFunc func(colour.HSV) float64

// MethodInfo describes a registered method.
type MethodInfo struct {
	Name        Method
	Description string
}

type methodEntry struct {
	info  MethodInfo
	score ScoreFunc
}

var (
	methodsMu sync.RWMutex
	methods   = map[Method]methodEntry{}
)

func init() {
	builtins := []struct {
		name Method
		desc string
		fn   ScoreFunc
	}{
		{MethodDominant, "most frequent colours", func(colour.HSV) float64 { return 1 }},
		{MethodVibrant, "saturated and bright", func(c colour.HSV) float64 { return c.S * c.V }},
		{MethodMuted, "mid saturation, bright", func(c colour.HSV) float64 {
			return (1 - math.Abs(c.S-0.5)) * c.V
		}},
		{MethodBalanced, "colourful, bright, hues away from cyan", func(c colour.HSV) float64 {
			return c.S * c.V * (0.5 + math.Abs(c.H-0.5))
		}},
	}
	for _, b := range builtins {
		if err := RegisterMethod(b.name, b.desc, b.fn); err != nil {
			panic(err)
		}
	}
}

// RegisterMethod adds a scoring strategy. Names are case-insensitive and may
// only be registered once.
func RegisterMethod(name Method, description string, fn ScoreFunc) error {
	name = Method(strings.ToLower(strings.TrimSpace(string(name))))
	if name == "" || fn == nil {
		return fmt.Errorf("%w: method needs a name and a score function", colour.ErrInvalidInput)
	}

	methodsMu.Lock()
	defer methodsMu.Unlock()
	if _, exists := methods[name]; exists {
		return fmt.Errorf("%w: method %q already registered", colour.ErrInvalidInput, name)
	}
	methods[name] = methodEntry{info: MethodInfo{Name: name, Description: description}, score: fn}
	return nil
}

// Methods returns the registered methods sorted by name.
func Methods() []MethodInfo {
	methodsMu.RLock()
	defer methodsMu.RUnlock()

	out := make([]MethodInfo, 0, len(methods))
	for _, m := range methods {
		out = append(out, m.info)
	}
	slices.SortFunc(out, func(a, b MethodInfo) int { return strings.Compare(string(a.Name), string(b.Name)) })
	return out
}

// ParseMethod resolves a method name, ignoring case.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if _, err := scorer(m); err != nil {
		return "", err
	}
	return m, nil
}

func scorer(m Method) (ScoreFunc, error) {
	methodsMu.RLock()
	defer methodsMu.RUnlock()
	entry, ok := methods[m]
	if !ok {
		names := make([]string, 0, len(methods))
		for name := range methods {
			names = append(names, string(name))
		}
		slices.Sort(names)
		return nil, fmt.Errorf("%w: %q (valid methods: %s)", ErrUnknownMethod, m, strings.Join(names, ", "))
	}
	return entry.score, nil
}

// Score returns the non-negative score of hsv under method.
func Score(hsv colour.HSV, method Method) (float64, error) {
	fn, err := scorer(method)
	if err != nil {
		return 0, err
	}
	return clampScore(fn(hsv)), nil
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	}
	return v
}

// Candidate is a histogram colour with its frequency and score.
type Candidate struct {
	Hex    string
	RGB    colour.RGB
	HSV    colour.HSV
	Lab    colour.Lab
	Count  int
	Score  float64
	Weight float64
}

func newCandidate(rgb colour.RGB, count int) Candidate {
	return Candidate{
		Hex:   rgb.Hex(),
		RGB:   rgb,
		HSV:   rgb.HSV(),
		Lab:   rgb.Lab(),
		Count: count,
	}
}

// ScoreCandidates returns a copy of cands with Score and Weight filled in
// for method. Weight is Score multiplied by Count.
func ScoreCandidates(cands []Candidate, method Method) ([]Candidate, error) {
	fn, err := scorer(method)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, len(cands))
	for i, c := range cands {
		c.Score = clampScore(fn(c.HSV))
		c.Weight = c.Score * float64(c.Count)
		out[i] = c
	}
	return out, nil
}

// Swatch converts the candidate to a palette swatch.
func (c Candidate) Swatch() colour.Swatch {
	return colour.Swatch{RGB: c.RGB, HSV: c.HSV, Count: c.Count, Weight: c.Weight}
}
