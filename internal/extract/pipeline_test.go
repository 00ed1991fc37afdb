package extract

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/spectra/internal/colour"
)

func TestExtractPaletteUniform(t *testing.T) {
	buf := solidBuffer(100, 100, colour.RGB{R: 255})
	opts := DefaultOptions()
	opts.Colours = 5

	palette, err := ExtractPalette(buf, opts)
	if err != nil {
		t.Fatalf("ExtractPalette() error: %v", err)
	}
	if got := palette.ToHex(); !reflect.DeepEqual(got, []string{"#FF0000"}) {
		t.Errorf("ExtractPalette() = %v, want [#FF0000]", got)
	}
	if palette.Samples != 10000 || palette.Buckets != 1 {
		t.Errorf("Samples/Buckets = %d/%d, want 10000/1", palette.Samples, palette.Buckets)
	}
}

func TestExtractPaletteCheckerboard(t *testing.T) {
	buf := checkerboard(64, 64, colour.RGB{R: 255}, colour.RGB{B: 255})

	for _, m := range []Method{MethodDominant, MethodVibrant, MethodMuted, MethodBalanced} {
		t.Run(string(m), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Colours = 2
			opts.Method = m

			palette, err := ExtractPalette(buf, opts)
			if err != nil {
				t.Fatalf("ExtractPalette() error: %v", err)
			}
			want := []string{"#FF0000", "#0000FF"}
			if got := palette.ToHex(); !reflect.DeepEqual(got, want) {
				t.Errorf("ExtractPalette() = %v, want %v", got, want)
			}
		})
	}
}

func TestExtractPaletteEmpty(t *testing.T) {
	tests := []struct {
		name    string
		buf     PixelBuffer
		colours int
	}{
		{name: "zero colours", buf: noiseBuffer(10, 10, 1), colours: 0},
		{name: "zero pixels", buf: PixelBuffer{Channels: 4}, colours: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Colours = tt.colours
			palette, err := ExtractPalette(tt.buf, opts)
			if err != nil {
				t.Fatalf("ExtractPalette() error: %v", err)
			}
			if palette.Len() != 0 || palette.Swatches == nil {
				t.Errorf("ExtractPalette() = %v, want empty non-nil palette", palette.Swatches)
			}
		})
	}
}

func TestExtractPaletteErrors(t *testing.T) {
	good := noiseBuffer(8, 8, 1)

	tests := []struct {
		name    string
		buf     PixelBuffer
		modify  func(*Options)
		wantErr error
	}{
		{name: "negative colours", buf: good, modify: func(o *Options) { o.Colours = -1 }, wantErr: colour.ErrInvalidInput},
		{name: "unknown method", buf: good, modify: func(o *Options) { o.Method = "loud" }, wantErr: ErrUnknownMethod},
		{name: "nan saturation", buf: good, modify: func(o *Options) { o.Saturation = math.NaN() }, wantErr: colour.ErrInvalidInput},
		{name: "negative sample target", buf: good, modify: func(o *Options) { o.SampleTarget = -10 }, wantErr: colour.ErrOutOfRange},
		{name: "negative step", buf: good, modify: func(o *Options) { o.QuantStep = -1 }, wantErr: colour.ErrOutOfRange},
		{name: "missing pixels", buf: PixelBuffer{Width: 4, Height: 4, Channels: 3}, modify: func(*Options) {}, wantErr: colour.ErrInvalidInput},
		{name: "wrong length", buf: PixelBuffer{Pix: make([]uint8, 10), Width: 2, Height: 2, Channels: 3}, modify: func(*Options) {}, wantErr: colour.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			_, err := ExtractPalette(tt.buf, opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ExtractPalette() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractPaletteDeterministic(t *testing.T) {
	buf := noiseBuffer(200, 150, 42)

	var want []colour.Swatch
	for _, workers := range []int{0, 1, 3, 8} {
		opts := DefaultOptions()
		opts.Colours = 12
		opts.Method = MethodBalanced
		opts.Workers = workers

		for range 2 {
			palette, err := ExtractPalette(buf, opts)
			if err != nil {
				t.Fatalf("ExtractPalette() error: %v", err)
			}
			if want == nil {
				want = palette.Swatches
				continue
			}
			if !reflect.DeepEqual(palette.Swatches, want) {
				t.Fatalf("workers %d: ExtractPalette() = %v, want %v", workers, palette.ToHex(), hexesOf(want))
			}
		}
	}
}

func TestExtractPaletteCount(t *testing.T) {
	buf := noiseBuffer(120, 80, 8)
	opts := DefaultOptions()

	hist, err := Quantize(buf, opts.quantizeOptions())
	if err != nil {
		t.Fatalf("Quantize() error: %v", err)
	}
	distinct := len(hist.Candidates())

	for _, n := range []int{1, 5, 30, distinct, distinct + 50} {
		opts.Colours = n
		palette, err := ExtractPalette(buf, opts)
		if err != nil {
			t.Fatalf("ExtractPalette(n=%d) error: %v", n, err)
		}
		if want := min(n, distinct); palette.Len() != want {
			t.Errorf("ExtractPalette(n=%d) returned %d colours, want %d", n, palette.Len(), want)
		}
		if palette.Samples != hist.Samples || palette.Buckets != distinct {
			t.Errorf("metadata = %d/%d, want %d/%d", palette.Samples, palette.Buckets, hist.Samples, distinct)
		}
	}
}

func TestExtractPaletteDesaturated(t *testing.T) {
	opts := DefaultOptions()
	opts.Saturation = 0
	opts.Colours = 10

	palette, err := ExtractPalette(noiseBuffer(60, 60, 13), opts)
	if err != nil {
		t.Fatalf("ExtractPalette() error: %v", err)
	}
	for _, s := range palette.Swatches {
		if s.RGB.R != s.RGB.G || s.RGB.G != s.RGB.B {
			t.Errorf("swatch %s is not grey", s.Hex())
		}
	}
}

func TestExtractPaletteDefaultsMethod(t *testing.T) {
	buf := noiseBuffer(30, 30, 21)
	opts := DefaultOptions()
	opts.Colours = 6
	opts.Logger = hclog.NewNullLogger()

	want, err := ExtractPalette(buf, opts)
	if err != nil {
		t.Fatalf("ExtractPalette() error: %v", err)
	}

	opts.Method = ""
	got, err := ExtractPalette(buf, opts)
	if err != nil {
		t.Fatalf("ExtractPalette() error: %v", err)
	}
	if !reflect.DeepEqual(got.ToHex(), want.ToHex()) {
		t.Errorf("empty method = %v, want dominant %v", got.ToHex(), want.ToHex())
	}
}

func hexesOf(swatches []colour.Swatch) []string {
	out := make([]string, len(swatches))
	for i, s := range swatches {
		out[i] = s.Hex()
	}
	return out
}

// colourBlocks lays out eight solid blocks in a 2x4 grid.
func colourBlocks(width, height int, blocks []colour.RGB) PixelBuffer {
	pix := make([]uint8, 0, width*height*3)
	bw, bh := width/2, height/4
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := blocks[(y/bh)*2+x/bw]
			pix = append(pix, c.R, c.G, c.B)
		}
	}
	return PixelBuffer{Pix: pix, Width: width, Height: height, Channels: 3}
}

func TestExtractPaletteColourBlocks(t *testing.T) {
	blocks := []colour.RGB{
		{R: 255}, {G: 255}, {B: 255}, {R: 255, G: 255},
		{R: 255, B: 255}, {G: 255, B: 255}, {R: 128, G: 128, B: 128}, {R: 255, G: 128},
	}
	buf := colourBlocks(40, 40, blocks)

	opts := DefaultOptions()
	opts.Colours = len(blocks)
	palette, err := ExtractPalette(buf, opts)
	if err != nil {
		t.Fatalf("ExtractPalette() error: %v", err)
	}

	want := []string{"#FF0000", "#808080", "#FF8000", "#FFFF00", "#00FF00", "#00FFFF", "#0000FF", "#FF00FF"}
	if got := palette.ToHex(); !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractPalette() = %v, want %v", got, want)
	}
	for _, s := range palette.Swatches {
		if s.Count != 200 {
			t.Errorf("%s count = %d, want 200", s.Hex(), s.Count)
		}
	}
}
