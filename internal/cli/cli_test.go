// Package cli_test provides tests for the CLI package.
package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/spectra/internal/cli"
	"github.com/jmylchreest/spectra/internal/colour"
)

// setupTests isolates the configuration lookup and returns a directory
// holding a uniform red image and a red/blue checkerboard.
func setupTests(t *testing.T) (dir, red, checker string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, env := range os.Environ() {
		if name, _, ok := strings.Cut(env, "="); ok && strings.HasPrefix(name, "SPECTRA_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}

	dir = t.TempDir()
	red = writePNG(t, dir, "red.png", func(x, y int) color.Color { return color.NRGBA{R: 255, A: 255} })
	checker = writePNG(t, dir, "checker.png", func(x, y int) color.Color {
		if (x+y)%2 == 0 {
			return color.NRGBA{R: 255, A: 255}
		}
		return color.NRGBA{B: 255, A: 255}
	})
	return dir, red, checker
}

func writePNG(t *testing.T, dir, name string, at func(x, y int) color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, at(x, y))
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode image: %v", err)
	}
	return path
}

// run executes the root command and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestExtractCommand(t *testing.T) {
	_, red, checker := setupTests(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "uniform hex", args: []string{"extract", "-c", "5", red}, want: "#FF0000\n"},
		{name: "checkerboard", args: []string{"extract", "-c", "2", checker}, want: "#FF0000\n#0000FF\n"},
		{name: "vibrant", args: []string{"extract", "-c", "2", "-m", "VIBRANT", checker}, want: "#FF0000\n#0000FF\n"},
		{name: "rgb", args: []string{"extract", "-f", "rgb", red}, want: "rgb(255, 0, 0)\n"},
		{name: "hsv", args: []string{"extract", "-f", "hsv", red}, want: "hsv(0.000, 1.000, 1.000)\n"},
		{name: "desaturated", args: []string{"extract", "--saturation", "0%", red}, want: "#FFFFFF\n"},
		{name: "darkened", args: []string{"extract", "--brightness", "50", red}, want: "#800000\n"},
		{name: "zero colours", args: []string{"extract", "-c", "0", red}, want: ""},
		{name: "downscaled", args: []string{"extract", "--max-dimension", "8", red}, want: "#FF0000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestExtractDirectory(t *testing.T) {
	dir, _, _ := setupTests(t)

	out, stderr, err := run(t, "--log-level", "info", "extract", "-c", "1", dir)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(out) != len("#FF0000\n") || !strings.HasPrefix(out, "#") {
		t.Errorf("output = %q, want a single hex colour", out)
	}
	if !strings.Contains(stderr, "selected image") {
		t.Errorf("expected the chosen image to be logged, got:\n%s", stderr)
	}
}

func TestExtractStructuredFormats(t *testing.T) {
	_, _, checker := setupTests(t)

	out, _, err := run(t, "extract", "-c", "2", "-f", "json", checker)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	var doc colour.PaletteDocument
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("json.Unmarshal() error: %v\n%s", err, out)
	}
	if doc.Count != 2 || doc.Colours[0].Hex != "#FF0000" || doc.Colours[1].Complementary != "#FFFF00" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.Samples != 32*32 {
		t.Errorf("Samples = %d, want %d", doc.Samples, 32*32)
	}

	out, _, err = run(t, "extract", "-c", "2", "-f", "yaml", checker)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, want := range []string{"hex: '#FF0000'", "hex: '#0000FF'", "saturation: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml output missing %q:\n%s", want, out)
		}
	}

	out, _, err = run(t, "extract", "-c", "2", "-f", "table", "--preview=always", checker)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, want := range []string{"Swatch", "Complement", "#00FFFF", "\x1b[48;2;255;0;0m", "2 colours from 1024 samples"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestExtractPreview(t *testing.T) {
	_, red, _ := setupTests(t)

	out, _, err := run(t, "extract", "--preview", red)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasPrefix(out, "\x1b[48;2;255;0;0m") || !strings.HasSuffix(out, " #FF0000\n") {
		t.Errorf("preview output = %q", out)
	}

	// auto never previews into a buffer.
	out, _, err = run(t, "extract", red)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("auto preview wrote escapes to a non-terminal: %q", out)
	}
}

func TestExtractOutputFile(t *testing.T) {
	dir, red, _ := setupTests(t)
	target := filepath.Join(dir, "palette.txt")

	out, _, err := run(t, "extract", "-o", target, red)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "#FF0000\n" {
		t.Errorf("file = %q", data)
	}
}

func TestExtractKMeans(t *testing.T) {
	_, _, checker := setupTests(t)

	out, _, err := run(t, "extract", "-a", "kmeans", "-c", "2", checker)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 1 || len(lines) > 2 {
		t.Errorf("kmeans output = %q", out)
	}
}

func TestExtractErrors(t *testing.T) {
	dir, red, _ := setupTests(t)
	bogus := filepath.Join(dir, "bogus.png")
	if err := os.WriteFile(bogus, []byte("dummy image data"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{name: "bad saturation", args: []string{"extract", "--saturation", "lots", red}, wantErr: colour.ErrOutOfRange},
		{name: "negative colours", args: []string{"extract", "-c", "-1", red}, wantErr: colour.ErrInvalidInput},
		{name: "unknown method", args: []string{"extract", "-m", "loud", red}, wantErr: colour.ErrInvalidInput},
		{name: "unknown format", args: []string{"extract", "-f", "xml", red}, wantErr: colour.ErrInvalidInput},
		{name: "negative step", args: []string{"extract", "--quant-step", "-1", red}, wantErr: colour.ErrOutOfRange},
		{name: "invalid image", args: []string{"extract", bogus}, wantMsg: "invalid image path"},
		{name: "missing image", args: []string{"extract", filepath.Join(dir, "nope.png")}, wantMsg: "not found"},
		{name: "no args", args: []string{"extract"}, wantMsg: "accepts 1 arg"},
		{name: "verbose and quiet", args: []string{"extract", "-v", "-q", red}, wantMsg: "mutually exclusive"},
		{name: "missing config", args: []string{"--config", filepath.Join(dir, "none.yaml"), "extract", red}, wantMsg: "config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("Execute() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Execute() error = %v, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestConfigCommand(t *testing.T) {
	dir, red, _ := setupTests(t)

	out, _, err := run(t, "config")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "colours: 30") || !strings.Contains(out, "method: dominant") {
		t.Errorf("config output:\n%s", out)
	}

	path := filepath.Join(dir, "spectra.yaml")
	if err := os.WriteFile(path, []byte("colours: 3\nformat: rgb\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPECTRA_METHOD", "balanced")

	out, _, err = run(t, "--config", path, "config")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, want := range []string{"colours: 3", "format: rgb", "method: balanced"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}

	// The config file supplies the format; the flag still wins over it.
	out, _, err = run(t, "--config", path, "extract", red)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if out != "rgb(255, 0, 0)\n" {
		t.Errorf("extract with config = %q", out)
	}
	out, _, err = run(t, "--config", path, "extract", "-f", "hex", red)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if out != "#FF0000\n" {
		t.Errorf("extract with flag override = %q", out)
	}
}

func TestMethodsCommand(t *testing.T) {
	setupTests(t)

	out, _, err := run(t, "methods")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, want := range []string{"balanced", "dominant", "muted", "vibrant"} {
		if !strings.Contains(out, want) {
			t.Errorf("methods output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	setupTests(t)

	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasPrefix(out, "spectra version ") {
		t.Errorf("version output = %q", out)
	}
}

func TestVerboseLogging(t *testing.T) {
	_, red, _ := setupTests(t)

	_, stderr, err := run(t, "-v", "extract", red)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(stderr, "palette extracted") {
		t.Errorf("expected debug log on stderr, got:\n%s", stderr)
	}

	_, stderr, err = run(t, "extract", red)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if stderr != "" {
		t.Errorf("expected no log output by default, got:\n%s", stderr)
	}
}
