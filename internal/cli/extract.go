package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/spectra/internal/colour"
	"github.com/jmylchreest/spectra/internal/config"
	"github.com/jmylchreest/spectra/internal/extract"
	"github.com/jmylchreest/spectra/internal/image"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		output string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "extract <image|directory|url>",
		Short: "Extract a colour palette from an image",
		Long: `Extract a colour palette from an image.

The image is sampled, counted in a CIELAB histogram and scored with the
chosen method; colours are then picked by farthest-point selection so the
palette is diverse, and printed in hue order.

Methods:
  dominant  most frequent colours
  vibrant   saturated and bright colours
  muted     mid saturation, bright colours
  balanced  colourful and bright, hues away from cyan

A directory selects a random image inside it. Files ending in .xz are
decompressed transparently.

Supported image formats: JPEG, PNG, GIF, WebP, BMP, TIFF

Examples:
  # Extract 30 colours (default) from an image
  spectra extract wallpaper.jpg

  # Eight vibrant colours with terminal previews
  spectra extract -c 8 -m vibrant --preview wallpaper.png

  # Boost saturation before analysis and print a table
  spectra extract --saturation 150% -f table wallpaper.jpg

  # Write JSON to a file
  spectra extract -f json -o palette.json wallpaper.jpg

  # Re-extract whenever the file changes
  spectra extract --watch wallpaper.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := newExtractJob(a, cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			if watch {
				return job.watch(cmd.Context(), args[0])
			}
			return job.run(cmd.Context(), args[0])
		},
	}

	flags := cmd.Flags()
	flags.IntP(config.KeyColours, "c", extract.DefaultColours, "maximum number of colours to extract")
	flags.StringP(config.KeyMethod, "m", string(extract.MethodDominant), "scoring method (dominant, vibrant, muted, balanced)")
	flags.StringP(config.KeyAlgorithm, "a", string(extract.AlgorithmFarthest), "extraction algorithm (farthest, kmeans)")
	flags.String(config.KeySaturation, "100", "saturation before analysis, in percent (e.g. 150 or 150%)")
	flags.String(config.KeyBrightness, "100", "brightness before analysis, in percent (e.g. 80 or 80%)")
	flags.Int(config.KeySampleTarget, extract.DefaultSampleTarget, "approximate number of pixels sampled")
	flags.Float64(config.KeyQuantStep, extract.DefaultQuantStep, "CIELAB histogram bucket size")
	flags.Int(config.KeyWorkers, 0, "worker goroutines (0 = automatic)")
	flags.Int(config.KeyMaxDimension, 0, "downscale images larger than this many pixels per side (0 = never)")
	flags.Bool(config.KeyAutoOrient, true, "apply EXIF orientation")
	flags.StringP(config.KeyFormat, "f", "hex", "output format (hex, rgb, hsv, json, yaml, table)")
	flags.String(config.KeyPreview, config.PreviewAuto, "colour previews (auto, always, never)")
	flags.Lookup(config.KeyPreview).NoOptDefVal = config.PreviewAlways
	flags.Bool(config.KeyCache, false, "cache downloaded images")
	flags.String(config.KeyCacheDir, "", "directory for cached downloads")
	flags.Bool(config.KeyAllowPrivateHosts, false, "allow URLs on loopback or private networks")
	flags.Duration(config.KeyDebounce, 250*time.Millisecond, "quiet period before re-extracting in --watch mode")
	flags.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	flags.BoolVarP(&watch, "watch", "w", false, "re-extract when the image changes")

	bindFlags(a.v, flags,
		config.KeyColours, config.KeyMethod, config.KeyAlgorithm, config.KeySaturation,
		config.KeyBrightness, config.KeySampleTarget, config.KeyQuantStep, config.KeyWorkers,
		config.KeyMaxDimension, config.KeyAutoOrient, config.KeyFormat, config.KeyPreview,
		config.KeyCache, config.KeyCacheDir, config.KeyAllowPrivateHosts, config.KeyDebounce,
	)

	return cmd
}

// extractJob holds everything needed to turn an input path into printed
// output, so that watch mode can repeat it.
type extractJob struct {
	cfg       config.Config
	opts      extract.Options
	extractor extract.Extractor
	loader    image.Loader
	out       io.Writer
	output    string
	log       hclog.Logger
}

func newExtractJob(a *app, out io.Writer, output string) (*extractJob, error) {
	cfg, err := config.Load(a.v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	opts, err := cfg.ExtractOptions(a.logger.Named("extract"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	extractor, err := extract.NewExtractor(extract.Algorithm(cfg.Algorithm))
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	loader := image.NewSmartLoader(image.Options{
		MaxDimension:      cfg.MaxDimension,
		AutoOrient:        cfg.AutoOrient,
		AllowPrivateHosts: cfg.AllowPrivateHosts,
		Cache:             cfg.Cache,
		CacheDir:          cfg.CacheDir,
		Logger:            a.logger.Named("image"),
	})

	return &extractJob{
		cfg:       cfg,
		opts:      opts,
		extractor: extractor,
		loader:    loader,
		out:       out,
		output:    output,
		log:       a.logger,
	}, nil
}

// run extracts and prints the palette for input once.
func (j *extractJob) run(ctx context.Context, input string) error {
	if err := image.ValidateImagePath(input, j.cfg.AllowPrivateHosts); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	path, err := image.ResolveImagePath(input)
	if err != nil {
		return fmt.Errorf("failed to resolve image path: %w", err)
	}
	if path != input {
		j.log.Info("selected image", "path", path)
	}

	start := time.Now()
	img, err := j.loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	bounds := img.Bounds()
	j.log.Debug("image loaded", "path", path, "width", bounds.Dx(), "height", bounds.Dy())

	palette, err := j.extractor.Extract(extract.FromImage(img), j.opts)
	if err != nil {
		return fmt.Errorf("failed to extract colours: %w", err)
	}
	j.log.Debug("palette extracted", "colours", palette.Len(), "algorithm", j.cfg.Algorithm,
		"method", j.cfg.Method, "elapsed", time.Since(start))

	return j.write(palette)
}

func (j *extractJob) write(palette *colour.Palette) error {
	if j.output == "" {
		text, err := formatPalette(palette, j.cfg.Format, j.preview(j.out))
		if err != nil {
			return err
		}
		_, err = io.WriteString(j.out, text)
		return err
	}

	text, err := formatPalette(palette, j.cfg.Format, j.cfg.Preview == config.PreviewAlways)
	if err != nil {
		return err
	}
	if err := os.WriteFile(j.output, []byte(text), 0o644); err != nil { // #nosec G306 - Palette output is not sensitive
		return fmt.Errorf("failed to write output file: %w", err)
	}
	j.log.Info("wrote palette", "path", j.output, "colours", palette.Len())
	return nil
}

func (j *extractJob) preview(w io.Writer) bool {
	switch j.cfg.Preview {
	case config.PreviewAlways:
		return true
	case config.PreviewNever:
		return false
	}
	return colour.SupportsANSIColours(w)
}
