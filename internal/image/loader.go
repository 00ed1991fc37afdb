// Package image provides utilities for loading and preparing images for
// palette extraction.
package image

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"
	"github.com/ulikunitz/xz"
	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/spectra/internal/security"
	httputil "github.com/jmylchreest/spectra/internal/util/http"
	"github.com/jmylchreest/spectra/internal/util/imagecache"
)

// DefaultMaxDecompressedBytes bounds the size of an xz-compressed image once
// expanded.
const DefaultMaxDecompressedBytes = 256 * 1024 * 1024

// xzExtension marks images stored xz-compressed, e.g. wall.png.xz.
const xzExtension = ".xz"

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path.
	Load(ctx context.Context, path string) (image.Image, error)
}

// Options controls how images are decoded and prepared.
type Options struct {
	// MaxDimension downscales images whose width or height exceeds it,
	// preserving aspect ratio. Zero disables resizing.
	MaxDimension int

	// AutoOrient applies the EXIF orientation tag when decoding.
	AutoOrient bool

	// MaxDecompressedBytes limits xz-compressed input once expanded. Zero
	// selects DefaultMaxDecompressedBytes.
	MaxDecompressedBytes int64

	// AllowPrivateHosts permits URLs pointing at loopback or private
	// addresses.
	AllowPrivateHosts bool

	// Cache stores downloaded images under CacheDir and reuses them.
	Cache    bool
	CacheDir string

	Logger hclog.Logger
}

func (o Options) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

func (o Options) maxDecompressed() int64 {
	if o.MaxDecompressedBytes <= 0 {
		return DefaultMaxDecompressedBytes
	}
	return o.MaxDecompressedBytes
}

// FileLoader loads images from the local filesystem.
type FileLoader struct {
	opts Options
}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader(opts Options) *FileLoader {
	return &FileLoader{opts: opts}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP, BMP and TIFF, optionally
// xz-compressed.
func (l *FileLoader) Load(_ context.Context, path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	return decode(file, path, l.opts)
}

// decode reads an image from r, expanding it first when name carries the xz
// extension, and applies orientation and resizing.
func decode(r io.Reader, name string, opts Options) (image.Image, error) {
	r, err := maybeDecompress(r, name, opts.maxDecompressed())
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(opts.AutoOrient))
	if err != nil {
		if errors.Is(err, security.ErrSizeLimit) {
			return nil, fmt.Errorf("decompressed image exceeds %d bytes: %w", opts.maxDecompressed(), err)
		}
		return nil, fmt.Errorf("failed to decode image %s: %w", filepath.Base(name), err)
	}

	return Fit(img, opts.MaxDimension, opts.logger()), nil
}

func maybeDecompress(r io.Reader, name string, limit int64) (io.Reader, error) {
	if !isXz(name) {
		return r, nil
	}
	xzr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	return security.NewLimitedReader(xzr, limit), nil
}

// Fit downscales img so that neither side exceeds maxDimension. Images that
// already fit, and a zero maxDimension, return img unchanged.
func Fit(img image.Image, maxDimension int, log hclog.Logger) image.Image {
	if maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDimension && b.Dy() <= maxDimension {
		return img
	}
	fitted := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	if log != nil {
		log.Debug("downscaled image", "from", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
			"to", fmt.Sprintf("%dx%d", fitted.Bounds().Dx(), fitted.Bounds().Dy()))
	}
	return fitted
}

func isXz(path string) bool {
	return strings.EqualFold(filepath.Ext(path), xzExtension)
}

// ValidateImagePath checks if the given path is valid and points to a supported image file or directory.
// Supports both local file paths, directories, and HTTP(S) URLs.
// For local files, it verifies the file exists and its header can be decoded.
// For directories, it verifies the directory exists (actual scanning happens later).
// For HTTP(S) URLs, it only validates the URL (actual fetching happens later).
func ValidateImagePath(path string, allowPrivateHosts bool) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}

	if security.IsURL(path) {
		return security.ValidateImageURL(path, allowPrivateHosts)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file or directory not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}
	if info.IsDir() {
		return nil
	}

	if _, _, err := GetImageDimensions(path); err != nil {
		return fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	return nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
// Each may additionally carry a trailing .xz.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff"}
}

// IsImageFile checks if a file has a supported image extension.
func IsImageFile(path string) bool {
	if isXz(path) {
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// ScanDirectoryForImages scans a directory and returns all valid image files
// in name order. It does not recurse into subdirectories, but follows symlinks.
func ScanDirectoryForImages(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		// For symlinks, stat the target to determine if it's a file.
		info, err := os.Stat(fullPath)
		if err != nil {
			continue
		}
		if info.IsDir() {
			continue
		}

		if IsImageFile(entry.Name()) {
			imageFiles = append(imageFiles, fullPath)
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no supported image files found in directory: %s", dirPath)
	}

	return imageFiles, nil
}

// SelectRandomImage selects a random image from a list of image paths.
// Uses crypto/rand for cryptographically secure randomness.
func SelectRandomImage(imagePaths []string) (string, error) {
	if len(imagePaths) == 0 {
		return "", fmt.Errorf("image path list is empty")
	}

	maxIndex := big.NewInt(int64(len(imagePaths)))
	randomIndex, err := rand.Int(rand.Reader, maxIndex)
	if err != nil {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		index := int(binary.LittleEndian.Uint64(buf[:]) % uint64(len(imagePaths)))
		return imagePaths[index], nil
	}

	return imagePaths[randomIndex.Int64()], nil
}

// ResolveImagePath resolves a path that could be a file or directory.
// If the path is a directory, it scans for images and returns a random one.
// Files and HTTP(S) URLs are returned as-is.
func ResolveImagePath(path string) (string, error) {
	if security.IsURL(path) {
		return path, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	imageFiles, err := ScanDirectoryForImages(path)
	if err != nil {
		return "", err
	}
	return SelectRandomImage(imageFiles)
}

// GetImageDimensions returns the width and height of an image without fully
// decoding it.
func GetImageDimensions(path string) (width, height int, err error) {
	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	r, err := maybeDecompress(file, path, DefaultMaxDecompressedBytes)
	if err != nil {
		return 0, 0, err
	}

	config, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}

	return config.Width, config.Height, nil
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	fileLoader *FileLoader
	opts       Options
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader(opts Options) *SmartLoader {
	return &SmartLoader{
		fileLoader: NewFileLoader(opts),
		opts:       opts,
	}
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, path string) (image.Image, error) {
	if security.IsURL(path) {
		return l.loadFromURL(ctx, path)
	}
	return l.fileLoader.Load(ctx, path)
}

// loadFromURL fetches and decodes an image from an HTTP(S) URL, going
// through the on-disk cache when enabled.
func (l *SmartLoader) loadFromURL(ctx context.Context, url string) (image.Image, error) {
	if err := security.ValidateImageURL(url, l.opts.AllowPrivateHosts); err != nil {
		return nil, err
	}

	if l.opts.Cache {
		cached, err := imagecache.DownloadAndCache(ctx, url, imagecache.CacheOptions{CacheDir: l.opts.CacheDir})
		if err != nil {
			return nil, err
		}
		l.opts.logger().Debug("using cached image", "url", url, "path", cached)
		return l.fileLoader.Load(ctx, cached)
	}

	data, err := httputil.Fetch(ctx, url, httputil.FetchOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}

	name := url
	if idx := strings.IndexAny(name, "?#"); idx != -1 {
		name = name[:idx]
	}
	return decode(bytes.NewReader(data), name, l.opts)
}
