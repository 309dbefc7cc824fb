// Package image wraps raster image loading, scaling and PNG output for
// icon and screenshot processing.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// Image is a decoded raster image.
type Image struct {
	img image.Image
}

// Load decodes a PNG, JPEG or GIF image from memory.
func Load(data []byte) (*Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return &Image{img: img}, nil
}

// LoadFile decodes an image from a file.
func LoadFile(path string) (*Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decoding image %q: %w", path, err)
	}
	return &Image{img: img}, nil
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) *Image { return &Image{img: img} }

// Width returns the pixel width of the image.
func (im *Image) Width() int { return im.img.Bounds().Dx() }

// Height returns the pixel height of the image.
func (im *Image) Height() int { return im.img.Bounds().Dy() }

// Raw returns the underlying image.
func (im *Image) Raw() image.Image { return im.img }

// ScaleTo resizes the image to exactly w×h.
func (im *Image) ScaleTo(w, h int) *Image {
	return &Image{img: imaging.Resize(im.img, w, h, imaging.Lanczos)}
}

// ScaleToWidth resizes to the given width, keeping the aspect ratio.
func (im *Image) ScaleToWidth(w int) *Image {
	return &Image{img: imaging.Resize(im.img, w, 0, imaging.Lanczos)}
}

// ScaleToHeight resizes to the given height, keeping the aspect ratio.
func (im *Image) ScaleToHeight(h int) *Image {
	return &Image{img: imaging.Resize(im.img, 0, h, imaging.Lanczos)}
}

// ScaleToFit shrinks the image to fit within w×h, keeping the aspect
// ratio. Images already within bounds are returned unchanged.
func (im *Image) ScaleToFit(w, h int) *Image {
	if im.Width() <= w && im.Height() <= h {
		return im
	}
	return &Image{img: imaging.Fit(im.img, w, h, imaging.Lanczos)}
}

// EncodePNG writes the image as PNG.
func (im *Image) EncodePNG(w io.Writer) error {
	return imaging.Encode(w, im.img, imaging.PNG)
}

// SavePNG writes the image as PNG to a file, creating parent directories
// as needed. When an optimizer is available the file is crushed afterwards.
func (im *Image) SavePNG(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("saving image %q: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving image %q: %w", path, err)
	}
	if err := im.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("saving image %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("saving image %q: %w", path, err)
	}
	return OptimizePNG(ctx, path)
}

var (
	optimizerOnce sync.Once
	optimizerPath string
)

// SetOptimizer overrides the detected optipng binary. An empty path
// disables optimization.
func SetOptimizer(path string) {
	optimizerOnce.Do(func() {})
	optimizerPath = path
}

// OptimizerAvailable reports whether PNG optimization is enabled.
func OptimizerAvailable() bool {
	detectOptimizer()
	return optimizerPath != ""
}

func detectOptimizer() {
	optimizerOnce.Do(func() {
		if p, err := exec.LookPath("optipng"); err == nil {
			optimizerPath = p
		}
	})
}

// OptimizePNG losslessly recompresses a PNG file with optipng. It is a
// no-op when no optimizer is available.
func OptimizePNG(ctx context.Context, path string) error {
	detectOptimizer()
	if optimizerPath == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, optimizerPath, "-o2", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("optipng on %q: %w: %s", path, err, bytes.TrimSpace(out))
	}
	return nil
}
