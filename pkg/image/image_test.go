package image

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadAndDimensions(t *testing.T) {
	im, err := Load(testPNG(t, 320, 200))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if im.Width() != 320 || im.Height() != 200 {
		t.Errorf("dimensions = %dx%d", im.Width(), im.Height())
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestScaleTo(t *testing.T) {
	im, _ := Load(testPNG(t, 100, 50))
	scaled := im.ScaleTo(64, 64)
	if scaled.Width() != 64 || scaled.Height() != 64 {
		t.Errorf("ScaleTo = %dx%d", scaled.Width(), scaled.Height())
	}

	wide := im.ScaleToWidth(50)
	if wide.Width() != 50 || wide.Height() != 25 {
		t.Errorf("ScaleToWidth = %dx%d", wide.Width(), wide.Height())
	}

	tall := im.ScaleToHeight(25)
	if tall.Width() != 50 || tall.Height() != 25 {
		t.Errorf("ScaleToHeight = %dx%d", tall.Width(), tall.Height())
	}
}

func TestScaleToFit(t *testing.T) {
	im, _ := Load(testPNG(t, 1600, 900))
	fit := im.ScaleToFit(1248, 702)
	if fit.Width() != 1248 || fit.Height() != 702 {
		t.Errorf("ScaleToFit = %dx%d", fit.Width(), fit.Height())
	}

	small, _ := Load(testPNG(t, 100, 100))
	if got := small.ScaleToFit(1248, 702); got != small {
		t.Error("images within bounds should be returned unchanged")
	}
}

func TestSavePNG(t *testing.T) {
	im, _ := Load(testPNG(t, 32, 32))
	path := filepath.Join(t.TempDir(), "nested", "out.png")

	if err := im.SavePNG(context.Background(), path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	reloaded, err := Load(data)
	if err != nil {
		t.Fatalf("reloading saved PNG: %v", err)
	}
	if reloaded.Width() != 32 {
		t.Errorf("reloaded width = %d", reloaded.Width())
	}
}
