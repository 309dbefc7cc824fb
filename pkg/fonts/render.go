package fonts

import (
	"fmt"
	"os"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/appstream-tools/compose/pkg/image"
)

// Specimen image sizes rendered for font components, largest first.
var SpecimenSizes = []struct {
	Width  int
	Height int
}{
	{1024, 78},
	{640, 48},
}

var (
	baseFontOnce sync.Once
	baseFont     *truetype.Font
)

// loadBaseFont locates a system font used when the analyzed font itself
// cannot be rasterized (CFF-flavored OpenType, broken glyf tables).
func loadBaseFont() *truetype.Font {
	baseFontOnce.Do(func() {
		for _, name := range []string{"DejaVuSans.ttf", "LiberationSans-Regular.ttf", "Arial.ttf"} {
			path, err := findfont.Find(name)
			if err != nil {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if f, err := truetype.Parse(data); err == nil {
				baseFont = f
				return
			}
		}
	})
	return baseFont
}

// face builds a rasterizer face for the font at the given point size.
func (f *Font) face(points float64) (font.Face, error) {
	tf, err := truetype.Parse(f.data)
	if err != nil {
		// truetype only handles glyf outlines; fall back to a system
		// font so at least a placeholder specimen can be drawn
		if bf := loadBaseFont(); bf != nil {
			return truetype.NewFace(bf, &truetype.Options{Size: points, DPI: 72}), nil
		}
		return nil, fmt.Errorf("unable to rasterize font %s: %w", f.Fullname(), err)
	}
	return truetype.NewFace(tf, &truetype.Options{Size: points, DPI: 72}), nil
}

// RenderTextLine draws a single centered line of text on a white canvas,
// shrinking the font size until the text fits inside the border.
func (f *Font) RenderTextLine(width, height int, text string) (*image.Image, error) {
	if text == "" {
		return nil, fmt.Errorf("no specimen text available for font %s", f.Fullname())
	}
	border := float64(height) / 16
	if border < 2 {
		border = 2
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0.1, 0.1, 0.1)

	points := float64(height) * 0.62
	for ; points > 4; points -= 2 {
		face, err := f.face(points)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		w, h := dc.MeasureString(text)
		if w <= float64(width)-2*border && h <= float64(height)-border {
			break
		}
	}

	dc.DrawStringAnchored(text, float64(width)/2, float64(height)/2, 0.5, 0.5)
	return image.FromImage(dc.Image()), nil
}

// RenderIcon draws the short glyph sample as a square icon image.
func (f *Font) RenderIcon(size int) (*image.Image, error) {
	return f.RenderTextLine(size, size, f.SampleIconText())
}
