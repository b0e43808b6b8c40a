package halation

import (
	"fmt"
	"image"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseTint parses a hex color such as "#ff6464", "ff6464" or "#f66".
func ParseTint(s string) (Tint, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return Tint{}, fmt.Errorf("invalid tint %q: want #rgb or #rrggbb", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Tint{}, fmt.Errorf("invalid tint %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Tint{R: r, G: g, B: b}, nil
}

// Hex formats t as #rrggbb.
func (t Tint) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", t.R, t.G, t.B)
}

// ComposeTintLayer builds a layer filled with tint whose alpha channel is mask.
func ComposeTintLayer(mask *image.Gray, tint Tint) *image.NRGBA {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	layer := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		src := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		dst := layer.Pix[y*layer.Stride : y*layer.Stride+w*4]
		for x, a := range src {
			d := dst[x*4 : x*4+4 : x*4+4]
			d[0] = tint.R
			d[1] = tint.G
			d[2] = tint.B
			d[3] = a
		}
	}

	return layer
}
