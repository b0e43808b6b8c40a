package halation

import (
	"fmt"
	"image"
)

// Composite blends layer over orig using the layer's alpha and returns an
// opaque RGB buffer. The alpha of orig, if present, is not used.
func Composite(orig *Buffer, layer *image.NRGBA) (*Buffer, error) {
	if err := orig.Validate(); err != nil {
		return nil, err
	}
	if layer.Rect.Dx() != orig.Width || layer.Rect.Dy() != orig.Height {
		return nil, fmt.Errorf("%w: layer is %dx%d, image is %dx%d", ErrMalformedBuffer,
			layer.Rect.Dx(), layer.Rect.Dy(), orig.Width, orig.Height)
	}

	out := NewBuffer(orig.Width, orig.Height, 3)

	for y := 0; y < orig.Height; y++ {
		row := layer.Pix[y*layer.Stride : y*layer.Stride+orig.Width*4]
		for x := 0; x < orig.Width; x++ {
			i := y*orig.Width + x
			src := [4]byte{row[x*4], row[x*4+1], row[x*4+2], row[x*4+3]}
			dst := [3]byte{orig.Pix[i*orig.Channels], orig.Pix[i*orig.Channels+1], orig.Pix[i*orig.Channels+2]}
			result := AlphaBlend(src, dst)
			copy(out.Pix[i*3:i*3+3], result[:])
		}
	}

	return out, nil
}

// AlphaBlend places the non-premultiplied src pixel over an opaque dst pixel.
// Alpha 0 returns dst unchanged and alpha 255 returns the color of src.
func AlphaBlend(src [4]byte, dst [3]byte) [3]byte {
	a := uint32(src[3])
	inv := 255 - a
	return [3]byte{
		byte((uint32(src[0])*a + uint32(dst[0])*inv + 127) / 255),
		byte((uint32(src[1])*a + uint32(dst[1])*inv + 127) / 255),
		byte((uint32(src[2])*a + uint32(dst[2])*inv + 127) / 255),
	}
}
