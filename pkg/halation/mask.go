package halation

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// BuildMask thresholds lum and softens the result with a Gaussian blur of the
// given radius. scale in (0, 1) blurs a downsampled copy of the mask and
// resamples it back to full size. A radius wider than the larger image side
// is clamped to it, since the border-truncated kernel is already flat there.
func BuildMask(lum *Luminance, threshold uint8, radius, scale float64) (*image.Gray, error) {
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	if math.IsNaN(scale) || scale < 0 || scale > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}

	if limit := float64(max(lum.Width, lum.Height)); radius > limit {
		radius = limit
	}

	mask := Threshold(lum, threshold)
	if scale == 0 || scale == 1 {
		return BlurMask(mask, radius), nil
	}
	return blurScaled(mask, radius, scale), nil
}

// Threshold returns a binary mask: 255 where the luminance is strictly above
// threshold, 0 elsewhere.
func Threshold(lum *Luminance, threshold uint8) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, lum.Width, lum.Height))
	t := float64(threshold)
	for y := 0; y < lum.Height; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+lum.Width]
		for x := range row {
			if lum.At(x, y) > t {
				row[x] = 255
			}
		}
	}
	return mask
}

// BlurMask applies a separable Gaussian blur with standard deviation radius.
// Samples beyond the border are dropped and the kernel renormalised, so
// edges fade without a seam. Radius 0 returns an unmodified copy.
func BlurMask(mask *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return cloneGray(mask)
	}
	return grayFromNRGBA(imaging.Blur(mask, radius))
}

func blurScaled(mask *image.Gray, radius, scale float64) *image.Gray {
	if radius <= 0 {
		return cloneGray(mask)
	}

	b := mask.Bounds()
	sw := uint(math.Max(1, math.Round(float64(b.Dx())*scale)))
	sh := uint(math.Max(1, math.Round(float64(b.Dy())*scale)))

	small := resize.Resize(sw, sh, mask, resize.Bilinear)
	blurred := imaging.Blur(small, radius*scale)
	full := resize.Resize(uint(b.Dx()), uint(b.Dy()), grayFromNRGBA(blurred), resize.Bilinear)

	return toGray(full)
}

func cloneGray(src *image.Gray) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	for y := 0; y < dst.Rect.Dy(); y++ {
		i := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+dst.Rect.Dx()], src.Pix[i:i+dst.Rect.Dx()])
	}
	return dst
}

// grayFromNRGBA keeps the red channel of a blurred gray image.
func grayFromNRGBA(src *image.NRGBA) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			dst.Pix[y*dst.Stride+x] = row[x*4]
		}
	}
	return dst
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
