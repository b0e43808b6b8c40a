package halation

import (
	"bytes"
	"errors"
	"image"
	"math"
	"testing"
)

func gradientLuminance(w, h int) *Luminance {
	lum := &Luminance{Width: w, Height: h, Values: make([]float64, w*h)}
	for i := range lum.Values {
		lum.Values[i] = float64(i%256) + 0.5
	}
	return lum
}

func TestThresholdIsBinary(t *testing.T) {
	lum := gradientLuminance(32, 16)

	for _, threshold := range []uint8{0, 1, 100, 254, 255} {
		mask := Threshold(lum, threshold)
		for i, v := range mask.Pix {
			if v != 0 && v != 255 {
				t.Fatalf("Threshold %d: pixel %d has value %d", threshold, i, v)
			}
			want := uint8(0)
			if lum.Values[i] > float64(threshold) {
				want = 255
			}
			if v != want {
				t.Errorf("Threshold %d: pixel %d expected %d, got %d", threshold, i, want, v)
			}
		}
	}
}

func TestThresholdIsStrict(t *testing.T) {
	lum := &Luminance{Width: 3, Height: 1, Values: []float64{99.999, 100, 100.001}}

	mask := Threshold(lum, 100)

	want := []uint8{0, 0, 255}
	for i := range want {
		if mask.Pix[i] != want[i] {
			t.Errorf("Pixel %d: expected %d, got %d", i, want[i], mask.Pix[i])
		}
	}
}

func TestBlurMaskZeroRadiusIsIdentity(t *testing.T) {
	mask := Threshold(gradientLuminance(17, 9), 128)

	blurred := BlurMask(mask, 0)

	if blurred == mask {
		t.Fatal("Expected a copy, got the input mask")
	}
	if blurred.Rect != mask.Rect {
		t.Fatalf("Expected bounds %v, got %v", mask.Rect, blurred.Rect)
	}
	for i := range mask.Pix {
		if blurred.Pix[i] != mask.Pix[i] {
			t.Fatalf("Pixel %d changed: %d -> %d", i, mask.Pix[i], blurred.Pix[i])
		}
	}
}

func TestBlurMaskSoftensEdge(t *testing.T) {
	const w, h = 40, 8
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			mask.Pix[y*mask.Stride+x] = 255
		}
	}

	blurred := BlurMask(mask, 3)

	row := blurred.Pix[h/2*blurred.Stride : h/2*blurred.Stride+w]
	for x := 1; x < w; x++ {
		if row[x] < row[x-1] {
			t.Errorf("Expected monotone ramp, x=%d: %d < %d", x, row[x], row[x-1])
		}
	}
	if row[w/2-1] == 0 || row[w/2] == 255 {
		t.Errorf("Expected soft transition at the edge, got %d, %d", row[w/2-1], row[w/2])
	}
	if row[0] != 0 || row[w-1] != 255 {
		t.Errorf("Expected untouched extremes, got %d and %d", row[0], row[w-1])
	}

	// Borders must not darken a uniformly lit region.
	full := Threshold(&Luminance{Width: 12, Height: 12, Values: filled(144, 255)}, 100)
	for i, v := range BlurMask(full, 4).Pix {
		if v != 255 {
			t.Fatalf("Pixel %d: expected 255 after blurring a full mask, got %d", i, v)
		}
	}
}

func TestBuildMaskScaled(t *testing.T) {
	lum := &Luminance{Width: 64, Height: 48, Values: make([]float64, 64*48)}
	for y := 16; y < 32; y++ {
		for x := 24; x < 40; x++ {
			lum.Values[y*64+x] = 255
		}
	}

	mask, err := BuildMask(lum, 100, 4, 0.5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if mask.Rect.Dx() != 64 || mask.Rect.Dy() != 48 {
		t.Fatalf("Expected 64x48 mask, got %v", mask.Rect)
	}
	if mask.Pix[24*mask.Stride+32] < 128 {
		t.Errorf("Expected bright centre, got %d", mask.Pix[24*mask.Stride+32])
	}
	if mask.Pix[0] != 0 {
		t.Errorf("Expected dark corner, got %d", mask.Pix[0])
	}
}

func TestBuildMaskInvalidParameters(t *testing.T) {
	lum := gradientLuminance(4, 4)

	testCases := []struct {
		name   string
		radius float64
		scale  float64
		want   error
	}{
		{"negative radius", -1, 1, ErrInvalidRadius},
		{"NaN radius", math.NaN(), 1, ErrInvalidRadius},
		{"Inf radius", math.Inf(1), 1, ErrInvalidRadius},
		{"Inf radius scaled", math.Inf(1), 0.5, ErrInvalidRadius},
		{"negative Inf radius", math.Inf(-1), 1, ErrInvalidRadius},
		{"negative scale", 2, -0.5, ErrInvalidScale},
		{"scale above one", 2, 1.5, ErrInvalidScale},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildMask(lum, 100, tc.radius, tc.scale)
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBuildMaskClampsHugeRadius(t *testing.T) {
	lum := gradientLuminance(12, 8)

	want, err := BuildMask(lum, 100, 12, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, scale := range []float64{1, 0.5} {
		got, err := BuildMask(lum, 100, 1e12, scale)
		if err != nil {
			t.Fatalf("Unexpected error at scale %v: %v", scale, err)
		}
		if scale == 1 && !bytes.Equal(got.Pix, want.Pix) {
			t.Errorf("Expected radius 1e12 to match radius 12, got %v want %v", got.Pix, want.Pix)
		}
	}
}

func filled(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
