package halation

// sRGB relative luminance weights, applied to the raw 8-bit values.
const (
	weightR = 0.2126
	weightG = 0.7152
	weightB = 0.0722
)

// Luminance is a per-pixel brightness grid
type Luminance struct {
	Width  int
	Height int
	Values []float64
}

// At returns the luminance of pixel (x, y).
func (l *Luminance) At(x, y int) float64 {
	return l.Values[y*l.Width+x]
}

// ExtractLuminance computes 0.2126R + 0.7152G + 0.0722B for every pixel of img.
// A fourth channel, if any, is ignored.
func ExtractLuminance(img *Buffer) (*Luminance, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	lum := &Luminance{
		Width:  img.Width,
		Height: img.Height,
		Values: make([]float64, img.Width*img.Height),
	}

	for i := range lum.Values {
		p := img.Pix[i*img.Channels : i*img.Channels+3 : i*img.Channels+3]
		lum.Values[i] = weightR*float64(p[0]) + weightG*float64(p[1]) + weightB*float64(p[2])
	}

	return lum, nil
}
