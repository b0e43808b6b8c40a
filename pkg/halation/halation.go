// Package halation adds a film-style halation glow to an image: pixels brighter
// than a threshold are turned into a mask, the mask is blurred, and a tint is
// blended over the original through it.
package halation

// Create runs the full pipeline on img and returns a new opaque RGB buffer of
// the same size. img must have at least three channels.
func Create(img *Buffer, opts Options) (*Buffer, error) {
	lum, err := ExtractLuminance(img)
	if err != nil {
		return nil, err
	}

	mask, err := BuildMask(lum, opts.Threshold, opts.Radius, opts.MaskScale)
	if err != nil {
		return nil, err
	}

	return Composite(img, ComposeTintLayer(mask, opts.Tint))
}
