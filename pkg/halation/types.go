package halation

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedBuffer is returned when an image buffer has too few
	// channels, non-positive dimensions or a pixel slice of the wrong size.
	ErrMalformedBuffer = errors.New("malformed image buffer")
	// ErrInvalidRadius is returned for a negative or NaN blur radius.
	ErrInvalidRadius = errors.New("invalid blur radius")
	// ErrInvalidScale is returned for a mask scale outside [0, 1].
	ErrInvalidScale = errors.New("invalid mask scale")
)

// Buffer holds decoded, interleaved 8-bit pixel data
type Buffer struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int // 1=grayscale, 3=RGB, 4=RGBA
}

// NewBuffer allocates a zeroed buffer
func NewBuffer(width, height, channels int) *Buffer {
	return &Buffer{
		Pix:      make([]byte, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
	}
}

// Validate reports whether b can be fed to the pipeline.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrMalformedBuffer)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrMalformedBuffer, b.Width, b.Height)
	}
	if b.Channels < 3 {
		return fmt.Errorf("%w: %d channel(s), need RGB or RGBA", ErrMalformedBuffer, b.Channels)
	}
	if want := b.Width * b.Height * b.Channels; len(b.Pix) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrMalformedBuffer, len(b.Pix), want)
	}
	return nil
}

// Tint is the halation glow color
type Tint struct {
	R, G, B uint8
}

// Options contains all pipeline parameters
type Options struct {
	Tint      Tint
	Threshold uint8
	// Radius is the Gaussian standard deviation in pixels. Zero disables the blur.
	Radius float64
	// MaskScale blurs the mask at a reduced resolution when in (0, 1).
	// Zero and one both mean full resolution.
	MaskScale float64
}

// DefaultOptions returns the parameters the command line uses when no flag is given.
func DefaultOptions() Options {
	return Options{
		Tint:      Tint{R: 255, G: 100, B: 100},
		Threshold: 100,
		Radius:    250,
		MaskScale: 1,
	}
}
