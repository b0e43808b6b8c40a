package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/kiesman99/halation/internal/imagefile"
	"github.com/kiesman99/halation/pkg/halation"
)

// DefaultQuality is the JPEG quality used when none is requested
const DefaultQuality = 95

// Request contains all parameters of an in-memory render
type Request struct {
	Halation halation.Options
	// Format of the encoded result; -1 keeps the input format
	Format  imaging.Format
	Quality int
}

// Result contains the encoded image
type Result struct {
	ImageData []byte
	Format    imaging.Format
	Width     int
	Height    int
}

// Renderer runs the halation pipeline on encoded image bytes
type Renderer struct{}

// NewRenderer creates a new renderer instance
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render decodes data, applies the halation and encodes the result. The
// context is checked before and after the pipeline runs.
func (r *Renderer) Render(ctx context.Context, data []byte, req *Request) (*Result, error) {
	img, format, err := imagefile.Decode(data)
	if err != nil {
		return nil, err
	}
	if req.Format >= 0 {
		format = req.Format
	}
	quality := req.Quality
	if quality == 0 {
		quality = DefaultQuality
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := halation.Create(img, req.Halation)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imagefile.Encode(&buf, out, format, quality); err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	return &Result{
		ImageData: buf.Bytes(),
		Format:    format,
		Width:     out.Width,
		Height:    out.Height,
	}, nil
}
