package imagefile

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/kiesman99/halation/pkg/halation"
)

var (
	// ErrUnsupportedType is returned for paths that are not .jpeg, .jpg or .png
	ErrUnsupportedType = errors.New("given file path is not a compatible image, must be .jpeg, .png or .jpg")
	// ErrUnrecognizedFormat is returned when data is neither PNG nor JPEG
	ErrUnrecognizedFormat = errors.New("unrecognized image format")
)

// DecodeError is returned when data carries a PNG or JPEG signature but
// cannot be decoded
type DecodeError struct {
	Format imaging.Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Suffix is inserted between the source file stem and its extension
const Suffix = "-halation"

// ValidatePath checks the file extension, case-insensitively.
func ValidatePath(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpeg", ".jpg", ".png":
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, path)
	}
}

// OutputPath returns <dir>/<stem>-halation<ext> for path
func OutputPath(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	return filepath.Join(filepath.Dir(path), stem+Suffix+ext)
}

// FormatFromPath maps the path extension to an encoder format
func FormatFromPath(path string) (imaging.Format, error) {
	if err := ValidatePath(path); err != nil {
		return -1, err
	}
	return imaging.FormatFromFilename(path)
}

// DetectFormat sniffs the PNG or JPEG signature
func DetectFormat(data []byte) (imaging.Format, error) {
	if len(data) >= 4 && bytes.Equal(data[:4], []byte{0x89, 0x50, 0x4E, 0x47}) {
		return imaging.PNG, nil
	} else if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xD8}) {
		return imaging.JPEG, nil
	}

	return -1, ErrUnrecognizedFormat
}

// Open validates the path, then reads and decodes the file
func Open(path string) (*halation.Buffer, imaging.Format, error) {
	if err := ValidatePath(path); err != nil {
		return nil, -1, err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, -1, err
	}

	return Decode(data)
}

// Decode detects the image format and decodes data into a buffer. Grayscale
// images decode to a single channel, images with transparency to RGBA and
// everything else to RGB. EXIF orientation is applied.
func Decode(data []byte) (*halation.Buffer, imaging.Format, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, -1, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, -1, &DecodeError{Format: format, Err: err}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, -1, &DecodeError{Format: format, Err: err}
	}

	return FromImage(img, channelsFor(cfg.ColorModel, img)), format, nil
}

func channelsFor(model color.Model, img image.Image) int {
	switch model {
	case color.GrayModel, color.Gray16Model:
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

// FromImage converts img to an interleaved, non-premultiplied buffer with
// the given number of channels (1, 3 or 4).
func FromImage(img image.Image, channels int) *halation.Buffer {
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	buf := halation.NewBuffer(w, h, channels)

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			s := row[x*4 : x*4+4 : x*4+4]
			d := buf.Pix[(y*w+x)*channels : (y*w+x+1)*channels]
			if channels == 1 {
				d[0] = s[0]
				continue
			}
			copy(d, s[:channels])
		}
	}

	return buf
}

// ToImage converts a 3 or 4 channel buffer to an image. Missing alpha is opaque.
func ToImage(buf *halation.Buffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, buf.Width, buf.Height))

	for i := 0; i < buf.Width*buf.Height; i++ {
		d := img.Pix[i*4 : i*4+4 : i*4+4]
		s := buf.Pix[i*buf.Channels : (i+1)*buf.Channels]
		switch buf.Channels {
		case 1:
			d[0], d[1], d[2], d[3] = s[0], s[0], s[0], 255
		case 3:
			d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 255
		default:
			copy(d, s[:4])
		}
	}

	return img
}

// Encode writes buf to w. quality only applies to JPEG.
func Encode(w io.Writer, buf *halation.Buffer, format imaging.Format, quality int) error {
	return imaging.Encode(w, ToImage(buf), format, imaging.JPEGQuality(quality))
}

// Save encodes buf in the format implied by path. The image is written to a
// temporary file next to path and renamed into place, so a failed write
// never leaves a partial file behind.
func Save(path string, buf *halation.Buffer, quality int) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, buf, format, quality); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// ContentType returns the MIME type for format
func ContentType(format imaging.Format) string {
	if format == imaging.JPEG {
		return "image/jpeg"
	}
	return "image/png"
}
