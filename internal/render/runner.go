package render

import (
	"fmt"
	"io"
	"os"

	"github.com/kiesman99/halation/internal/imagefile"
	"github.com/kiesman99/halation/pkg/halation"
)

// RunOptions contains all configuration for a single command line run
type RunOptions struct {
	Path     string
	Output   string // defaults to imagefile.OutputPath(Path)
	Quality  int
	Halation halation.Options
}

// Runner processes one image file and writes the result next to it
type Runner struct {
	options *RunOptions
	out     io.Writer
}

// NewRunner creates a new runner instance
func NewRunner(opts *RunOptions) *Runner {
	return &Runner{
		options: opts,
		out:     os.Stdout,
	}
}

// SetOutput redirects the status line, which goes to stdout by default.
func (r *Runner) SetOutput(w io.Writer) {
	r.out = w
}

// Run validates the source path, applies the halation and saves the result.
// It returns the destination path.
func (r *Runner) Run() (string, error) {
	if r.options.Path == "" {
		return "", fmt.Errorf("no image path provided")
	}

	dest := r.options.Output
	if dest == "" {
		dest = imagefile.OutputPath(r.options.Path)
	}

	// Both ends are checked before any decoding happens
	if err := imagefile.ValidatePath(r.options.Path); err != nil {
		return "", err
	}
	if err := imagefile.ValidatePath(dest); err != nil {
		return "", err
	}

	img, _, err := imagefile.Open(r.options.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", r.options.Path, err)
	}

	result, err := halation.Create(img, r.options.Halation)
	if err != nil {
		return "", fmt.Errorf("failed to apply halation: %w", err)
	}

	fmt.Fprintf(r.out, "Saving image with halation here %s\n", dest)

	quality := r.options.Quality
	if quality == 0 {
		quality = DefaultQuality
	}
	if err := imagefile.Save(dest, result, quality); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}

	return dest, nil
}
