package cmd

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/kiesman99/halation/internal/imagefile"
	"github.com/kiesman99/halation/pkg/halation"
)

func writeSpotPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommandWritesHalationFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "spot.png")
	writeSpotPNG(t, src)

	out, err := execute(t, "-p", src, "-s", "0", "--tint", "#00ff00", "-t", "100")
	if err != nil {
		t.Fatalf("Command failed: %v\n%s", err, out)
	}

	dest := filepath.Join(dir, "spot-halation.png")
	if !strings.Contains(out, "Saving image with halation here "+dest) {
		t.Errorf("Expected destination in output, got %q", out)
	}

	buf, _, err := imagefile.Open(dest)
	if err != nil {
		t.Fatalf("Failed to open result: %v", err)
	}
	want := []byte{0, 255, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(buf.Pix, want) {
		t.Errorf("Expected %v, got %v", want, buf.Pix)
	}
}

func TestRootCommandRejectsExtension(t *testing.T) {
	src := filepath.Join(t.TempDir(), "spot.bmp")
	if err := os.WriteFile(src, []byte("BM"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := execute(t, "-p", src)
	if err == nil || !strings.Contains(err.Error(), "must be .jpeg, .png or .jpg") {
		t.Errorf("Expected unsupported type error, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	defer viper.Reset()

	testCases := []struct {
		name     string
		settings map[string]interface{}
		want     halation.Options
		wantErr  bool
	}{
		{
			name:     "channels",
			settings: map[string]interface{}{"red": 1, "green": 2, "blue": 3, "threshold": 4, "size-blur": 5.5, "mask-scale": 1},
			want:     halation.Options{Tint: halation.Tint{R: 1, G: 2, B: 3}, Threshold: 4, Radius: 5.5, MaskScale: 1},
		},
		{
			name:     "hex tint wins",
			settings: map[string]interface{}{"red": 1, "green": 2, "blue": 3, "tint": "#0a0b0c", "threshold": 100, "size-blur": 0, "mask-scale": 0.5},
			want:     halation.Options{Tint: halation.Tint{R: 10, G: 11, B: 12}, Threshold: 100, MaskScale: 0.5},
		},
		{name: "channel out of range", settings: map[string]interface{}{"red": 300}, wantErr: true},
		{name: "negative threshold", settings: map[string]interface{}{"threshold": -1}, wantErr: true},
		{name: "negative radius", settings: map[string]interface{}{"size-blur": -3}, wantErr: true},
		{name: "infinite radius", settings: map[string]interface{}{"size-blur": math.Inf(1)}, wantErr: true},
		{name: "infinite radius from env string", settings: map[string]interface{}{"size-blur": "inf"}, wantErr: true},
		{name: "scale above one", settings: map[string]interface{}{"mask-scale": 2}, wantErr: true},
		{name: "bad tint", settings: map[string]interface{}{"tint": "#zzzzzz"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			viper.Reset()
			for k, v := range tc.settings {
				viper.Set(k, v)
			}

			got, err := optionsFromConfig()
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %+v, got %+v", tc.want, got)
			}
		})
	}
}
