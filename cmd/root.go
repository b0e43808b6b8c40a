package cmd

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/halation/internal/render"
	"github.com/kiesman99/halation/pkg/halation"
)

// Version is reported by the serve command's health endpoint
const Version = "1.0.0"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "halation",
	Short: "Add a film halation glow to an image",
	Long: `halation brightens and tints the glow around the bright regions of an
image, emulating the halation artifact of film stock.

The source must be a .jpeg, .jpg or .png file. The result is written next to
it as <name>-halation<ext> unless --output is given.

Examples:
  # Default red glow
  halation -p photo.jpg

  # Orange glow around anything brighter than 180, tighter blur
  halation -p photo.jpg -r 255 -g 140 -b 40 -t 180 -s 60

  # Same, with a hex tint and the mask blurred at a quarter of the resolution
  halation -p photo.png --tint '#ff8c28' -t 180 --mask-scale 0.25

  # Start HTTP server
  halation serve --port 8080`,
	SilenceUsage: true,
	RunE:         runHalation,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := halation.DefaultOptions()

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.halation.yaml)")
	rootCmd.PersistentFlags().Uint8P("red", "r", defaults.Tint.R, "red color channel for the color tint")
	rootCmd.PersistentFlags().Uint8P("green", "g", defaults.Tint.G, "green color channel for the color tint")
	rootCmd.PersistentFlags().Uint8P("blue", "b", defaults.Tint.B, "blue color channel for the color tint")
	rootCmd.PersistentFlags().String("tint", "", "tint as a hex color, overrides --red, --green and --blue")
	rootCmd.PersistentFlags().Uint8P("threshold", "t", defaults.Threshold, "brightness threshold used for the halation")
	rootCmd.PersistentFlags().Float64P("size-blur", "s", defaults.Radius, "size of blur radius, large values are slow at full resolution (see --mask-scale)")
	rootCmd.PersistentFlags().Float64("mask-scale", defaults.MaskScale, "blur the mask at this fraction of the image size, 0 or 1 blurs at full resolution")
	rootCmd.PersistentFlags().IntP("quality", "q", render.DefaultQuality, "JPEG output quality (1-100)")

	// Input/output options
	rootCmd.Flags().StringP("path", "p", "", "path to your image (required)")
	rootCmd.Flags().StringP("output", "o", "", "output file (default: <name>-halation<ext> next to the source)")

	// Bind flags to viper
	for _, name := range []string{"red", "green", "blue", "tint", "threshold", "size-blur", "mask-scale", "quality"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	viper.BindPFlag("path", rootCmd.Flags().Lookup("path"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".halation" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".halation")
	}

	// HALATION_SIZE_BLUR, HALATION_SERVER_PORT, ...
	viper.SetEnvPrefix("halation")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// optionsFromConfig collects the pipeline parameters from flags, environment and config file
func optionsFromConfig() (halation.Options, error) {
	var opts halation.Options

	for _, c := range []struct {
		key  string
		dest *uint8
	}{
		{"red", &opts.Tint.R},
		{"green", &opts.Tint.G},
		{"blue", &opts.Tint.B},
		{"threshold", &opts.Threshold},
	} {
		v := viper.GetInt(c.key)
		if v < 0 || v > 255 {
			return opts, fmt.Errorf("%s must be between 0 and 255, got %d", c.key, v)
		}
		*c.dest = uint8(v)
	}

	if hex := viper.GetString("tint"); hex != "" {
		tint, err := halation.ParseTint(hex)
		if err != nil {
			return opts, err
		}
		opts.Tint = tint
	}

	opts.Radius = viper.GetFloat64("size-blur")
	if math.IsNaN(opts.Radius) || math.IsInf(opts.Radius, 0) || opts.Radius < 0 {
		return opts, fmt.Errorf("size-blur must be a finite, non-negative number, got %v", opts.Radius)
	}
	opts.MaskScale = viper.GetFloat64("mask-scale")
	if math.IsNaN(opts.MaskScale) || opts.MaskScale < 0 || opts.MaskScale > 1 {
		return opts, fmt.Errorf("mask-scale must be between 0 and 1, got %v", opts.MaskScale)
	}

	return opts, nil
}

func runHalation(cmd *cobra.Command, args []string) error {
	path := viper.GetString("path")
	if path == "" {
		if len(args) == 0 {
			return cmd.Help()
		}
		path = args[0]
	}

	opts, err := optionsFromConfig()
	if err != nil {
		return err
	}

	quality := viper.GetInt("quality")
	if quality < 1 || quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", quality)
	}

	runner := render.NewRunner(&render.RunOptions{
		Path:     path,
		Output:   viper.GetString("output"),
		Quality:  quality,
		Halation: opts,
	})
	runner.SetOutput(cmd.OutOrStdout())

	_, err = runner.Run()
	return err
}
