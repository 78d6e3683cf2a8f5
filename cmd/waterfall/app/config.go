// Package app renders an offline spectrogram PNG or JPEG from one .cf32
// capture file, such as one finalized by cmd/sdrconsoled.
package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

// Config configures one waterfall render.
type Config struct {
	InputFile  string
	OutputFile string
	Format     ImageFormat
	FFTSize    int
	SampleHz   float64
	CenterHz   float64
	MinDb      *float64
	MaxDb      *float64
	FontPath   string // optional TTF; falls back to basicfont when empty
	Verbose    bool
}

func NewConfig() *Config {
	return &Config{Format: ImagePNG, FFTSize: 2048, SampleHz: 2_000_000}
}

// NewConfigFromCLI parses flags, validates required fields, and appends
// the image format to the output path.
func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat string
	var minDb, maxDb float64
	flag.StringVar(&c.InputFile, "in", "", "Path to the .cf32 capture file")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output image (without extension)")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.IntVar(&c.FFTSize, "fft", 2048, "FFT size for the spectrogram rows")
	flag.Float64Var(&c.SampleHz, "rate", 2_000_000, "Sample rate the capture was recorded at, Hz")
	flag.Float64Var(&c.CenterHz, "center", 0, "Center frequency the capture was recorded at, Hz")
	flag.Float64Var(&minDb, "min-db", 0, "Manual minimum dB for the color scale")
	flag.Float64Var(&maxDb, "max-db", 0, "Manual maximum dB for the color scale")
	flag.StringVar(&c.FontPath, "font", "", "Optional path to a TTF font for axis labels (defaults to a built-in bitmap font)")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "min-db" {
			c.MinDb = &minDb
		}
		if f.Name == "max-db" {
			c.MaxDb = &maxDb
		}
	})

	var err error
	switch {
	case c.InputFile == "":
		err = errors.New("input capture file is required")
	case c.OutputFile == "":
		err = errors.New("output file is required")
	case c.FFTSize < 2:
		err = errors.New("fft size must be at least 2")
	default:
		if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
			err = fmt.Errorf("invalid image format: %s", imageFormat)
		}
	}
	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
