package app

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/skywave-radio/console/internal/capture"
	"github.com/skywave-radio/console/internal/spectrum"
)

const (
	topBorder    = 24
	leftBorder   = 60
	bottomBorder = 24
)

// Render reads the capture at c.InputFile, runs it through a spectrum.Engine
// exactly as internal/rx.Pipeline does per live block, and writes the
// resulting spectrogram to c.OutputFile.
func Render(c *Config) error {
	f, err := os.Open(c.InputFile)
	if err != nil {
		return fmt.Errorf("opening capture: %w", err)
	}
	samples, err := capture.ReadCF32(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("reading capture: %w", err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("capture %s is empty", c.InputFile)
	}

	engine := spectrum.NewEngine(c.FFTSize)
	engine.SetBandParams(c.SampleHz/2, c.SampleHz)
	n := engine.Size()

	var rows [][]float64
	for off := 0; off+n <= len(samples); off += n {
		amps, _ := engine.Process(samples[off : off+n])
		row := make([]float64, len(amps))
		for i, a := range amps {
			row[i] = spectrum.DBFromLinear(a)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return fmt.Errorf("capture %s is shorter than one FFT frame (%d samples)", c.InputFile, n)
	}

	minDb, maxDb := resolveBounds(c, rows)

	img, err := renderImage(rows, n, c, minDb, maxDb)
	if err != nil {
		return fmt.Errorf("rendering image: %w", err)
	}

	out, err := os.Create(c.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch c.Format {
	case ImageJPEG:
		return jpeg.Encode(out, img, &jpeg.Options{Quality: 92})
	default:
		return png.Encode(out, img)
	}
}

// resolveBounds uses the caller's explicit MinDb/MaxDb when given, otherwise
// scans every row for the observed dB range.
func resolveBounds(c *Config, rows [][]float64) (minDb, maxDb float64) {
	if c.MinDb != nil && c.MaxDb != nil {
		return *c.MinDb, *c.MaxDb
	}

	minDb, maxDb = rows[0][0], rows[0][0]
	for _, row := range rows {
		for _, v := range row {
			if v < minDb {
				minDb = v
			}
			if v > maxDb {
				maxDb = v
			}
		}
	}
	if c.MinDb != nil {
		minDb = *c.MinDb
	}
	if c.MaxDb != nil {
		maxDb = *c.MaxDb
	}
	return minDb, maxDb
}

func renderImage(rows [][]float64, fftSize int, c *Config, minDb, maxDb float64) (image.Image, error) {
	width := fftSize
	height := len(rows)

	fullW := width + leftBorder
	fullH := height + topBorder + bottomBorder
	img := image.NewRGBA(image.Rect(0, 0, fullW, fullH))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	colorMap := CreateColorMap(1024, minDb, maxDb)
	span := maxDb - minDb

	for y, row := range rows {
		imgY := y + topBorder
		for x, db := range row {
			idx := 0
			if span > 0 {
				idx = int((db - minDb) / span * float64(len(colorMap)-1))
				if idx < 0 {
					idx = 0
				}
				if idx >= len(colorMap) {
					idx = len(colorMap) - 1
				}
			}
			img.Set(x+leftBorder, imgY, colorMap[idx])
		}
	}

	face, closer, err := loadFace(c.FontPath)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer()
	}

	drawLabels(img, face, fftSize, c)
	return img, nil
}

// loadFace opens c.FontPath as a TTF via freetype/truetype when given,
// falling back to x/image/font/basicfont since no TTF asset ships in this
// module (see DESIGN.md).
func loadFace(path string) (font.Face, func(), error) {
	if path == "" {
		return basicfont.Face7x13, nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading font %s: %w", path, err)
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{Size: 12, DPI: 72, Hinting: font.HintingNone})
	return face, func() { _ = face.Close() }, nil
}

// drawLabels draws a frequency axis across the top border and a sample-rate
// summary in the bottom border, labeling frequency ticks with
// humanize.ComputeSI.
func drawLabels(img *image.RGBA, face font.Face, fftSize int, c *Config) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(image.Black.C), Face: face}

	halfSpan := c.SampleHz / 2
	ticks := 5
	for i := 0; i <= ticks; i++ {
		frac := float64(i) / float64(ticks)
		hz := c.CenterHz - halfSpan + frac*c.SampleHz
		x := leftBorder + int(frac*float64(fftSize))

		fract, suffix := humanize.ComputeSI(hz)
		label := fmt.Sprintf("%0.2f %sHz", fract, suffix)

		d.Dot = fixed.P(x, topBorder-6)
		d.DrawString(label)
	}

	info := fmt.Sprintf("rate=%s center=%s fft=%d",
		humanizeHz(c.SampleHz), humanizeHz(c.CenterHz), fftSize)
	d.Dot = fixed.P(leftBorder, img.Bounds().Max.Y-bottomBorder/2)
	d.DrawString(info)
}

func humanizeHz(hz float64) string {
	fract, suffix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%0.2f %sHz", fract, suffix)
}
