package app

import (
	"encoding/binary"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeCF32(t *testing.T, path string, samples []complex64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	buf := make([]byte, len(samples)*8)
	for i, s := range samples {
		off := i * 8
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(imag(s)))
	}
	if _, err := f.Write(buf); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func toneSamples(n int, freqFrac float64) []complex64 {
	out := make([]complex64, n)
	for i := range out {
		phase := 2 * math.Pi * freqFrac * float64(i)
		out[i] = complex(float32(math.Cos(phase)), float32(math.Sin(phase)))
	}
	return out
}

func TestRenderProducesValidPNG(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "capture.cf32")
	outPath := filepath.Join(dir, "out.png")

	writeCF32(t, inPath, toneSamples(512*4, 0.1))

	c := NewConfig()
	c.InputFile = inPath
	c.OutputFile = outPath
	c.FFTSize = 512
	c.SampleHz = 2_000_000
	c.CenterHz = 433_920_000

	if err := Render(c); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding output as PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 512+leftBorder {
		t.Errorf("image width = %d, want %d", bounds.Dx(), 512+leftBorder)
	}
	if bounds.Dy() != 4+topBorder+bottomBorder {
		t.Errorf("image height = %d, want %d", bounds.Dy(), 4+topBorder+bottomBorder)
	}
}

func TestRenderEmptyCaptureErrors(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "empty.cf32")
	writeCF32(t, inPath, nil)

	c := NewConfig()
	c.InputFile = inPath
	c.OutputFile = filepath.Join(dir, "out.png")

	if err := Render(c); err == nil {
		t.Error("Render() on an empty capture returned nil error")
	}
}

func TestRenderShorterThanOneFrameErrors(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "short.cf32")
	writeCF32(t, inPath, toneSamples(10, 0.1))

	c := NewConfig()
	c.InputFile = inPath
	c.OutputFile = filepath.Join(dir, "out.png")
	c.FFTSize = 512

	if err := Render(c); err == nil {
		t.Error("Render() on a capture shorter than one FFT frame returned nil error")
	}
}

func TestResolveBoundsManualOverride(t *testing.T) {
	minDb, maxDb := -50.0, -10.0
	c := &Config{MinDb: &minDb, MaxDb: &maxDb}
	rows := [][]float64{{-100, 0}}

	gotMin, gotMax := resolveBounds(c, rows)
	if gotMin != minDb || gotMax != maxDb {
		t.Errorf("resolveBounds() = (%v, %v), want (%v, %v)", gotMin, gotMax, minDb, maxDb)
	}
}

func TestResolveBoundsScansRows(t *testing.T) {
	c := &Config{}
	rows := [][]float64{{-40, -10}, {-60, -5}}

	gotMin, gotMax := resolveBounds(c, rows)
	if gotMin != -60 || gotMax != -5 {
		t.Errorf("resolveBounds() = (%v, %v), want (-60, -5)", gotMin, gotMax)
	}
}
