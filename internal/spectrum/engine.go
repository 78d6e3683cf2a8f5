package spectrum

import (
	"math"

	"github.com/skywave-radio/console/internal/dsp"
)

// Engine performs the receive-side windowing, FFT, amplitude normalization,
// temporal smoothing, and FFT-shift described by the pipeline. It owns its
// own FFT scratch buffer and smoothing state; nothing here is shared across
// goroutines.
type Engine struct {
	n            int
	window       []float64
	coherentGain float64
	smoothed     []float32
	scratch      []complex128

	halfSpanHz float64
	sampleHz   float64
}

const smoothingAlpha = 0.4
const ampClip = 1.5

// NewEngine builds an engine configured for FFT size n (clamped to the
// supported range and rounded to a power of two).
func NewEngine(n int) *Engine {
	e := &Engine{}
	e.Configure(n)
	return e
}

// Configure (re)builds the Hann window and FFT scratch state for n, and
// resets the smoothing history. Safe to call between blocks only; it must
// not be called concurrently with Process.
func (e *Engine) Configure(n int) {
	n = ClampFFTSize(n)
	e.n = n
	e.window, e.coherentGain = dsp.HannWindow(n)
	e.smoothed = make([]float32, n)
	e.scratch = make([]complex128, n)
}

// Size returns the engine's current FFT size.
func (e *Engine) Size() int {
	return e.n
}

// SetBandParams updates the width of the center band whose maximum Process
// returns; it takes
// effect on the next Process call. halfSpanHz <= 0 defaults to 100kHz per
// the boundary rule for capture span.
func (e *Engine) SetBandParams(halfSpanHz, sampleHz float64) {
	if halfSpanHz <= 0 {
		halfSpanHz = 100_000
	}
	e.halfSpanHz = halfSpanHz
	e.sampleHz = sampleHz
}

// Process windows, transforms, normalizes, smooths, and FFT-shifts input,
// which must have exactly Size() elements. It returns the shifted amplitude
// vector (owned by the engine; callers must copy before the next call if
// they need to retain it) and the largest smoothed linear amplitude within
// the center band.
func (e *Engine) Process(input []complex64) (amps []float32, centerMaxLin float32) {
	n := e.n
	if len(input) != n {
		panic("spectrum: Process called with mismatched block size")
	}

	for i := 0; i < n; i++ {
		w := e.window[i]
		c := complex128(input[i])
		e.scratch[i] = complex(real(c)*w, imag(c)*w)
	}

	dsp.FFT(e.scratch)

	scale := float64(n) * e.coherentGain
	for k := 0; k < n; k++ {
		a := cabs(e.scratch[k]) / scale
		s := smoothingAlpha*a + (1-smoothingAlpha)*float64(e.smoothed[shiftedIndex(k, n)])
		if s > ampClip {
			s = ampClip
		}
		e.smoothed[shiftedIndex(k, n)] = float32(s)
	}

	centerMaxLin = e.centerMax()
	return e.smoothed, centerMaxLin
}

// shiftedIndex maps an unshifted bin k to its position after an FFT-shift by
// n/2, so bin 0 of the output corresponds to -Fs/2 and bin n/2 is DC.
func shiftedIndex(k, n int) int {
	return (k + n/2) % n
}

func (e *Engine) centerMax() float32 {
	n := e.n
	center := n / 2
	binHz := e.sampleHz / float64(n)

	half := 2
	if binHz > 0 {
		if hb := int(math.Ceil(e.halfSpanHz / binHz)); hb > half {
			half = hb
		}
	}
	if half > n/2-1 {
		half = n/2 - 1
	}
	if half < 0 {
		half = 0
	}

	var max float32
	for i := center - half; i <= center+half; i++ {
		if i < 0 || i >= n {
			continue
		}
		if v := e.smoothed[i]; v > max {
			max = v
		}
	}
	return max
}

// DBFromLinear converts a linear amplitude to dB with the same clamp used by
// the trigger machine's detector: values below 1e-6 read as -120dB.
func DBFromLinear(x float32) float64 {
	v := float64(x)
	if v < 1e-6 {
		v = 1e-6
	}
	return 20 * math.Log10(v)
}

func cabs(c complex128) float64 {
	r, i := real(c), imag(c)
	if r == 0 && i == 0 {
		return 0
	}
	return math.Hypot(r, i)
}
