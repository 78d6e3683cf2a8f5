// Package tx implements the transmit-side noise synthesizer and the
// device-write pipeline that streams it at a calibrated dBFS level.
package tx

import (
	"math"
	"math/rand"

	"github.com/skywave-radio/console/internal/dsp"
)

// WaveLength is the length of the cyclic band-limited noise waveform,
// Nwave = 2^18, matching the reference synthesizer.
const WaveLength = 1 << 18

// notchHz is the width of the zeroed band around DC in the synthesized
// spectrum.
const notchHz = 1500.0

// rngSeed is a fixed constant so the synthesized waveform is reproducible
// across runs and platforms, which is what makes end-to-end TX level tests
// deterministic.
const rngSeed = 123456789

// Synth builds and serves the cyclic band-limited complex-noise waveform.
// It is not safe for concurrent use; it is owned exclusively by TxPipeline.
type Synth struct {
	wave     []complex64
	pos      int
	sampleHz float64
	halfSpan float64
}

// NewSynth creates a synthesizer with no waveform built yet; the first call
// to Ensure builds one.
func NewSynth() *Synth {
	return &Synth{}
}

// Ensure rebuilds the waveform if the (sampleHz, halfSpanHz) fingerprint has
// drifted beyond tolerance (500Hz in span, 1Hz in rate), or if no waveform
// has been built yet.
func (s *Synth) Ensure(sampleHz, halfSpanHz float64) {
	if s.wave != nil &&
		math.Abs(halfSpanHz-s.halfSpan) <= 500 &&
		math.Abs(sampleHz-s.sampleHz) <= 1 {
		return
	}
	s.rebuild(sampleHz, halfSpanHz)
}

func (s *Synth) rebuild(sampleHz, halfSpanHz float64) {
	const n = WaveLength
	freq := make([]complex128, n)

	binHz := sampleHz / float64(n)
	halfBins := clampInt(int(math.Floor(halfSpanHz/binHz)), 1, n/2-1)
	notchBins := 0
	if binHz > 0 {
		notchBins = int(math.Round(notchHz / binHz))
	}
	if notchBins < 0 {
		notchBins = 0
	}

	rng := rand.New(rand.NewSource(rngSeed))

	for k := 1; k <= halfBins; k++ {
		if k <= notchBins {
			continue
		}
		freq[k] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	for k := n - halfBins; k < n; k++ {
		dist := n - k
		if dist <= notchBins {
			continue
		}
		freq[k] = complex(rng.NormFloat64(), rng.NormFloat64())
	}

	dsp.InverseFFT(freq)

	var sumSq float64
	wave := make([]complex64, n)
	for i, c := range freq {
		re, im := real(c), imag(c)
		sumSq += re*re + im*im
		wave[i] = complex(float32(re), float32(im))
	}
	rms := math.Sqrt(sumSq / float64(n))
	scale := float32(1.0)
	if rms > 1e-12 {
		scale = float32(1.0 / rms)
	}
	for i := range wave {
		wave[i] *= complex(scale, 0)
	}

	s.wave = wave
	s.pos = 0
	s.sampleHz = sampleHz
	s.halfSpan = halfSpanHz
}

// Next fills out with the next len(out) cyclic samples, wrapping the
// playback position, without amplitude scaling.
func (s *Synth) Next(out []complex64) {
	n := len(s.wave)
	if n == 0 {
		return
	}
	for i := range out {
		out[i] = s.wave[s.pos]
		s.pos++
		if s.pos >= n {
			s.pos = 0
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
