package tx

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/skywave-radio/console/internal/dsp"
)

func TestSynthRMSNormalizedToOne(t *testing.T) {
	s := NewSynth()
	s.Ensure(2_000_000, 200_000)

	var sumSq float64
	for _, c := range s.wave {
		re, im := float64(real(c)), float64(imag(c))
		sumSq += re*re + im*im
	}
	rms := math.Sqrt(sumSq / float64(len(s.wave)))
	if math.Abs(rms-1.0) > 0.01 {
		t.Fatalf("expected RMS ~1.0, got %v", rms)
	}
}

func TestSynthRebuildsOnlyWhenFingerprintDrifts(t *testing.T) {
	s := NewSynth()
	s.Ensure(2_000_000, 200_000)
	wave := s.wave

	s.Ensure(2_000_000.5, 200_100) // within tolerance: 0.5Hz, 100Hz
	if &s.wave[0] != &wave[0] {
		t.Fatalf("expected no rebuild within tolerance")
	}

	s.Ensure(2_000_000, 200_700) // exceeds 500Hz span tolerance
	if &s.wave[0] == &wave[0] {
		t.Fatalf("expected rebuild when span drifts beyond tolerance")
	}
}

// TestSynthNotchIsCenteredOnDC rebuilds a waveform and FFTs it back to the
// frequency domain (dsp.FFT is InverseFFT's exact inverse up to the
// synthesizer's uniform RMS scaling), then checks the zeroed band sits
// against DC on both sides rather than against the outer edge of the
// negative-frequency half. The waveform is stored as complex64, so float32
// rounding leaves the zeroed bins near 1e-5 rather than exactly zero, while
// bins inside the noise band come back near 1e3.
func TestSynthNotchIsCenteredOnDC(t *testing.T) {
	s := NewSynth()
	s.Ensure(2_000_000, 200_000)

	n := len(s.wave)
	freq := make([]complex128, n)
	for i, c := range s.wave {
		freq[i] = complex128(c)
	}
	dsp.FFT(freq)

	binHz := 2_000_000.0 / float64(n)
	notchBins := int(math.Round(1500.0 / binHz))

	mag := func(k int) float64 { return cmplx.Abs(freq[(k%n+n)%n]) }

	// silent sits well above the float32 rounding floor and six orders of
	// magnitude below an in-band bin.
	const silent = 1e-3

	// Bins immediately adjacent to DC, on both sides, must be silent.
	if m := mag(1); m > silent {
		t.Errorf("bin +1 (near DC): magnitude = %v, want ~0", m)
	}
	if m := mag(-1); m > silent {
		t.Errorf("bin -1 (near DC): magnitude = %v, want ~0", m)
	}
	if m := mag(notchBins - 1); m > silent {
		t.Errorf("bin +%d (inside notch): magnitude = %v, want ~0", notchBins-1, m)
	}
	if m := mag(-(notchBins - 1)); m > silent {
		t.Errorf("bin -%d (inside notch): magnitude = %v, want ~0", notchBins-1, m)
	}

	// Just outside the notch, on both sides, should carry noise energy.
	if m := mag(notchBins + 5); m < 1e-6 {
		t.Errorf("bin +%d (just outside notch): magnitude = %v, want > 0", notchBins+5, m)
	}
	if m := mag(-(notchBins + 5)); m < 1e-6 {
		t.Errorf("bin -%d (just outside notch): magnitude = %v, want > 0", notchBins+5, m)
	}
}

func TestSynthNextWrapsCyclically(t *testing.T) {
	s := NewSynth()
	s.Ensure(1_000_000, 100_000)

	out := make([]complex64, WaveLength+10)
	s.Next(out)

	for i := 0; i < 10; i++ {
		if out[i] != out[WaveLength+i] {
			t.Fatalf("expected wraparound at index %d", i)
		}
	}
}
