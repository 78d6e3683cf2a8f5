// Package dsp holds the low-level numeric primitives shared by the receive
// spectrum engine and the transmit noise synthesizer: an in-place radix-2 FFT
// and window-function helpers. Both callers own their own scratch buffers;
// nothing here is safe to share across goroutines.
package dsp

import (
	"math"
	"math/cmplx"
)

// FFT computes the forward discrete Fourier transform of x in place.
// len(x) must be a power of two; callers are responsible for enforcing that
// (see spectrum.ClampFFTSize).
func FFT(x []complex128) {
	transform(x, false)
}

// InverseFFT computes the inverse discrete Fourier transform of x in place,
// including the 1/n scaling that makes it a true inverse of FFT.
func InverseFFT(x []complex128) {
	transform(x, true)
	n := complex(float64(len(x)), 0)
	for i := range x {
		x[i] /= n
	}
}

// transform is an iterative Cooley-Tukey radix-2 FFT, bit-reversal permutation
// followed by butterfly passes. inverse flips the sign of the twiddle angle.
func transform(x []complex128, inverse bool) {
	n := len(x)
	if n <= 1 {
		return
	}

	bits := 0
	for tmp := n; tmp > 1; tmp >>= 1 {
		bits++
	}
	for i := 0; i < n; i++ {
		j := bitReverse(i, bits)
		if j > i {
			x[i], x[j] = x[j], x[i]
		}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}

	for size := 2; size <= n; size *= 2 {
		half := size / 2
		step := n / size
		for i := 0; i < n; i += size {
			k := 0
			for j := i; j < i+half; j++ {
				angle := sign * 2 * math.Pi * float64(k) / float64(n)
				w := cmplx.Exp(complex(0, angle))
				t := x[j+half] * w
				x[j+half] = x[j] - t
				x[j] = x[j] + t
				k += step
			}
		}
	}
}

func bitReverse(i, bits int) int {
	j := 0
	for k := 0; k < bits; k++ {
		if i&(1<<k) != 0 {
			j |= 1 << (bits - 1 - k)
		}
	}
	return j
}
