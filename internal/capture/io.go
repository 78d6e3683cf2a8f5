package capture

import (
	"encoding/binary"
	"io"
	"math"
)

// writeComplex64 appends samples to w as interleaved little-endian float32
// I/Q pairs, matching the *.cf32 wire format exactly.
func writeComplex64(w io.Writer, samples []complex64) error {
	buf := make([]byte, len(samples)*SampleSize)
	for i, s := range samples {
		off := i * SampleSize
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(imag(s)))
	}
	_, err := w.Write(buf)
	return err
}

// ReadCF32 reads an entire *.cf32 (or *.cf32.part) file's contents as
// interleaved little-endian float32 I/Q pairs.
func ReadCF32(r io.Reader) ([]complex64, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw)%SampleSize != 0 {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]complex64, len(raw)/SampleSize)
	for i := range out {
		off := i * SampleSize
		re := math.Float32frombits(binary.LittleEndian.Uint32(raw[off:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(raw[off+4:]))
		out[i] = complex(re, im)
	}
	return out, nil
}
