package sdr

import "testing"

func TestDecodeU8(t *testing.T) {
	// 127.5 is DC; 255 and 0 are the extremes.
	buf := []byte{255, 0, 128, 127}
	out := decodeU8(buf)
	if len(out) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(out))
	}
	if re, im := real(out[0]), imag(out[0]); re < 0.99 || im > -0.99 {
		t.Errorf("sample 0: got (%f, %f)", re, im)
	}
}

func TestDecodeS8(t *testing.T) {
	buf := []byte{127, 0x80, 0, 1} // 127, -128, 0, 1
	out := decodeS8(buf)
	if len(out) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(out))
	}
	if re := real(out[0]); re < 0.99 {
		t.Errorf("sample 0 real: got %f, want ~1.0", re)
	}
	if im := imag(out[0]); im > -0.99 {
		t.Errorf("sample 0 imag: got %f, want ~-1.0", im)
	}
	if re, im := real(out[1]), imag(out[1]); re != 0 || im != 1.0/128 {
		t.Errorf("sample 1: got (%f, %f)", re, im)
	}
}

func TestEncodeS8RoundTrip(t *testing.T) {
	in := []complex64{complex(1.0, -1.0), complex(0, 0.5)}
	buf := encodeS8(in)
	out := decodeS8(buf)
	for i := range in {
		if d := real(out[i]) - real(in[i]); d > 0.02 || d < -0.02 {
			t.Errorf("sample %d real: got %f, want ~%f", i, real(out[i]), real(in[i]))
		}
		if d := imag(out[i]) - imag(in[i]); d > 0.02 || d < -0.02 {
			t.Errorf("sample %d imag: got %f, want ~%f", i, imag(out[i]), imag(in[i]))
		}
	}
}

func TestClampS8(t *testing.T) {
	cases := []struct {
		in   float32
		want int8
	}{
		{200, 127},
		{-200, -128},
		{10, 10},
	}
	for _, c := range cases {
		if got := clampS8(c.in); got != c.want {
			t.Errorf("clampS8(%f) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestBytesPerSample(t *testing.T) {
	if n := bytesPerSample(FormatU8); n != 2 {
		t.Errorf("FormatU8: got %d, want 2", n)
	}
	if n := bytesPerSample(FormatS8); n != 2 {
		t.Errorf("FormatS8: got %d, want 2", n)
	}
}
