package hackrf

import "testing"

func TestRxConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     RxConfig
		wantErr bool
	}{
		{"valid", RxConfig{CenterHz: 433e6, SampleRateHz: 2e6, LNAGain: 16, VGAGain: 20}, false},
		{"zero center", RxConfig{CenterHz: 0, SampleRateHz: 2e6}, true},
		{"zero rate", RxConfig{CenterHz: 433e6, SampleRateHz: 0}, true},
		{"lna too high", RxConfig{CenterHz: 433e6, SampleRateHz: 2e6, LNAGain: 48}, true},
		{"vga too high", RxConfig{CenterHz: 433e6, SampleRateHz: 2e6, VGAGain: 80}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if (err != nil) != c.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestRxConfigArgs(t *testing.T) {
	cfg := &RxConfig{CenterHz: 433920000, SampleRateHz: 2000000, LNAGain: 17, VGAGain: 21, AmpEnable: true}
	args, err := cfg.Args()
	if err != nil {
		t.Fatalf("Args() error = %v", err)
	}
	want := []string{"-r", "-", "-f", "433920000", "-s", "2000000", "-l", "16", "-g", "20", "-a", "1"}
	if len(args) != len(want) {
		t.Fatalf("Args() = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d: got %q, want %q", i, args[i], want[i])
		}
	}
}

func TestTxConfigArgs(t *testing.T) {
	cfg := &TxConfig{CenterHz: 433920000, SampleRateHz: 2000000, TxVGAGain: 10}
	args, err := cfg.Args()
	if err != nil {
		t.Fatalf("Args() error = %v", err)
	}
	want := []string{"-t", "-", "-f", "433920000", "-s", "2000000", "-x", "10"}
	if len(args) != len(want) {
		t.Fatalf("Args() = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d: got %q, want %q", i, args[i], want[i])
		}
	}
}

func TestTxConfigArgsWithBaseband(t *testing.T) {
	cfg := &TxConfig{CenterHz: 433920000, SampleRateHz: 2000000, TxVGAGain: 10, BasebandHz: 300000}
	args, err := cfg.Args()
	if err != nil {
		t.Fatalf("Args() error = %v", err)
	}
	want := []string{"-t", "-", "-f", "433920000", "-s", "2000000", "-x", "10", "-b", "300000"}
	if len(args) != len(want) {
		t.Fatalf("Args() = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d: got %q, want %q", i, args[i], want[i])
		}
	}
}

func TestTxConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     TxConfig
		wantErr bool
	}{
		{"valid", TxConfig{CenterHz: 433e6, SampleRateHz: 2e6, TxVGAGain: 20}, false},
		{"gain too high", TxConfig{CenterHz: 433e6, SampleRateHz: 2e6, TxVGAGain: 50}, true},
		{"negative gain", TxConfig{CenterHz: 433e6, SampleRateHz: 2e6, TxVGAGain: -1}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if (err != nil) != c.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestSplitGain(t *testing.T) {
	cases := []struct {
		name    string
		gainDb  float64
		wantLNA int
		wantVGA int
	}{
		{"fits entirely in LNA", 40, 40, 0},
		{"spills into VGA", 60, 40, 20},
		{"exceeds both ranges", 200, 40, 62},
		{"below one LNA step", 5, 0, 5},
		{"negative clamps to zero", -10, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lna, vga := SplitGain(c.gainDb)
			if lna != c.wantLNA || vga != c.wantVGA {
				t.Errorf("SplitGain(%v) = (%d, %d), want (%d, %d)", c.gainDb, lna, vga, c.wantLNA, c.wantVGA)
			}
		})
	}
}

func TestRoundToStep(t *testing.T) {
	if got := roundToStep(17, 8); got != 16 {
		t.Errorf("roundToStep(17, 8) = %d, want 16", got)
	}
	if got := roundToStep(21, 2); got != 20 {
		t.Errorf("roundToStep(21, 2) = %d, want 20", got)
	}
}
