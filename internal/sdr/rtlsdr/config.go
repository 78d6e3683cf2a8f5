// Package rtlsdr wraps the rtl_sdr command-line tool as a streaming
// receive-only sdr.RxHandler, following the same handler/Args shape as the
// reference daemon's rtl_power wrapper but emitting raw IQ instead of
// power-sweep CSV.
package rtlsdr

import "fmt"

const (
	Runtime = "rtl_sdr"
	Device  = "RTL-SDR"
)

// Config configures one rtl_sdr receive session at a fixed center
// frequency, mirroring the tunable fields of config.RxConfig.
type Config struct {
	DeviceIndex  int
	CenterHz     float64
	SampleRateHz float64
	GainDb       float64 // 0 selects automatic gain
	PPMError     int
	BiasTee      bool
}

func (c *Config) Validate() error {
	if c.CenterHz <= 0 {
		return fmt.Errorf("rtlsdr.Config: centerHz must be positive: %f", c.CenterHz)
	}
	if c.SampleRateHz <= 0 {
		return fmt.Errorf("rtlsdr.Config: sampleRateHz must be positive: %f", c.SampleRateHz)
	}
	if c.GainDb < 0 {
		return fmt.Errorf("rtlsdr.Config: gainDb must be non-negative: %f", c.GainDb)
	}
	return nil
}

// Args builds the rtl_sdr command line for continuous raw IQ to stdout.
func (c *Config) Args() ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		"-d", fmt.Sprintf("%d", c.DeviceIndex),
		"-f", fmt.Sprintf("%.0f", c.CenterHz),
		"-s", fmt.Sprintf("%.0f", c.SampleRateHz),
	}
	if c.GainDb > 0 {
		args = append(args, "-g", fmt.Sprintf("%.1f", c.GainDb))
	}
	if c.PPMError != 0 {
		args = append(args, "-p", fmt.Sprintf("%d", c.PPMError))
	}
	if c.BiasTee {
		args = append(args, "-T")
	}
	args = append(args, "-") // dump raw samples to stdout

	return args, nil
}
