// Package config holds the RxConfig/TxConfig parameter sets and the
// on-disk console configuration file, following the same
// Validate()-rejects-bad-values-locally convention as this codebase's
// per-driver configs (see internal/sdr/hackrf and internal/sdr/rtlsdr).
package config

import (
	"fmt"

	"github.com/skywave-radio/console/internal/fault"
	"github.com/skywave-radio/console/internal/spectrum"
	"github.com/skywave-radio/console/internal/trigger"
)

// RxConfig is the receive pipeline's tunable parameter set, read from the
// control plane's inbox at each block boundary.
type RxConfig struct {
	CenterHz     float64           `yaml:"centerHz"`
	SampleRateHz float64           `yaml:"sampleRateHz"`
	GainDb       float64           `yaml:"gainDb"`
	FFTSize      int               `yaml:"fftSize"`
	Detector     trigger.Detector  `yaml:"detector"`
	ThresholdDb  float64           `yaml:"thresholdDb"`
	HalfSpanHz   float64           `yaml:"halfSpanHz"`
	DwellS       float64           `yaml:"dwellS"`
	AvgTauS      float64           `yaml:"avgTauS"`
	PreS         float64           `yaml:"preS"`
	PostS        float64           `yaml:"postS"`
}

// DefaultRxConfig mirrors the reference's commonly-used arm parameters
// (pre_s/post_s = 0.2/0.2); the source also arms with 1.0/0.2 in places,
// so both remain valid inputs to Arm regardless of this default (see
// DESIGN.md's resolution of that open question).
func DefaultRxConfig() RxConfig {
	return RxConfig{
		CenterHz:     433_920_000,
		SampleRateHz: 2_000_000,
		GainDb:       20,
		FFTSize:      4096,
		Detector:     trigger.Averaged,
		ThresholdDb:  -30,
		HalfSpanHz:   100_000,
		DwellS:       0.2,
		AvgTauS:      0.2,
		PreS:         0.2,
		PostS:        0.2,
	}
}

// Validate rejects out-of-range fields locally, per the ConfigRejected
// contract: the caller keeps whichever config it already had.
func (c RxConfig) Validate() error {
	if c.SampleRateHz <= 0 {
		return &fault.ConfigRejected{Field: "sampleRateHz", Value: c.SampleRateHz, Reason: "must be positive"}
	}
	if c.FFTSize < spectrum.MinFFTSize/2 || c.FFTSize > spectrum.MaxFFTSize*2 {
		return &fault.ConfigRejected{Field: "fftSize", Value: c.FFTSize, Reason: fmt.Sprintf("wildly out of [%d, %d]", spectrum.MinFFTSize, spectrum.MaxFFTSize)}
	}
	if c.DwellS < 0 {
		return &fault.ConfigRejected{Field: "dwellS", Value: c.DwellS, Reason: "must be non-negative"}
	}
	if c.AvgTauS < 0 {
		return &fault.ConfigRejected{Field: "avgTauS", Value: c.AvgTauS, Reason: "must be non-negative"}
	}
	if c.PreS < 0 || c.PostS < 0 {
		return &fault.ConfigRejected{Field: "preS/postS", Value: [2]float64{c.PreS, c.PostS}, Reason: "must be non-negative"}
	}
	return nil
}

// Normalized returns a copy with the boundary rules from the testable
// properties applied: FFT size clamped to [512, 8192] and rounded to a
// power of two, half_span_hz <= 0 replaced by the 100kHz default.
func (c RxConfig) Normalized() RxConfig {
	c.FFTSize = spectrum.ClampFFTSize(c.FFTSize)
	if c.HalfSpanHz <= 0 {
		c.HalfSpanHz = 100_000
	}
	return c
}

// TxConfig is the transmit pipeline's tunable parameter set.
type TxConfig struct {
	CenterHz     float64 `yaml:"centerHz"`
	SampleRateHz float64 `yaml:"sampleRateHz"`
	TargetDbfs   float64 `yaml:"targetDbfs"`
	HalfSpanHz   float64 `yaml:"halfSpanHz"`
	GainDb       float64 `yaml:"gainDb"`
}

func DefaultTxConfig() TxConfig {
	return TxConfig{
		CenterHz:     433_920_000,
		SampleRateHz: 2_000_000,
		TargetDbfs:   -30,
		HalfSpanHz:   200_000,
		GainDb:       20,
	}
}

func (c TxConfig) Validate() error {
	if c.SampleRateHz <= 0 {
		return &fault.ConfigRejected{Field: "sampleRateHz", Value: c.SampleRateHz, Reason: "must be positive"}
	}
	if c.TargetDbfs < -80 || c.TargetDbfs > 0 {
		return &fault.ConfigRejected{Field: "targetDbfs", Value: c.TargetDbfs, Reason: "must be in [-80, 0]"}
	}
	if c.GainDb < 0 || c.GainDb > 47 {
		return &fault.ConfigRejected{Field: "gainDb", Value: c.GainDb, Reason: "must be in [0, 47]"}
	}
	maxHalfSpan := 0.45 * c.SampleRateHz
	if c.HalfSpanHz > 0 && c.HalfSpanHz > maxHalfSpan {
		return &fault.ConfigRejected{Field: "halfSpanHz", Value: c.HalfSpanHz, Reason: fmt.Sprintf("must be <= 0.45*sampleRate (%.0f)", maxHalfSpan)}
	}
	return nil
}

// Normalized applies the half_span_hz <= 0 -> 100kHz default and clamps to
// [100Hz, 0.45*Fs].
func (c TxConfig) Normalized() TxConfig {
	if c.HalfSpanHz <= 0 {
		c.HalfSpanHz = 100_000
	}
	if c.HalfSpanHz < 100 {
		c.HalfSpanHz = 100
	}
	if max := 0.45 * c.SampleRateHz; c.HalfSpanHz > max {
		c.HalfSpanHz = max
	}
	return c
}
