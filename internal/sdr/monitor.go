package sdr

import (
	"context"
	"os/exec"
	"sync"
	"time"
)

// Prober reports whether one radio is currently attached. Implementations
// shell out to a fast, non-streaming probe command (rtl_test/hackrf_info)
// rather than a cgo enumeration call, consistent with this package's
// subprocess-only device access.
type Prober interface {
	// Name identifies the radio this prober checks ("rtlsdr", "hackrf").
	Name() string
	// Present runs the probe and reports whether the radio responded.
	Present(ctx context.Context) bool
}

// rtlsdrProber runs `rtl_test -t`, which enumerates the first RTL-SDR
// device, prints its tuner, and exits immediately.
type rtlsdrProber struct{ binPath string }

// NewRtlsdrProber locates rtl_test on PATH.
func NewRtlsdrProber() Prober {
	binPath, _ := FindRuntime("rtl_test")
	return &rtlsdrProber{binPath: binPath}
}

func (p *rtlsdrProber) Name() string { return "rtlsdr" }

func (p *rtlsdrProber) Present(ctx context.Context) bool {
	if p.binPath == "" {
		return false
	}
	cmd := exec.CommandContext(ctx, p.binPath, "-t")
	return cmd.Run() == nil
}

// hackrfProber runs `hackrf_info`, which prints board info for the first
// attached HackRF and exits immediately.
type hackrfProber struct{ binPath string }

// NewHackrfProber locates hackrf_info on PATH.
func NewHackrfProber() Prober {
	binPath, _ := FindRuntime("hackrf_info")
	return &hackrfProber{binPath: binPath}
}

func (p *hackrfProber) Name() string { return "hackrf" }

func (p *hackrfProber) Present(ctx context.Context) bool {
	if p.binPath == "" {
		return false
	}
	cmd := exec.CommandContext(ctx, p.binPath)
	return cmd.Run() == nil
}

// DeviceMonitor polls a set of Probers on an interval and reports presence
// transitions, mirroring SDRManager::pollDevices: probe, compare against
// the last known state, and fire only on a change.
type DeviceMonitor struct {
	rtlsdr, hackrf Prober
	interval       time.Duration
	onChange       func(rtlsdrPresent, hackrfPresent bool)

	mu                  sync.Mutex
	rtlFound, hackFound bool
}

// NewDeviceMonitor creates a monitor that calls onChange whenever RTL-SDR
// or HackRF presence flips, polling every interval.
func NewDeviceMonitor(rtlsdr, hackrf Prober, interval time.Duration, onChange func(rtlsdrPresent, hackrfPresent bool)) *DeviceMonitor {
	return &DeviceMonitor{rtlsdr: rtlsdr, hackrf: hackrf, interval: interval, onChange: onChange}
}

// Run polls until ctx is cancelled. It should be run in its own goroutine.
func (m *DeviceMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *DeviceMonitor) poll(ctx context.Context) {
	rtl := m.rtlsdr != nil && m.rtlsdr.Present(ctx)
	hack := m.hackrf != nil && m.hackrf.Present(ctx)

	m.mu.Lock()
	changed := rtl != m.rtlFound || hack != m.hackFound
	if changed {
		m.rtlFound = rtl
		m.hackFound = hack
	}
	m.mu.Unlock()

	if changed && m.onChange != nil {
		m.onChange(rtl, hack)
	}
}

// BothReady reports whether the last poll found both radios present,
// mirroring SDRManager::hasRTLSDR() && hasHackRF() as a single predicate
// the orchestrator can gate startup on. Safe to call concurrently with Run.
func (m *DeviceMonitor) BothReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rtlFound && m.hackFound
}
