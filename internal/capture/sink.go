// Package capture owns the on-disk lifecycle of a trigger-machine capture:
// the best-effort in-progress spool file and the final trimmed file, with
// bit-exact naming and guaranteed cleanup on cancellation.
package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SampleSize is the on-disk size in bytes of one interleaved I/Q sample.
const SampleSize = 8 // two little-endian float32s

// Sink owns the spool and final file slots for one Arm..terminal-state
// session. It is not safe for concurrent use; the receive pipeline is its
// only caller.
type Sink struct {
	dir       string
	spoolFile *os.File
	spoolPath string
}

// NewSink creates a sink that writes into dir (typically "captures").
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// OpenSpool best-effort opens the in-progress spool file at Arm time. A
// failure here is tolerated by the trigger machine: capture still succeeds
// from the in-memory buffer, so the returned error is informational only.
func (s *Sink) OpenSpool(armUTC time.Time, centerHz float64) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	s.spoolPath = filepath.Join(s.dir, fmt.Sprintf(
		"in_progress_%s_RX%s.cf32.part",
		armUTC.UTC().Format("20060102_150405"),
		formatMHz(centerHz),
	))
	f, err := os.OpenFile(s.spoolPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		s.spoolPath = ""
		return err
	}
	s.spoolFile = f
	return nil
}

// SpoolPath returns the current spool path, or "" if no spool is open.
func (s *Sink) SpoolPath() string {
	return s.spoolPath
}

// AppendSpool writes raw complex samples to the open spool file, if any.
// Called with no spool open, it is a silent no-op (spooling is best-effort).
func (s *Sink) AppendSpool(samples []complex64) error {
	if s.spoolFile == nil {
		return nil
	}
	return writeComplex64(s.spoolFile, samples)
}

// Finalize writes samples to a fresh final-capture path derived from the
// arm timestamp, center frequency, and threshold, then removes the spool.
// On write failure, no partial final file is left behind.
func (s *Sink) Finalize(samples []complex64, armUTC time.Time, centerHz, thresholdDB float64) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.closeAndRemoveSpool()
		return "", err
	}
	finalPath := filepath.Join(s.dir, fmt.Sprintf(
		"%s_RX%s_thr%s.cf32",
		armUTC.UTC().Format("20060102_150405"),
		formatMHz(centerHz),
		formatDB(thresholdDB),
	))

	f, err := os.OpenFile(finalPath+".tmp", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		s.closeAndRemoveSpool()
		return "", err
	}
	if err := writeComplex64(f, samples); err != nil {
		f.Close()
		os.Remove(finalPath + ".tmp")
		s.closeAndRemoveSpool()
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(finalPath + ".tmp")
		s.closeAndRemoveSpool()
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(finalPath + ".tmp")
		s.closeAndRemoveSpool()
		return "", err
	}
	if err := os.Rename(finalPath+".tmp", finalPath); err != nil {
		os.Remove(finalPath + ".tmp")
		s.closeAndRemoveSpool()
		return "", err
	}

	s.closeAndRemoveSpool()
	return finalPath, nil
}

// Cancel closes and removes the spool file, if any, leaving no artifact.
func (s *Sink) Cancel() {
	s.closeAndRemoveSpool()
}

func (s *Sink) closeAndRemoveSpool() {
	if s.spoolFile != nil {
		s.spoolFile.Close()
		s.spoolFile = nil
	}
	if s.spoolPath != "" {
		os.Remove(s.spoolPath)
		s.spoolPath = ""
	}
}

func formatMHz(hz float64) string {
	return fmt.Sprintf("%.3f", hz/1e6)
}

func formatDB(db float64) string {
	return fmt.Sprintf("%.0f", db)
}
