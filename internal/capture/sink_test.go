package capture

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFinalizeWritesReadableFileAndRemovesSpool(t *testing.T) {
	dir := t.TempDir()
	s := NewSink(dir)

	armUTC := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := s.OpenSpool(armUTC, 433_920_000); err != nil {
		t.Fatalf("OpenSpool: %v", err)
	}
	spoolPath := s.SpoolPath()
	if _, err := os.Stat(spoolPath); err != nil {
		t.Fatalf("expected spool file to exist: %v", err)
	}

	samples := []complex64{1 + 2i, 3 + 4i, -1 - 1i}
	path, err := s.Finalize(samples, armUTC, 433_920_000, -20)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if _, err := os.Stat(spoolPath); !os.IsNotExist(err) {
		t.Fatalf("expected spool file removed, stat err=%v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open final: %v", err)
	}
	defer f.Close()
	got, err := ReadCF32(f)
	if err != nil {
		t.Fatalf("ReadCF32: %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(got))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d mismatch: got %v want %v", i, got[i], samples[i])
		}
	}

	if filepath.Base(path) != "20260102_030405_RX433.920_thr-20.cf32" {
		t.Fatalf("unexpected file name: %s", filepath.Base(path))
	}
}

func TestCancelRemovesSpoolAndNoFinalExists(t *testing.T) {
	dir := t.TempDir()
	s := NewSink(dir)
	armUTC := time.Now().UTC()

	if err := s.OpenSpool(armUTC, 100_000_000); err != nil {
		t.Fatalf("OpenSpool: %v", err)
	}
	spoolPath := s.SpoolPath()
	s.Cancel()

	if _, err := os.Stat(spoolPath); !os.IsNotExist(err) {
		t.Fatalf("expected spool removed after cancel")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty capture dir after cancel, found %v", entries)
	}
}
