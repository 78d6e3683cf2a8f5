package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	cfg "github.com/skywave-radio/console/internal/config"
	"github.com/skywave-radio/console/internal/sdr"
)

func TestPollInterval(t *testing.T) {
	if got := pollInterval(0); got != 2*time.Second {
		t.Errorf("pollInterval(0) = %v, want 2s", got)
	}
	if got := pollInterval(-1); got != 2*time.Second {
		t.Errorf("pollInterval(-1) = %v, want 2s", got)
	}
	if got := pollInterval(0.5); got != 500*time.Millisecond {
		t.Errorf("pollInterval(0.5) = %v, want 500ms", got)
	}
}

func TestNewRxHandlerUnsupportedDriver(t *testing.T) {
	_, err := newRxHandler(cfg.RxDevice{Driver: "bladerf"})
	if err == nil {
		t.Error("newRxHandler(bladerf) returned nil error")
	}
}

func TestNewTxHandlerRejectsNonHackrf(t *testing.T) {
	_, err := newTxHandler(cfg.TxDevice{Driver: "rtlsdr"})
	if err == nil {
		t.Error("newTxHandler(rtlsdr) returned nil error")
	}
}

func TestWaitForBothReadyBlocksUntilMonitorPolls(t *testing.T) {
	rtl := &alwaysPresentProber{name: "rtlsdr"}
	hack := &alwaysPresentProber{name: "hackrf"}
	monitor := sdr.NewDeviceMonitor(rtl, hack, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Run(ctx)

	if ok := waitForBothReady(ctx, monitor, time.Millisecond); !ok {
		t.Error("waitForBothReady() = false, want true once both radios are present")
	}
}

type alwaysPresentProber struct{ name string }

func (p *alwaysPresentProber) Name() string                     { return p.name }
func (p *alwaysPresentProber) Present(ctx context.Context) bool { return true }

func TestWaitForBothReadyReturnsFalseOnCancel(t *testing.T) {
	monitor := sdr.NewDeviceMonitor(nil, nil, time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if ok := waitForBothReady(ctx, monitor, time.Millisecond); ok {
		t.Error("waitForBothReady() = true, want false after ctx cancellation")
	}
}

func TestResetCaptureDirClearsExistingContents(t *testing.T) {
	dir := t.TempDir()
	captureDir := filepath.Join(dir, "captures")
	if err := os.MkdirAll(captureDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	stale := filepath.Join(captureDir, "stale.cf32.part")
	if err := os.WriteFile(stale, []byte("leftover"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := resetCaptureDir(captureDir); err != nil {
		t.Fatalf("resetCaptureDir() error = %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale file survived resetCaptureDir: err = %v", err)
	}
	info, err := os.Stat(captureDir)
	if err != nil || !info.IsDir() {
		t.Errorf("captureDir not recreated as a directory: err = %v", err)
	}
}

func TestResetCaptureDirEmptyIsNoop(t *testing.T) {
	if err := resetCaptureDir(""); err != nil {
		t.Errorf("resetCaptureDir(\"\") error = %v", err)
	}
}

func TestRetryingRunStopsOnNilError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		return nil
	}
	if err := retryingRun(context.Background(), logger, "test", fn, 1); err != nil {
		t.Fatalf("retryingRun() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestRetryingRunRetriesUntilCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	fn := func(ctx context.Context) error {
		calls++
		if calls >= 3 {
			cancel()
		}
		return errors.New("device gone")
	}

	if err := retryingRun(ctx, logger, "test", fn, 1); err != nil {
		t.Fatalf("retryingRun() error = %v", err)
	}
	if calls < 3 {
		t.Errorf("fn called %d times, want >= 3", calls)
	}
}

func TestRetryingRunReturnsImmediatelyWhenAlreadyCancelled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		return ctx.Err()
	}
	if err := retryingRun(ctx, logger, "test", fn, 1); err != nil {
		t.Fatalf("retryingRun() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}
