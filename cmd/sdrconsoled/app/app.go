package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/skywave-radio/console/internal/capture"
	cfg "github.com/skywave-radio/console/internal/config"
	"github.com/skywave-radio/console/internal/control"
	"github.com/skywave-radio/console/internal/rx"
	"github.com/skywave-radio/console/internal/sdr"
	"github.com/skywave-radio/console/internal/sdr/hackrf"
	"github.com/skywave-radio/console/internal/sdr/rtlsdr"
	"github.com/skywave-radio/console/internal/storage"
	"github.com/skywave-radio/console/internal/tx"
)

// Run builds the devices, control plane, and pipelines described by c and
// runs them until ctx is cancelled: build storage, build devices, run,
// generalized to this console's fixed rx+tx pipeline pair instead of an
// arbitrary device list.
func Run(ctx context.Context, c cfg.Console, logger *slog.Logger) error {
	store := storage.NewSqliteStore(c.Session.DBPath)
	defer store.Close()

	sessionID, err := store.CreateSession(ctx, c.Rx.Driver, fmt.Sprintf("%+v", c.Rx.Config), c.Tx.Driver, fmt.Sprintf("%+v", c.Tx.Config))
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	rxHandler, err := newRxHandler(c.Rx)
	if err != nil {
		return fmt.Errorf("creating rx device: %w", err)
	}
	txHandler, err := newTxHandler(c.Tx)
	if err != nil {
		return fmt.Errorf("creating tx device: %w", err)
	}

	receiver := sdr.NewReceiver(c.Rx.Driver, rxHandler, logger)
	transmitter := sdr.NewTransmitter(c.Tx.Driver, txHandler, logger)

	cp := control.New(logger, c.Rx.Config, c.Tx.Config)

	if err := resetCaptureDir(c.Settings.CaptureDir); err != nil {
		return fmt.Errorf("resetting capture dir: %w", err)
	}

	sink := capture.NewSink(c.Settings.CaptureDir)
	rxPipeline := rx.New(receiver, sink, cp, logger)
	txPipeline := tx.New(transmitter, tx.NewSynth(), cp, logger)

	monitor := sdr.NewDeviceMonitor(
		sdr.NewRtlsdrProber(),
		sdr.NewHackrfProber(),
		pollInterval(c.Settings.PollIntervalS),
		cp.EmitPresenceChanged,
	)

	var wg sync.WaitGroup
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		monitor.Run(runCtx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		drainEvents(runCtx, cp, store, sessionID, logger)
	}()

	// Mirror SplashScreen's pollDevices gate: the main pipelines only open
	// once both radios have been seen present, rather than racing a device
	// enumeration that may still be settling at process start.
	logger.Info("waiting for both radios to be present")
	if !waitForBothReady(runCtx, monitor, pollInterval(c.Settings.PollIntervalS)) {
		cancel()
		wg.Wait()
		return nil
	}
	logger.Info("both radios present, starting pipelines")

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := retryingRun(runCtx, logger, "rx", rxPipeline.Run, c.Settings.DeviceOpenRetryMs); err != nil {
			logger.Error("rx pipeline stopped", slog.String("err", err.Error()))
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := retryingRun(runCtx, logger, "tx", txPipeline.Run, c.Settings.DeviceOpenRetryMs); err != nil {
			logger.Error("tx pipeline stopped", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-runCtx.Done()
	wg.Wait()
	return nil
}

// waitForBothReady blocks until monitor reports both radios present or ctx
// is cancelled, polling at interval. It returns false if ctx was cancelled
// first.
func waitForBothReady(ctx context.Context, monitor *sdr.DeviceMonitor, interval time.Duration) bool {
	if monitor.BothReady() {
		return true
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if monitor.BothReady() {
				return true
			}
		}
	}
}

// resetCaptureDir clears and recreates dir so a crashed prior run's partial
// or stale captures never survive into a new process.
func resetCaptureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// retryingRun retries fn (a pipeline's Run) after retryMs, following the
// reference SDRReceiver's open-retry loop (original_source), so a device
// unplugged at startup or mid-run is picked back up without restarting the
// whole daemon.
func retryingRun(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error, retryMs int) error {
	delay := time.Duration(retryMs) * time.Millisecond
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	for {
		err := fn(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			return nil
		}
		logger.Warn(fmt.Sprintf("%s pipeline error, retrying", name), slog.String("err", err.Error()), slog.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func drainEvents(ctx context.Context, cp *control.ControlPlane, store storage.Store, sessionID int64, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-cp.Events():
			if !ok {
				return
			}
			if err := store.InsertEvent(ctx, sessionID, ev); err != nil {
				logger.Error("failed to log event", slog.String("err", err.Error()))
			}
		}
	}
}

func pollInterval(s float64) time.Duration {
	if s <= 0 {
		return 2 * time.Second
	}
	return time.Duration(s * float64(time.Second))
}

func newRxHandler(d cfg.RxDevice) (sdr.RxHandler, error) {
	switch d.Driver {
	case "rtlsdr":
		return rtlsdr.New(&rtlsdr.Config{
			CenterHz:     d.Config.CenterHz,
			SampleRateHz: d.Config.SampleRateHz,
			GainDb:       d.Config.GainDb,
		})
	case "hackrf":
		lna, vga := hackrf.SplitGain(d.Config.GainDb)
		return hackrf.NewRx(&hackrf.RxConfig{
			CenterHz:     d.Config.CenterHz,
			SampleRateHz: d.Config.SampleRateHz,
			LNAGain:      lna,
			VGAGain:      vga,
		})
	default:
		return nil, fmt.Errorf("unsupported rx driver %q", d.Driver)
	}
}

func newTxHandler(d cfg.TxDevice) (sdr.TxHandler, error) {
	if d.Driver != "hackrf" {
		return nil, fmt.Errorf("unsupported tx driver %q", d.Driver)
	}
	basebandHz := d.Config.HalfSpanHz * 2
	if basebandHz < 2000 {
		basebandHz = 2000
	}
	return hackrf.NewTx(&hackrf.TxConfig{
		CenterHz:     d.Config.CenterHz,
		SampleRateHz: d.Config.SampleRateHz,
		TxVGAGain:    int(d.Config.GainDb),
		BasebandHz:   basebandHz,
	})
}
