package tx

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/skywave-radio/console/internal/control"
)

// idlePoll bounds how long Run waits before re-checking TxEnabled while
// transmit is stopped, so a stop_tx/start_tx toggle is picked up promptly
// without busy-spinning the goroutine.
const idlePoll = 20 * time.Millisecond

// blockSamples is the number of samples generated and written per
// iteration, fixing the TX frame length.
const blockSamples = 4096

// minBasebandHz is the floor on the adaptive baseband filter bandwidth,
// applied regardless of how narrow half_span_hz gets.
const minBasebandHz = 2000.0

// basebandDriftHz is how far the computed baseband bandwidth may wander
// from what's currently applied before the pipeline re-applies it.
const basebandDriftHz = 1.0

// BlockSink is the subset of *sdr.Transmitter the pipeline depends on.
type BlockSink interface {
	Start(ctx context.Context) (chan<- []complex64, <-chan error, error)
	Stop()
}

// BasebandSetter is implemented by sinks that expose a live baseband
// filter bandwidth control (see sdr.Transmitter.SetBasebandHz), narrowed
// the same way BlockSink is for testability.
type BasebandSetter interface {
	SetBasebandHz(hz float64)
}

// Pipeline is the transmit side of the console: it streams Synth's
// band-limited noise through sink whenever ControlPlane.TxEnabled is true,
// scaled to the configured target dBFS.
type Pipeline struct {
	sink   BlockSink
	synth  *Synth
	cp     *control.ControlPlane
	logger *slog.Logger

	basebandHz  float64
	basebandSet bool
}

// New creates a transmit pipeline writing synth's output through sink.
func New(sink BlockSink, synth *Synth, cp *control.ControlPlane, logger *slog.Logger) *Pipeline {
	return &Pipeline{sink: sink, synth: synth, cp: cp, logger: logger}
}

// Run starts sink once and feeds it scaled noise blocks for as long as
// ctx is live, skipping writes while TxEnabled is false so the subprocess
// keeps running (cheap to idle) rather than being restarted on every
// start_tx/stop_tx toggle. While enabled it also keeps the baseband filter
// bandwidth at max(2000, 2*half_span_hz), restarting sink when that
// setpoint drifts by more than 1Hz.
func (p *Pipeline) Run(ctx context.Context) error {
	in, faults, err := p.sink.Start(ctx)
	if err != nil {
		return err
	}
	defer p.sink.Stop()

	buf := make([]complex64, blockSamples)

	for {
		if !p.cp.TxEnabled() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err, ok := <-faults:
				if !ok {
					return nil
				}
				if err != nil {
					p.logger.Error("tx device fault", slog.String("err", err.Error()))
					return err
				}
			case <-time.After(idlePoll):
			}
			continue
		}

		txCfg := p.cp.TxConfig()

		if p.applyBaseband(txCfg.HalfSpanHz) {
			var err error
			in, faults, err = p.sink.Start(ctx)
			if err != nil {
				return err
			}
		}

		p.synth.Ensure(txCfg.SampleRateHz, txCfg.HalfSpanHz)
		p.synth.Next(buf)

		scale := float32(math.Pow(10, txCfg.TargetDbfs/20))
		scaled := make([]complex64, len(buf))
		for i, c := range buf {
			scaled[i] = c * complex(scale, 0)
		}

		select {
		case in <- scaled:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// applyBaseband computes the adaptive baseband bandwidth for halfSpanHz
// and, if it has drifted from what's currently applied, pushes it to sink
// (when sink is a BasebandSetter) and stops the subprocess so the caller
// restarts it with the new value applied. It reports whether it stopped
// the sink.
func (p *Pipeline) applyBaseband(halfSpanHz float64) bool {
	desired := halfSpanHz * 2
	if desired < minBasebandHz {
		desired = minBasebandHz
	}

	if !p.basebandSet {
		p.basebandHz = desired
		p.basebandSet = true
		return false
	}
	if math.Abs(desired-p.basebandHz) <= basebandDriftHz {
		return false
	}

	setter, ok := p.sink.(BasebandSetter)
	if !ok {
		p.basebandHz = desired
		return false
	}

	p.logger.Info("baseband filter bandwidth drifted, restarting tx device",
		slog.Float64("basebandHz", desired))
	setter.SetBasebandHz(desired)
	p.sink.Stop()
	p.basebandHz = desired
	return true
}
