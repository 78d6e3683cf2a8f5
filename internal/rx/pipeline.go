// Package rx wires together the device stream, spectrum engine, and
// trigger machine into the receive pipeline, following the per-device
// goroutine loop shape of an orchestrator's run/beginSampling pair but
// driving one fixed-frequency streaming device instead of a batch of
// frequency-sweeping devices.
package rx

import (
	"context"
	"log/slog"

	"github.com/skywave-radio/console/internal/capture"
	"github.com/skywave-radio/console/internal/config"
	"github.com/skywave-radio/console/internal/control"
	"github.com/skywave-radio/console/internal/sdr"
	"github.com/skywave-radio/console/internal/spectrum"
	"github.com/skywave-radio/console/internal/trigger"
)

// BlockSource is the subset of *sdr.Receiver the pipeline depends on,
// narrowed for testability.
type BlockSource interface {
	Start(ctx context.Context) (<-chan sdr.Block, <-chan error, error)
	Stop()
}

// Pipeline is the receive side of the console: it owns the spectrum engine
// and trigger machine, and is the sole consumer of a BlockSource.
type Pipeline struct {
	source BlockSource
	engine *spectrum.Engine
	machine *trigger.Machine
	cp     *control.ControlPlane
	logger *slog.Logger

	armed bool
}

// New creates a receive pipeline. sink owns the on-disk capture lifecycle;
// cp is the control plane the pipeline reads configuration from and
// publishes frames/events to.
func New(source BlockSource, sink *capture.Sink, cp *control.ControlPlane, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		source:  source,
		engine:  spectrum.NewEngine(config.DefaultRxConfig().FFTSize),
		machine: trigger.New(sink),
		cp:      cp,
		logger:  logger,
	}
}

// Run streams blocks from source until ctx is cancelled or the device
// faults. It applies ControlPlane configuration and Arm/Cancel requests at
// each block boundary, matching the "no blocking from setters" contract:
// the pipeline, not the caller, decides when a pending change takes effect.
func (p *Pipeline) Run(ctx context.Context) error {
	blocks, faults, err := p.source.Start(ctx)
	if err != nil {
		return err
	}
	defer p.source.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-faults:
			if !ok {
				return nil
			}
			if err != nil {
				p.logger.Error("rx device fault", slog.String("err", err.Error()))
				return err
			}

		case block, ok := <-blocks:
			if !ok {
				return nil
			}
			p.processBlock(block)
		}
	}
}

func (p *Pipeline) processBlock(block sdr.Block) {
	rxCfg := p.cp.RxConfig()

	if p.engine.Size() != rxCfg.FFTSize {
		p.engine.Configure(rxCfg.FFTSize)
	}
	p.engine.SetBandParams(rxCfg.HalfSpanHz, rxCfg.SampleRateHz)

	if p.cp.TakeCancelRequest() {
		p.machine.Cancel()
		p.armed = false
		p.cp.EmitTriggerStatus(false, false, 0, rxCfg.ThresholdDb, false)
	}
	if preS, postS, ok := p.cp.TakeArmRequest(); ok {
		p.machine.Arm(preS, postS, rxCfg.SampleRateHz, rxCfg.CenterHz)
		p.armed = true
	}

	samples := block.Samples
	n := p.engine.Size()
	for off := 0; off < len(samples); off += n {
		end := off + n
		if end > len(samples) {
			// Partial tail block: pad isn't meaningful for a streaming
			// trigger decision, so the remainder gets no FFT and is
			// dropped; it reaches neither the spectrum engine nor the
			// trigger machine.
			break
		}
		chunk := samples[off:end]

		amps, centerMaxLin := p.engine.Process(chunk)
		frame := &spectrum.Frame{
			Timestamp: block.Timestamp,
			Amplitude: append([]float32(nil), amps...),
			CenterHz:  rxCfg.CenterHz,
			SampleHz:  rxCfg.SampleRateHz,
		}
		p.cp.EmitFrame(frame)

		params := trigger.Params{
			ThresholdDB: rxCfg.ThresholdDb,
			Detector:    rxCfg.Detector,
			DwellS:      rxCfg.DwellS,
			AvgTauS:     rxCfg.AvgTauS,
		}
		ev := p.machine.Process(chunk, centerMaxLin, params)
		p.handleEvent(ev, rxCfg.ThresholdDb)
	}
}

func (p *Pipeline) handleEvent(ev trigger.Event, thresholdDb float64) {
	switch ev.Kind {
	case trigger.NoEvent:
		if p.armed {
			p.cp.EmitTriggerStatus(true, ev.State == trigger.Capturing, ev.CenterDB, thresholdDb, ev.Above)
		}
	case trigger.CaptureStart:
		p.cp.EmitTriggerStatus(true, true, ev.CenterDB, thresholdDb, ev.Above)
	case trigger.CaptureComplete:
		p.armed = false
		p.cp.EmitCaptureComplete(ev.Path)
	case trigger.CaptureFailed:
		p.armed = false
		p.cp.EmitCaptureFailed(ev.Err)
	}
}
