// Package control implements the ControlPlane: the single-producer/
// single-consumer parameter inbox and bounded event outbox connecting the UI
// (or any caller) to the RX and TX pipelines. No setter blocks; all real
// work happens inside the pipelines, which poll the inbox at block
// boundaries.
package control

import (
	"log/slog"
	"sync/atomic"

	"github.com/skywave-radio/console/internal/config"
	"github.com/skywave-radio/console/internal/fault"
	"github.com/skywave-radio/console/internal/spectrum"
)

// eventQueueCapacity bounds the outbox. Trigger status is emitted once per
// analyzed block while armed, at most the rate of spectrum frames; the
// other events are edge-triggered and rare. Spectrum frames use their own
// single-slot, newest-wins path instead of this queue.
const eventQueueCapacity = 256

// armRequest is the payload behind the Arm slot, consumed at most once by
// the receive pipeline.
type armRequest struct {
	PreS, PostS float64
}

// ControlPlane is safe for concurrent use by any number of setter callers
// and exactly one RX pipeline and one TX pipeline consumer.
type ControlPlane struct {
	logger *slog.Logger

	rxConfig atomic.Pointer[config.RxConfig]
	txConfig atomic.Pointer[config.TxConfig]

	armReq    atomic.Pointer[armRequest]
	cancelReq atomic.Bool
	txEnabled atomic.Bool

	frames chan *spectrum.Frame
	events chan Event
}

// EventKind identifies the shape of an Event.
type EventKind int

const (
	EventTriggerStatus EventKind = iota
	EventCaptureComplete
	EventCaptureFailed
	EventPresenceChanged
	EventRuntimeFault
)

// Event is the ControlPlane's single outbound event type; only the fields
// relevant to Kind are populated.
type Event struct {
	Kind EventKind

	// EventTriggerStatus
	Armed, Capturing bool
	CenterDb         float64
	ThresholdDb      float64
	Above            bool

	// EventCaptureComplete
	Path string

	// EventCaptureFailed / EventRuntimeFault
	Err error

	// EventPresenceChanged
	RtlsdrPresent, HackrfPresent bool
}

// New creates a ControlPlane seeded with initial RxConfig/TxConfig values.
func New(logger *slog.Logger, rx config.RxConfig, tx config.TxConfig) *ControlPlane {
	cp := &ControlPlane{
		logger: logger,
		frames: make(chan *spectrum.Frame, 1),
		events: make(chan Event, eventQueueCapacity),
	}
	cp.rxConfig.Store(&rx)
	cp.txConfig.Store(&tx)
	return cp
}

// SetRxConfig validates and stores the new RxConfig, rejecting it locally on
// failure (the pipeline's current config is left untouched).
func (cp *ControlPlane) SetRxConfig(c config.RxConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c = c.Normalized()
	cp.rxConfig.Store(&c)
	return nil
}

// RxConfig returns the last-writer-wins RxConfig snapshot.
func (cp *ControlPlane) RxConfig() config.RxConfig {
	return *cp.rxConfig.Load()
}

// SetTxConfig validates and stores the new TxConfig.
func (cp *ControlPlane) SetTxConfig(c config.TxConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c = c.Normalized()
	cp.txConfig.Store(&c)
	return nil
}

// TxConfig returns the last-writer-wins TxConfig snapshot.
func (cp *ControlPlane) TxConfig() config.TxConfig {
	return *cp.txConfig.Load()
}

// Arm requests an Arm(pre_s, post_s) transition, consumed at most once by
// the receive pipeline at its next block boundary.
func (cp *ControlPlane) Arm(preS, postS float64) {
	if preS < 0 {
		preS = 0
	}
	if postS < 0 {
		postS = 0
	}
	cp.armReq.Store(&armRequest{PreS: preS, PostS: postS})
}

// TakeArmRequest consumes and returns the pending Arm request, if any.
func (cp *ControlPlane) TakeArmRequest() (preS, postS float64, ok bool) {
	req := cp.armReq.Load()
	if req == nil {
		return 0, 0, false
	}
	if !cp.armReq.CompareAndSwap(req, nil) {
		return 0, 0, false
	}
	return req.PreS, req.PostS, true
}

// Cancel requests a return to Idle, consumed at most once.
func (cp *ControlPlane) Cancel() {
	cp.cancelReq.Store(true)
}

// TakeCancelRequest consumes and reports whether a Cancel was requested.
func (cp *ControlPlane) TakeCancelRequest() bool {
	return cp.cancelReq.CompareAndSwap(true, false)
}

// StartTx and StopTx toggle the level-triggered transmit-enable flag that
// TxPipeline polls each frame.
func (cp *ControlPlane) StartTx() { cp.txEnabled.Store(true) }
func (cp *ControlPlane) StopTx()  { cp.txEnabled.Store(false) }

// TxEnabled reports whether the transmit pipeline should currently be
// streaming.
func (cp *ControlPlane) TxEnabled() bool {
	return cp.txEnabled.Load()
}

// EmitFrame publishes a spectrum frame with newest-wins drop semantics: if
// the UI has not drained the previous frame, it is replaced rather than
// blocking the pipeline.
func (cp *ControlPlane) EmitFrame(f *spectrum.Frame) {
	select {
	case cp.frames <- f:
		return
	default:
	}
	select {
	case <-cp.frames:
	default:
	}
	select {
	case cp.frames <- f:
	default:
	}
}

// Frames returns the channel the UI should read spectrum frames from.
func (cp *ControlPlane) Frames() <-chan *spectrum.Frame {
	return cp.frames
}

// Events returns the channel the UI should read state-change events from.
func (cp *ControlPlane) Events() <-chan Event {
	return cp.events
}

// emit publishes ev, logging and dropping it if the bounded outbox is full
// rather than blocking the worker that owns the pipeline.
func (cp *ControlPlane) emit(ev Event) {
	select {
	case cp.events <- ev:
	default:
		if cp.logger != nil {
			cp.logger.Warn("control plane event queue full, dropping event", slog.Int("kind", int(ev.Kind)))
		}
	}
}

// EmitTriggerStatus reports the trigger's armed/capturing/above state and
// the latest center-band level.
func (cp *ControlPlane) EmitTriggerStatus(armed, capturing bool, centerDb, thresholdDb float64, above bool) {
	cp.emit(Event{Kind: EventTriggerStatus, Armed: armed, Capturing: capturing, CenterDb: centerDb, ThresholdDb: thresholdDb, Above: above})
}

// EmitCaptureComplete reports that path now holds a finalized capture.
func (cp *ControlPlane) EmitCaptureComplete(path string) {
	cp.emit(Event{Kind: EventCaptureComplete, Path: path})
}

// EmitCaptureFailed reports a failed finalize; the pipeline remains ready
// for the next Arm.
func (cp *ControlPlane) EmitCaptureFailed(err error) {
	cp.emit(Event{Kind: EventCaptureFailed, Err: err})
}

// EmitPresenceChanged reports a DeviceMonitor edge transition.
func (cp *ControlPlane) EmitPresenceChanged(rtlsdr, hackrf bool) {
	cp.emit(Event{Kind: EventPresenceChanged, RtlsdrPresent: rtlsdr, HackrfPresent: hackrf})
}

// EmitRuntimeFault reports a fault.RuntimeFault that could not be absorbed
// silently (typically FatalBug).
func (cp *ControlPlane) EmitRuntimeFault(f *fault.RuntimeFault) {
	cp.emit(Event{Kind: EventRuntimeFault, Err: f})
}
