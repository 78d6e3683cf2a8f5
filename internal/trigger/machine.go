// Package trigger implements the receive pipeline's Idle/Armed/Capturing
// state machine: detector modes, dwell accounting, pre/post buffering, and
// the atomic hand-off to package capture for spool and final-file writes.
package trigger

import (
	"math"
	"time"

	"github.com/skywave-radio/console/internal/buffer"
	"github.com/skywave-radio/console/internal/capture"
)

// State is one of the three trigger-machine states.
type State int

const (
	Idle State = iota
	Armed
	Capturing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Capturing:
		return "capturing"
	default:
		return "unknown"
	}
}

// Detector selects how the center-band energy is turned into an above/below
// decision.
type Detector string

const (
	Averaged Detector = "averaged"
	Peak     Detector = "peak"
)

func (d Detector) String() string {
	return string(d)
}

// Params is the detector configuration snapshotted at each block boundary.
type Params struct {
	ThresholdDB float64
	Detector    Detector
	DwellS      float64
	AvgTauS     float64
}

// EventKind identifies what, if anything, happened during a Process call.
type EventKind int

const (
	NoEvent EventKind = iota
	CaptureStart
	CaptureComplete
	CaptureFailed
)

// Event reports the outcome of processing one block, mirroring the
// ControlPlane's trigger_status/capture_complete/capture_failed events.
type Event struct {
	Kind     EventKind
	State    State
	Above    bool
	CenterDB float64
	Path     string
	Err      error
}

// Machine is the receive pipeline's trigger state machine. It is not safe
// for concurrent use; it is owned exclusively by the receive pipeline.
type Machine struct {
	sink  *capture.Sink
	state State

	ring       *buffer.Ring[complex64]
	captureBuf []complex64

	sampleHz float64
	centerHz float64
	preS     float64
	postS    float64
	armUTC   time.Time

	aboveStreakSamples int
	belowStreakSamples int
	centerAvgLin       float32
}

// New creates a trigger machine that finalizes captures through sink.
func New(sink *capture.Sink) *Machine {
	return &Machine{
		sink:  sink,
		state: Idle,
		ring:  buffer.NewRing[complex64](1),
	}
}

// State returns the machine's current state.
func (m *Machine) State() State {
	return m.state
}

// Arm transitions Idle -> Armed, sizing the pre-trigger ring for the current
// sample rate and opening the spool file best-effort.
func (m *Machine) Arm(preS, postS, sampleHz, centerHz float64) {
	m.state = Armed
	m.preS = preS
	m.postS = postS
	m.sampleHz = sampleHz
	m.centerHz = centerHz
	m.armUTC = time.Now().UTC()

	capacity := int(math.Round(sampleHz * preS))
	m.ring.Resize(capacity)
	m.captureBuf = nil
	m.aboveStreakSamples = 0
	m.belowStreakSamples = 0
	m.centerAvgLin = 0

	_ = m.sink.OpenSpool(m.armUTC, centerHz) // best-effort; failures are tolerated
}

// Cancel discards all buffers, removes the spool, and returns to Idle from
// any state.
func (m *Machine) Cancel() {
	m.sink.Cancel()
	m.ring.Clear()
	m.captureBuf = nil
	m.aboveStreakSamples = 0
	m.belowStreakSamples = 0
	m.centerAvgLin = 0
	m.state = Idle
}

// Process advances the machine by one block of m samples and its
// corresponding center-band linear energy. It is a no-op returning NoEvent
// when Idle.
func (m *Machine) Process(block []complex64, centerMaxLin float32, params Params) Event {
	switch m.state {
	case Idle:
		return Event{Kind: NoEvent, State: Idle}
	case Armed:
		return m.processArmed(block, centerMaxLin, params)
	case Capturing:
		return m.processCapturing(block, centerMaxLin, params)
	default:
		return Event{Kind: NoEvent, State: m.state}
	}
}

func (m *Machine) processArmed(block []complex64, centerMaxLin float32, params Params) Event {
	m.ring.PushMany(block)
	_ = m.sink.AppendSpool(block)

	above, centerDB := m.evaluate(block, centerMaxLin, params)

	blockLen := len(block)
	if above {
		m.aboveStreakSamples += blockLen
	} else {
		m.aboveStreakSamples = 0
	}

	needAbove := blockLen
	if params.Detector == Averaged {
		needAbove = int(math.Round(m.sampleHz * params.DwellS))
	}

	if above && m.aboveStreakSamples >= needAbove {
		m.captureBuf = append(m.ring.DrainChronological(), block...)
		m.belowStreakSamples = 0
		m.state = Capturing
		return Event{Kind: CaptureStart, State: Capturing, Above: above, CenterDB: centerDB}
	}

	return Event{Kind: NoEvent, State: Armed, Above: above, CenterDB: centerDB}
}

func (m *Machine) processCapturing(block []complex64, centerMaxLin float32, params Params) Event {
	m.captureBuf = append(m.captureBuf, block...)
	_ = m.sink.AppendSpool(block)

	above, centerDB := m.evaluate(block, centerMaxLin, params)

	if above {
		m.belowStreakSamples = 0
		return Event{Kind: NoEvent, State: Capturing, Above: above, CenterDB: centerDB}
	}

	m.belowStreakSamples += len(block)
	needBelow := int(math.Round(m.sampleHz * m.postS))
	if m.belowStreakSamples < needBelow {
		return Event{Kind: NoEvent, State: Capturing, Above: above, CenterDB: centerDB}
	}

	path, err := m.sink.Finalize(m.captureBuf, m.armUTC, m.centerHz, params.ThresholdDB)
	m.resetAfterTerminal()
	if err != nil {
		return Event{Kind: CaptureFailed, State: Idle, Above: above, CenterDB: centerDB, Err: err}
	}
	return Event{Kind: CaptureComplete, State: Idle, Above: above, CenterDB: centerDB, Path: path}
}

func (m *Machine) resetAfterTerminal() {
	m.ring.Clear()
	m.captureBuf = nil
	m.aboveStreakSamples = 0
	m.belowStreakSamples = 0
	m.centerAvgLin = 0
	m.state = Idle
}

// evaluate computes the above/below decision for one block, updating the
// Averaged-mode EMA as a side effect.
func (m *Machine) evaluate(block []complex64, centerMaxLin float32, params Params) (above bool, centerDB float64) {
	var x float32
	switch params.Detector {
	case Peak:
		x = centerMaxLin
	default: // Averaged
		dt := float64(len(block)) / m.sampleHz
		tau := params.AvgTauS
		if tau <= 0 {
			tau = 0.2
		}
		alphaPrime := 1 - math.Exp(-dt/tau)
		m.centerAvgLin = float32((1-alphaPrime)*float64(m.centerAvgLin) + alphaPrime*float64(centerMaxLin))
		x = m.centerAvgLin
	}

	xf := float64(x)
	if xf < 1e-6 {
		xf = 1e-6
	}
	centerDB = 20 * math.Log10(xf)
	return centerDB >= params.ThresholdDB, centerDB
}
