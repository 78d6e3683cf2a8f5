// Package sdr defines the vendor-agnostic streaming IQ device abstraction
// and a subprocess-based implementation that drives the command-line SDR
// tools (rtl_sdr, hackrf_transfer) the way the reference implementation
// drives SoapySDR, since no cgo binding for either radio is available here.
package sdr

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// Format names the wire sample format a streaming subprocess emits or
// consumes on its stdout/stdin pipe.
type Format int

const (
	// FormatU8 is interleaved unsigned 8-bit I/Q centered on 127.5, as
	// emitted by rtl_sdr.
	FormatU8 Format = iota
	// FormatS8 is interleaved signed 8-bit I/Q, as emitted/consumed by
	// hackrf_transfer.
	FormatS8
)

// Block is one batch of IQ samples read from (or about to be written to) a
// device, tagged with the wall-clock time it was read.
type Block struct {
	Timestamp time.Time
	Samples   []complex64
}

// DeviceStatus is the coarse-grained state of a streaming Device.
type DeviceStatus int

const (
	StatusStopped DeviceStatus = iota
	StatusRunning
	StatusFaulted
)

func (s DeviceStatus) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusFaulted:
		return "faulted"
	default:
		return "stopped"
	}
}

var (
	// ErrAlreadyRunning is returned by Start when the device is already
	// streaming.
	ErrAlreadyRunning = errors.New("sdr: device already running")

	// ErrBrokenPipe wraps a stdout/stdin read or write failure.
	ErrBrokenPipe = errors.New("sdr: broken pipe")
)

// RxHandler builds the subprocess command for one receive-capable radio and
// knows how to decode its wire format.
type RxHandler interface {
	Cmd(ctx context.Context) *exec.Cmd
	Format() Format
	Device() string
}

// TxHandler builds the subprocess command for one transmit-capable radio
// and knows how to encode its wire format.
type TxHandler interface {
	Cmd(ctx context.Context) *exec.Cmd
	Format() Format
	Device() string
}
