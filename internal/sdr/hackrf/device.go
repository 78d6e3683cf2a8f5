package hackrf

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/skywave-radio/console/internal/sdr"
)

// rxHandler implements sdr.RxHandler for hackrf_transfer -r.
type rxHandler struct {
	binPath string
	args    []string
}

// NewRx locates hackrf_transfer on PATH and builds its receive handler.
func NewRx(config *RxConfig) (sdr.RxHandler, error) {
	binPath, err := sdr.FindRuntime(Runtime)
	if err != nil {
		return nil, fmt.Errorf("hackrf: runtime not found: %w", err)
	}
	args, err := config.Args()
	if err != nil {
		return nil, fmt.Errorf("hackrf: invalid rx config: %w", err)
	}
	return &rxHandler{binPath: binPath, args: args}, nil
}

func (h *rxHandler) Cmd(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, h.binPath, h.args...)
}

func (h *rxHandler) Format() sdr.Format { return sdr.FormatS8 }

func (h *rxHandler) Device() string { return Device }

// txHandler implements sdr.TxHandler for hackrf_transfer -t. Unlike
// rxHandler it keeps a pointer to its TxConfig rather than precomputed
// args, because BasebandHz can be updated between runs (the -b baseband
// filter is a launch-time flag, so a change only takes effect once the
// subprocess is stopped and started again).
type txHandler struct {
	binPath string
	cfg     *TxConfig
}

// NewTx locates hackrf_transfer on PATH and builds its transmit handler.
func NewTx(config *TxConfig) (sdr.TxHandler, error) {
	binPath, err := sdr.FindRuntime(Runtime)
	if err != nil {
		return nil, fmt.Errorf("hackrf: runtime not found: %w", err)
	}
	if _, err := config.Args(); err != nil {
		return nil, fmt.Errorf("hackrf: invalid tx config: %w", err)
	}
	return &txHandler{binPath: binPath, cfg: config}, nil
}

func (h *txHandler) Cmd(ctx context.Context) *exec.Cmd {
	args, _ := h.cfg.Args() // already validated in NewTx and by SetBasebandHz's caller
	return exec.CommandContext(ctx, h.binPath, args...)
}

func (h *txHandler) Format() sdr.Format { return sdr.FormatS8 }

func (h *txHandler) Device() string { return Device }

// SetBasebandHz updates the baseband filter bandwidth applied the next
// time Cmd is invoked, satisfying sdr.BasebandTuner.
func (h *txHandler) SetBasebandHz(hz float64) { h.cfg.BasebandHz = hz }
