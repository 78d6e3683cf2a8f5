package rtlsdr

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/skywave-radio/console/internal/sdr"
)

// handler implements sdr.RxHandler for rtl_sdr.
type handler struct {
	binPath string
	args    []string
}

// New locates rtl_sdr on PATH and builds its streaming handler.
func New(config *Config) (sdr.RxHandler, error) {
	binPath, err := sdr.FindRuntime(Runtime)
	if err != nil {
		return nil, fmt.Errorf("rtlsdr: runtime not found: %w", err)
	}
	args, err := config.Args()
	if err != nil {
		return nil, fmt.Errorf("rtlsdr: invalid config: %w", err)
	}
	return &handler{binPath: binPath, args: args}, nil
}

func (h *handler) Cmd(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, h.binPath, h.args...)
}

func (h *handler) Format() sdr.Format { return sdr.FormatU8 }

func (h *handler) Device() string { return Device }
