// Command recorder captures a fixed duration of IQ samples from an rtl_sdr
// or hackrf_transfer receiver to a .c16/.txt pair, the Go counterpart to the
// reference record_hackrf tool (original_source/src/test): a plaintext
// center_frequency=/sample_rate= metadata file alongside interleaved
// little-endian 16-bit signed I/Q samples, the same pair cmd/replay reads
// back.
package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skywave-radio/console/internal/sdr"
	"github.com/skywave-radio/console/internal/sdr/hackrf"
	"github.com/skywave-radio/console/internal/sdr/rtlsdr"
)

// dcBlockPole matches the one-pole high-pass coefficient of the reference
// recorder's DC blocker.
const dcBlockPole = 0.995

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var (
		driver    string
		centerHz  float64
		sampleHz  float64
		gainDb    float64
		durationS float64
		cfgPath   string
		c16Path   string
		ppm       int
		noDCBlock bool
	)
	flag.StringVar(&driver, "driver", "rtlsdr", "Receiver driver: rtlsdr or hackrf")
	flag.Float64Var(&centerHz, "freq", 433.81e6, "Center frequency, Hz")
	flag.Float64Var(&sampleHz, "rate", 1.0e6, "Sample rate, Hz")
	flag.Float64Var(&gainDb, "gain", 30.0, "Receiver gain, dB")
	flag.Float64Var(&durationS, "sec", 3.0, "Recording duration, seconds")
	flag.StringVar(&cfgPath, "cfg", "BBD_0001.TXT", "Output metadata file path")
	flag.StringVar(&c16Path, "c16", "BBD_0001.C16", "Output interleaved int16 I/Q file path")
	flag.IntVar(&ppm, "ppm", 0, "Frequency correction, PPM (rtlsdr only)")
	flag.BoolVar(&noDCBlock, "no-dcblock", false, "Disable the one-pole DC-block high-pass filter")
	flag.Parse()

	handler, err := newRxHandler(driver, centerHz, sampleHz, gainDb, ppm)
	if err != nil {
		logger.Error("building receiver", slog.String("err", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := record(ctx, handler, centerHz, sampleHz, durationS, cfgPath, c16Path, !noDCBlock, logger); err != nil {
		logger.Error("recording failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func record(ctx context.Context, handler sdr.RxHandler, centerHz, sampleHz, durationS float64, cfgPath, c16Path string, dcBlock bool, logger *slog.Logger) error {
	receiver := sdr.NewReceiver("recorder", handler, logger)

	recCtx, stop := context.WithCancel(ctx)
	defer stop()

	blocks, faults, err := receiver.Start(recCtx)
	if err != nil {
		return fmt.Errorf("starting receiver: %w", err)
	}
	defer receiver.Stop()

	out, err := os.Create(c16Path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	w := bufio.NewWriter(out)

	target := int(sampleHz * durationS)
	var captured int
	var prevXI, prevXQ, prevYI, prevYQ float32

	deadline := time.After(time.Duration(durationS*1.5+5) * time.Second)

	for captured < target {
		select {
		case <-ctx.Done():
			out.Close()
			return ctx.Err()
		case <-deadline:
			out.Close()
			return fmt.Errorf("timed out after capturing %d/%d samples", captured, target)
		case err := <-faults:
			if err != nil {
				out.Close()
				return fmt.Errorf("receiver fault: %w", err)
			}
		case block, ok := <-blocks:
			if !ok {
				out.Close()
				return fmt.Errorf("receiver stream closed after %d/%d samples", captured, target)
			}
			samples := block.Samples
			if remaining := target - captured; remaining < len(samples) {
				samples = samples[:remaining]
			}
			for _, s := range samples {
				xi, xq := real(s)*32768, imag(s)*32768
				if dcBlock {
					yi := (xi - prevXI) + dcBlockPole*prevYI
					yq := (xq - prevXQ) + dcBlockPole*prevYQ
					prevXI, prevXQ, prevYI, prevYQ = xi, xq, yi, yq
					xi, xq = yi, yq
				}
				if err := binary.Write(w, binary.LittleEndian, clampInt16(xi)); err != nil {
					out.Close()
					return fmt.Errorf("writing samples: %w", err)
				}
				if err := binary.Write(w, binary.LittleEndian, clampInt16(xq)); err != nil {
					out.Close()
					return fmt.Errorf("writing samples: %w", err)
				}
			}
			captured += len(samples)
		}
	}

	if err := w.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("flushing samples: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	if err := writeConfig(cfgPath, centerHz, sampleHz); err != nil {
		logger.Warn("failed to write config file", slog.String("err", err.Error()), slog.String("path", cfgPath))
	}

	logger.Info("recording complete",
		slog.Int("samples", captured),
		slog.Float64("seconds", float64(captured)/sampleHz),
		slog.String("cfg", cfgPath),
		slog.String("c16", c16Path))
	return nil
}

func writeConfig(path string, centerHz, sampleHz float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "center_frequency=%d\nsample_rate=%d\n", int64(centerHz), int64(sampleHz))
	return err
}

func clampInt16(v float32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

func newRxHandler(driver string, centerHz, sampleHz, gainDb float64, ppm int) (sdr.RxHandler, error) {
	switch driver {
	case "rtlsdr":
		return rtlsdr.New(&rtlsdr.Config{CenterHz: centerHz, SampleRateHz: sampleHz, GainDb: gainDb, PPMError: ppm})
	case "hackrf":
		lna, vga := hackrf.SplitGain(gainDb)
		return hackrf.NewRx(&hackrf.RxConfig{CenterHz: centerHz, SampleRateHz: sampleHz, LNAGain: lna, VGAGain: vga})
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}
