// Command replay transmits a previously recorded .c16/.txt pair back out
// through a hackrf_transfer transmitter, the Go counterpart to the reference
// replay_hackrf tool (original_source/src/test): scales the recording's
// peak magnitude to 0.95 (capped at 8x gain), pads 100ms of silence on each
// end, and streams the result.
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
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/skywave-radio/console/internal/sdr"
	"github.com/skywave-radio/console/internal/sdr/hackrf"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var (
		cfgPath   string
		c16Path   string
		txGain    float64
		ampEnable bool
	)
	flag.StringVar(&cfgPath, "cfg", "BBD_0001.TXT", "Path to the recorder's metadata file")
	flag.StringVar(&c16Path, "c16", "BBD_0001.C16", "Path to the recorder's interleaved int16 I/Q file")
	flag.Float64Var(&txGain, "gain", 15, "TX VGA gain, dB")
	flag.BoolVar(&ampEnable, "amp", false, "Enable the HackRF RF amplifier")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := replay(ctx, cfgPath, c16Path, txGain, ampEnable, logger); err != nil {
		logger.Error("replay failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func replay(ctx context.Context, cfgPath, c16Path string, txGain float64, ampEnable bool, logger *slog.Logger) error {
	centerHz, sampleHz, err := readConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	samples, err := readC16(c16Path)
	if err != nil {
		return fmt.Errorf("reading capture: %w", err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("capture %s is empty", c16Path)
	}

	samples = scaleToPeak(samples, 0.95, 8.0)

	roll := make([]complex64, int(sampleHz*0.10))
	padded := make([]complex64, 0, len(roll)*2+len(samples))
	padded = append(padded, roll...)
	padded = append(padded, samples...)
	padded = append(padded, roll...)

	handler, err := hackrf.NewTx(&hackrf.TxConfig{
		CenterHz:     centerHz,
		SampleRateHz: sampleHz,
		TxVGAGain:    int(txGain),
		AmpEnable:    ampEnable,
	})
	if err != nil {
		return fmt.Errorf("building transmitter: %w", err)
	}

	transmitter := sdr.NewTransmitter("replay", handler, logger)

	txCtx, stop := context.WithCancel(ctx)
	defer stop()

	in, faults, err := transmitter.Start(txCtx)
	if err != nil {
		return fmt.Errorf("starting transmitter: %w", err)
	}
	defer transmitter.Stop()

	const chunkSize = 16384
	for off := 0; off < len(padded); off += chunkSize {
		end := off + chunkSize
		if end > len(padded) {
			end = len(padded)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-faults:
			if err != nil {
				return fmt.Errorf("transmitter fault: %w", err)
			}
		case in <- padded[off:end]:
		}
	}

	seconds := float64(len(padded)) / sampleHz
	time.Sleep(time.Duration(seconds*1000+200) * time.Millisecond)

	logger.Info("replay complete", slog.Float64("seconds", seconds), slog.String("path", c16Path))
	return nil
}

// readConfig parses the recorder's plaintext center_frequency=/sample_rate=
// pair, ignoring unrecognized keys the same way the reference's
// parse_config does.
func readConfig(path string) (centerHz, sampleHz float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch k {
		case "center_frequency":
			centerHz, _ = strconv.ParseFloat(v, 64)
		case "sample_rate":
			sampleHz, _ = strconv.ParseFloat(v, 64)
		}
	}
	if err := sc.Err(); err != nil {
		return 0, 0, err
	}
	if centerHz <= 0 || sampleHz <= 0 {
		return 0, 0, fmt.Errorf("missing center_frequency/sample_rate in %s", path)
	}
	return centerHz, sampleHz, nil
}

// readC16 reads interleaved little-endian int16 I/Q pairs and converts them
// to complex64 in [-1, 1), the reverse of cmd/recorder's write path.
func readC16(path string) ([]complex64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var out []complex64
	for {
		var i, q int16
		if err := binary.Read(r, binary.LittleEndian, &i); err != nil {
			break
		}
		if err := binary.Read(r, binary.LittleEndian, &q); err != nil {
			break
		}
		out = append(out, complex(float32(i)/32768, float32(q)/32768))
	}
	return out, nil
}

// scaleToPeak rescales samples so their peak magnitude is target, the same
// normalization the reference applies before converting to int8 for TX,
// capped at maxGain to avoid amplifying a near-silent recording into noise.
func scaleToPeak(samples []complex64, target, maxGain float64) []complex64 {
	var peak float64
	for _, s := range samples {
		if m := math.Hypot(float64(real(s)), float64(imag(s))); m > peak {
			peak = m
		}
	}
	scale := 1.0
	if peak > 0 {
		scale = target / peak
		if scale > maxGain {
			scale = maxGain
		}
	}

	out := make([]complex64, len(samples))
	for i, s := range samples {
		out[i] = complex(float32(float64(real(s))*scale), float32(float64(imag(s))*scale))
	}
	return out
}
