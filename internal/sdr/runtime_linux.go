//go:build linux

package sdr

import "os/exec"

// FindRuntime locates the named command-line SDR tool on PATH.
func FindRuntime(runtime string) (string, error) {
	return exec.LookPath(runtime)
}
