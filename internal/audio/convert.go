package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// ErrConverterUnavailable is returned by ModeAlways when sox is not in PATH.
var ErrConverterUnavailable = errors.New("audio converter (sox) not found in PATH")

// Mode selects when input audio is converted before upload.
type Mode string

const (
	ModeAuto   Mode = "auto"   // convert when sox is available
	ModeAlways Mode = "always" // convert, failing if sox is missing
	ModeNever  Mode = "never"
)

// ParseMode accepts auto, always or never (empty = auto).
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeAlways:
		return ModeAlways, nil
	case ModeNever:
		return ModeNever, nil
	default:
		return "", fmt.Errorf("unknown convert mode %q (want auto, always or never)", s)
	}
}

// soxPath resolves sox once per process.
var soxPath = sync.OnceValues(func() (string, error) {
	return exec.LookPath("sox")
})

// Available reports whether sox is in PATH.
func Available() bool {
	_, err := soxPath()
	return err == nil
}

// Convert resamples inputPath to a mono 16 kHz WAV using sox.
//
// Returns the path to a temporary WAV file and a cleanup function. With
// ModeNever, or ModeAuto when sox is unavailable, the original path is
// returned with a no-op cleanup. On a sox failure the original path is
// returned along with the error.
func Convert(ctx context.Context, inputPath string, mode Mode) (string, func(), error) {
	noop := func() {}

	if mode == ModeNever {
		return inputPath, noop, nil
	}
	sox, err := soxPath()
	if err != nil {
		if mode == ModeAlways {
			return inputPath, noop, ErrConverterUnavailable
		}
		return inputPath, noop, nil
	}

	tmp, err := os.CreateTemp("", "eleven-convert-*.wav")
	if err != nil {
		return inputPath, noop, fmt.Errorf("create temp: %w", err)
	}
	outPath := tmp.Name()
	tmp.Close()

	cmd := exec.CommandContext(ctx, sox,
		inputPath, outPath,
		"rate", "16000",
		"channels", "1",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		// Clean up partial output
		os.Remove(outPath)
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return inputPath, noop, fmt.Errorf("sox convert: %w: %s", err, msg)
		}
		return inputPath, noop, fmt.Errorf("sox convert: %w", err)
	}

	cleanup := func() {
		os.Remove(outPath)
	}
	return outPath, cleanup, nil
}
