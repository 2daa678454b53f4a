package media

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const (
	// DefaultFFmpeg is the ffmpeg binary looked up on PATH.
	DefaultFFmpeg = "ffmpeg"

	// DefaultFFprobe is the ffprobe binary looked up on PATH.
	DefaultFFprobe = "ffprobe"

	maxOutput = 500
)

// ExitError is returned when ffmpeg or ffprobe exits with a non-zero code.
type ExitError struct {
	Op     string
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: ffmpeg exited (%d)", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: ffmpeg exited (%d): %s", e.Op, e.Code, e.Output)
}

// FFmpeg runs operations and probes through the ffmpeg and ffprobe binaries.
//
// Prober, when set, replaces ffprobe for Probe.
type FFmpeg struct {
	Binary      string
	ProbeBinary string
	Prober      Prober
}

// New returns an FFmpeg using the given binaries, falling back to the
// defaults for empty names.
func New(binary, probeBinary string) *FFmpeg {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultFFmpeg
	}
	probeBinary = strings.TrimSpace(probeBinary)
	if probeBinary == "" {
		probeBinary = DefaultFFprobe
	}
	return &FFmpeg{Binary: binary, ProbeBinary: probeBinary}
}

// Check verifies the binaries can be found.
func (f *FFmpeg) Check() error {
	bins := []string{f.Binary}
	if f.Prober == nil {
		bins = append(bins, f.ProbeBinary)
	}
	for _, bin := range bins {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found: %w", bin, err)
		}
	}
	return nil
}

// Run executes op and waits for ffmpeg to exit.
func (f *FFmpeg) Run(ctx context.Context, op Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, f.Binary, op.Args()...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return commandError(ctx, op.Kind.String(), output, err)
	}
	return nil
}

// Probe lists the streams of path.
func (f *FFmpeg) Probe(ctx context.Context, path string) (ProbeResult, error) {
	if f.Prober != nil {
		return f.Prober.Probe(ctx, path)
	}
	if strings.TrimSpace(path) == "" {
		return ProbeResult{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, f.ProbeBinary, "-v", "error", "-hide_banner", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var stderr []byte
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = exitErr.Stderr
		}
		return ProbeResult{}, commandError(ctx, "probe", stderr, err)
	}
	return parseProbe(output)
}

func commandError(ctx context.Context, op string, output []byte, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Op: op, Code: exitErr.ExitCode(), Output: truncate(strings.TrimSpace(string(output)), maxOutput)}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
