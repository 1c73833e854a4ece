package catalog

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/airwave-tv/airwave/internal/logger"
)

// Common prober errors
var (
	ErrFFprobeNotFound = errors.New("ffprobe not found in PATH")
	ErrProbeFailed     = errors.New("ffprobe execution failed")
	ErrProbeTimeout    = errors.New("ffprobe execution timed out")
)

// minDurationMS is the floor applied to probed durations
const minDurationMS = 1000

// Prober extracts media durations by shelling out to ffprobe
type Prober struct {
	timeout time.Duration
}

// NewProber creates a prober with the given per-file timeout
func NewProber(timeout time.Duration) *Prober {
	return &Prober{timeout: timeout}
}

// ProbeDuration returns the duration of a media file in milliseconds.
// The returned duration is never below one second.
func (p *Prober) ProbeDuration(ctx context.Context, filePath string) (int64, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return 0, ErrFFprobeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filePath,
	)

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			logger.Log.Warn().
				Str("file_path", filePath).
				Dur("timeout", p.timeout).
				Msg("FFprobe execution timed out")
			return 0, ErrProbeTimeout
		}
		logger.Log.Warn().
			Err(err).
			Str("file_path", filePath).
			Msg("FFprobe execution failed")
		return 0, ErrProbeFailed
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("file_path", filePath).
			Str("output", strings.TrimSpace(string(output))).
			Msg("Failed to parse FFprobe duration output")
		return 0, ErrProbeFailed
	}

	durationMS := int64(seconds * 1000)
	if durationMS < minDurationMS {
		durationMS = minDurationMS
	}

	logger.Log.Debug().
		Str("file_path", filePath).
		Int64("duration_ms", durationMS).
		Msg("Probed media duration")

	return durationMS, nil
}
