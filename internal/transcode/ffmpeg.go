package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// FFmpeg converts with an external ffmpeg process.
type FFmpeg struct {
	path    string
	timeout time.Duration
}

// NewFFmpeg returns a backend running the ffmpeg binary at path. A positive
// timeout kills conversions that run longer.
func NewFFmpeg(path string, timeout time.Duration) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{path: path, timeout: timeout}
}

// Available reports whether the ffmpeg binary can be found.
func (f *FFmpeg) Available() error {
	if _, err := exec.LookPath(f.path); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	return nil
}

func (f *FFmpeg) Start(ctx context.Context, src, dst string) *Job {
	return start(ctx, f.timeout, src, dst, f.run)
}

func (f *FFmpeg) run(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, f.path, ffmpegArgs(src, dst)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("ffmpeg %s: %w", src, err)
		}
		return fmt.Errorf("ffmpeg %s: %w: %s", src, err, msg)
	}
	return nil
}

func ffmpegArgs(src, dst string) []string {
	return []string{
		"-nostdin",
		"-v", "error",
		"-i", src,
		"-vn",
		"-f", "wav",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(NumChannels),
		"-ar", strconv.Itoa(SampleRate),
		"-y", dst,
	}
}
