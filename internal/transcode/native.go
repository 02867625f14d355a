package transcode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

const resampleQuality = 4

// Native converts in-process with the beep decoders. It handles MP3, FLAC,
// Ogg Vorbis and WAV sources.
type Native struct {
	timeout time.Duration
}

func NewNative(timeout time.Duration) *Native {
	return &Native{timeout: timeout}
}

func (n *Native) Start(ctx context.Context, src, dst string) *Job {
	return start(ctx, n.timeout, src, dst, convert)
}

func decode(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(f.Name())) {
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg", ".oga":
		return vorbis.Decode(f)
	case ".wav":
		return wav.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(f.Name()))
	}
}

func convert(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	streamer, format, err := decode(in)
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != Format.SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, Format.SampleRate, s)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	cs := &ctxStreamer{ctx: ctx, s: s}
	if err := wav.Encode(out, cs, Format); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return streamer.Err()
}

// ctxStreamer ends the wrapped stream once ctx is done.
type ctxStreamer struct {
	ctx context.Context
	s   beep.Streamer
}

func (c *ctxStreamer) Stream(samples [][2]float64) (int, bool) {
	if c.ctx.Err() != nil {
		return 0, false
	}
	return c.s.Stream(samples)
}

func (c *ctxStreamer) Err() error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	return c.s.Err()
}
