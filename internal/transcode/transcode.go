// Package transcode converts source media files into scratch WAV files
// holding signed 16-bit little-endian PCM at 44.1 kHz, stereo. Conversions
// run in the background; callers poll a Job instead of waiting on it.
package transcode

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
)

// Output format of every scratch file.
const (
	SampleRate  = 44100
	NumChannels = 2
	Precision   = 2 // bytes per sample
)

// Format is the beep format of every scratch file.
var Format = beep.Format{
	SampleRate:  beep.SampleRate(SampleRate),
	NumChannels: NumChannels,
	Precision:   Precision,
}

// ErrUnsupported is returned when a backend cannot decode the source.
var ErrUnsupported = errors.New("unsupported source format")

// Transcoder starts a conversion of src into dst. Start never blocks.
type Transcoder interface {
	Start(ctx context.Context, src, dst string) *Job
}

// Status is the observable state of a Job.
type Status int

const (
	Running Status = iota
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "Running"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Job is one background conversion. A failed job removes its destination,
// so a partial file is never mistaken for a good one.
type Job struct {
	src, dst string
	cancel   context.CancelFunc
	done     chan struct{}

	mu  sync.Mutex
	err error
}

// Func adapts a blocking conversion function into a Transcoder.
type Func func(ctx context.Context, src, dst string) error

func (f Func) Start(ctx context.Context, src, dst string) *Job {
	return start(ctx, 0, src, dst, f)
}

func start(ctx context.Context, timeout time.Duration, src, dst string, run Func) *Job {
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	j := &Job{src: src, dst: dst, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(j.done)
		defer cancel()
		err := run(ctx, src, dst)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err != nil {
			_ = os.Remove(dst)
		}
		j.mu.Lock()
		j.err = err
		j.mu.Unlock()
	}()
	return j
}

// Poll reports the job status without blocking.
func (j *Job) Poll() Status {
	select {
	case <-j.done:
	default:
		return Running
	}
	if j.Err() != nil {
		return Failed
	}
	return Succeeded
}

// Err returns the failure of a finished job, or nil.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Cancel asks the job to stop. It returns immediately; the job then
// finishes as Failed unless it had already succeeded.
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes and returns its error.
func (j *Job) Wait() error {
	<-j.done
	return j.Err()
}

func (j *Job) Source() string { return j.src }

func (j *Job) Dest() string { return j.dst }
