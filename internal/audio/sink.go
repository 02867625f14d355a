// Package audio writes PCM blocks to the output device.
package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/platter/internal/transcode"
)

// ErrClosed is returned by writes to a closed sink.
var ErrClosed = errors.New("audio sink closed")

// Sink consumes fixed-size blocks of stereo samples. Write may block until
// the device has room, which is what paces the playback loop.
type Sink interface {
	Write(samples [][2]float64) error
	Close() error
}

// DefaultQueuedBlocks is how many blocks a SpeakerSink holds ahead of the
// device.
const DefaultQueuedBlocks = 4

// SpeakerSink plays blocks through the beep speaker at the scratch format.
type SpeakerSink struct {
	blocks  chan [][2]float64
	closed  chan struct{}
	once    sync.Once
	pending [][2]float64 // read by the speaker goroutine only
}

var _ Sink = (*SpeakerSink)(nil)

// OpenSpeaker initializes the output device. frameSize is the block length
// the engine writes; queued is how many blocks may wait for the device.
func OpenSpeaker(frameSize, queued int) (*SpeakerSink, error) {
	if queued <= 0 {
		queued = DefaultQueuedBlocks
	}
	sr := transcode.Format.SampleRate
	bufferSize := max(frameSize, sr.N(time.Second/20))
	if err := speaker.Init(sr, bufferSize); err != nil {
		return nil, err
	}

	s := &SpeakerSink{
		blocks: make(chan [][2]float64, queued),
		closed: make(chan struct{}),
	}
	speaker.Play(s)
	return s, nil
}

// Write queues a copy of samples, blocking while the queue is full.
func (s *SpeakerSink) Write(samples [][2]float64) error {
	block := make([][2]float64, len(samples))
	copy(block, samples)

	select {
	case <-s.closed:
		return ErrClosed
	default:
	}
	select {
	case s.blocks <- block:
		return nil
	case <-s.closed:
		return ErrClosed
	}
}

// Stream implements beep.Streamer. Missing data plays as silence.
func (s *SpeakerSink) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if len(s.pending) == 0 {
			select {
			case b := <-s.blocks:
				s.pending = b
			default:
				clear(samples[filled:])
				return len(samples), true
			}
		}
		n := copy(samples[filled:], s.pending)
		s.pending = s.pending[n:]
		filled += n
	}
	return len(samples), true
}

func (s *SpeakerSink) Err() error { return nil }

// Close stops playback and releases the device.
func (s *SpeakerSink) Close() error {
	s.once.Do(func() {
		close(s.closed)
		speaker.Clear()
		speaker.Close()
	})
	return nil
}

var _ beep.Streamer = (*SpeakerSink)(nil)
