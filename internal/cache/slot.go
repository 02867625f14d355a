package cache

import (
	"os"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/platter/internal/transcode"
)

// SlotState is the lifecycle stage of one buffer slot.
type SlotState int

const (
	Empty SlotState = iota
	Filling
	Ready
	Exhausted
	Failed
)

func (s SlotState) String() string {
	switch s {
	case Empty:
		return "Empty"
	case Filling:
		return "Filling"
	case Ready:
		return "Ready"
	case Exhausted:
		return "Exhausted"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// free reports whether a new track may be cached into the slot.
func (s SlotState) free() bool {
	return s == Empty || s == Exhausted || s == Failed
}

type slot struct {
	id      int
	state   SlotState
	scratch string
	source  string
	job     *transcode.Job
	file    *os.File
	stream  beep.StreamSeekCloser
	err     error
}

// closeStream closes the reader over the scratch file. The file stays.
func (s *slot) closeStream() {
	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
}
