// Package cache prefetches decoded tracks into a ring of buffer slots.
// Each slot owns one scratch file; a background transcode fills it while the
// current slot is read by the playback loop.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/platter/internal/logger"
	"github.com/llehouerou/platter/internal/transcode"
)

// Auto asks CacheTrack to pick a free slot.
const Auto = -1

const (
	DefaultDepth = 2
	MaxDepth     = 8
)

var (
	// ErrNoFreeBuffer means every slot is filling or ready. The engine never
	// asks for more lookahead than the ring holds, so this is a scheduling bug.
	ErrNoFreeBuffer = errors.New("no free buffer slot")
	// ErrDecodeFailed marks a slot whose transcode failed or produced an
	// unreadable file.
	ErrDecodeFailed = errors.New("decode failed")
	ErrClosed       = errors.New("cache closed")
	ErrInvalidSlot  = errors.New("invalid slot")
)

// Options configures a Cache.
type Options struct {
	Depth      int    // number of slots, default 2
	ScratchDir string // parent of the per-cache scratch directory, default os.TempDir
}

// Cache is a ring of buffer slots fed by a Transcoder.
type Cache struct {
	mu      sync.Mutex
	slots   []*slot
	current int
	dir     string
	tc      transcode.Transcoder
	log     *logger.Logger

	// cancelled decodes that may still be running
	retired []*transcode.Job

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// New creates a cache and its scratch directory.
func New(tc transcode.Transcoder, opts Options, log *logger.Logger) (*Cache, error) {
	depth := opts.Depth
	if depth == 0 {
		depth = DefaultDepth
	}
	if depth < 2 || depth > MaxDepth {
		return nil, fmt.Errorf("cache depth %d out of range [2, %d]", depth, MaxDepth)
	}

	dir, err := os.MkdirTemp(opts.ScratchDir, "platter-cache-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		slots:  make([]*slot, depth),
		dir:    dir,
		tc:     tc,
		log:    log.WithComponent("cache"),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := range c.slots {
		c.slots[i] = &slot{id: i}
	}
	return c, nil
}

// Depth returns the number of slots in the ring.
func (c *Cache) Depth() int {
	return len(c.slots)
}

// Dir returns the scratch directory owned by the cache.
func (c *Cache) Dir() string {
	return c.dir
}

// Current returns the index of the slot being played.
func (c *Cache) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// State returns the state of slot i.
func (c *Cache) State(i int) SlotState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.slots) {
		return Empty
	}
	return c.slots[i].state
}

// CurrentState returns the state of the current slot.
func (c *Cache) CurrentState() SlotState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots[c.current].state
}

// States returns a snapshot of every slot state in slot order.
func (c *Cache) States() []SlotState {
	c.mu.Lock()
	defer c.mu.Unlock()
	states := make([]SlotState, len(c.slots))
	for i, s := range c.slots {
		states[i] = s.state
	}
	return states
}

// Source returns the track path last cached into slot i.
func (c *Cache) Source(i int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.slots) {
		return ""
	}
	return c.slots[i].source
}

// SlotError returns why slot i failed, or nil.
func (c *Cache) SlotError(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.slots) {
		return ErrInvalidSlot
	}
	return c.slots[i].err
}

// CacheTrack starts decoding path into a slot and returns the slot used.
// With slot == Auto the first free lookahead slot is taken, or the current
// slot while it is still Empty; when none is free ErrNoFreeBuffer is
// returned and no slot changes.
// An explicit slot is recycled whatever its state: its decode is cancelled
// and its scratch file deleted before the new decode starts.
func (c *Cache) CacheTrack(path string, slot int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}

	switch {
	case slot == Auto:
		slot = c.freeSlotLocked()
		if slot < 0 {
			c.log.Error("no free buffer", "path", path, "states", fmt.Sprint(c.statesLocked()))
			return 0, ErrNoFreeBuffer
		}
	case slot < 0 || slot >= len(c.slots):
		return 0, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	s := c.slots[slot]
	c.release(s)
	if s.scratch != "" {
		if err := os.Remove(s.scratch); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.log.Warn("remove scratch file", "slot", slot, "error", err)
		}
	}

	// A cancelled decode may still be writing its old file, so every
	// decode gets a fresh name.
	s.scratch = filepath.Join(c.dir, fmt.Sprintf("slot%d-%s.wav", slot, uuid.NewString()))
	s.source = path
	s.err = nil
	s.job = c.tc.Start(c.ctx, path, s.scratch)
	s.state = Filling
	c.log.Debug("caching track", "slot", slot, "path", path)
	return slot, nil
}

// release cancels the slot's decode and closes its stream.
func (c *Cache) release(s *slot) {
	if s.job != nil {
		s.job.Cancel()
		c.retired = append(c.retired, s.job)
		s.job = nil
	}
	s.closeStream()

	live := c.retired[:0]
	for _, j := range c.retired {
		if j.Poll() == transcode.Running {
			live = append(live, j)
		}
	}
	c.retired = live
}

// freeSlotLocked returns the first free slot at or after the current one.
// The current slot only qualifies while it has never been used: once a
// track played or failed there, automatic prefetch must land in a
// lookahead slot.
func (c *Cache) freeSlotLocked() int {
	if c.slots[c.current].state == Empty {
		return c.current
	}
	for i := 1; i < len(c.slots); i++ {
		idx := (c.current + i) % len(c.slots)
		if c.slots[idx].state.free() {
			return idx
		}
	}
	return -1
}

func (c *Cache) statesLocked() []SlotState {
	states := make([]SlotState, len(c.slots))
	for i, s := range c.slots {
		states[i] = s.state
	}
	return states
}

// Upkeep polls every filling slot. A slot whose decode succeeded is opened
// for reading and becomes Ready; a failed decode marks it Failed. Upkeep
// never waits on a decode.
func (c *Cache) Upkeep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	for _, s := range c.slots {
		if s.state != Filling || s.job == nil {
			continue
		}
		switch s.job.Poll() {
		case transcode.Running:
			continue
		case transcode.Failed:
			err := s.job.Err()
			s.job = nil
			c.fail(s, err)
		case transcode.Succeeded:
			s.job = nil
			if err := c.open(s); err != nil {
				c.fail(s, err)
				continue
			}
			s.state = Ready
		}
	}
}

func (c *Cache) fail(s *slot, err error) {
	c.release(s)
	s.state = Failed
	s.err = fmt.Errorf("%w: %s: %w", ErrDecodeFailed, s.source, err)
	c.log.Warn("decode failed", "slot", s.id, "path", s.source, "error", err)
}

func (c *Cache) open(s *slot) error {
	f, err := os.Open(s.scratch)
	if err != nil {
		return err
	}
	stream, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return err
	}
	if format.SampleRate != transcode.Format.SampleRate || format.NumChannels != transcode.NumChannels {
		stream.Close()
		f.Close()
		return fmt.Errorf("scratch format %d Hz %d ch", format.SampleRate, format.NumChannels)
	}
	s.file = f
	s.stream = stream

	var size uint64
	if info, err := f.Stat(); err == nil {
		size = uint64(info.Size())
	}
	c.log.Info("slot ready",
		"slot", s.id,
		"path", s.source,
		"size", humanize.Bytes(size),
		"duration", format.SampleRate.D(stream.Len()).String())
	return nil
}

// Read fills buf from the current slot and returns the number of frames
// read. It returns 0 once the slot is drained and whenever the current slot
// is not Ready.
func (c *Cache) Read(buf [][2]float64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.slots[c.current]
	if s.state != Ready || s.stream == nil {
		return 0, nil
	}
	n, ok := s.stream.Stream(buf)
	if !ok {
		return 0, s.stream.Err()
	}
	return n, nil
}

// Swap retires the current slot and makes the next slot in the ring
// current. It returns the new current slot.
func (c *Cache) Swap() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.slots[c.current]
	c.release(s)
	s.state = Exhausted
	c.current = (c.current + 1) % len(c.slots)
	return c.current
}

// ExpireAll retires every slot, cancelling running decodes. The current
// pointer does not move.
func (c *Cache) ExpireAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.slots {
		c.release(s)
		s.state = Exhausted
	}
}

// ExpireBoth is ExpireAll on a two-slot cache.
func (c *Cache) ExpireBoth() {
	c.ExpireAll()
}

// Close stops every decode and removes the scratch directory.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cancel()
	for _, s := range c.slots {
		c.release(s)
	}
	jobs := c.retired
	c.retired = nil
	c.mu.Unlock()

	for _, j := range jobs {
		<-j.Done()
	}
	return os.RemoveAll(c.dir)
}
