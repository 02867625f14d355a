// Package playback runs the real-time output loop. Each iteration polls the
// cache, writes exactly one block to the sink (silence when nothing is
// ready), and moves the queue cursor when a track ends or a command asks
// for it.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/llehouerou/platter/internal/audio"
	"github.com/llehouerou/platter/internal/cache"
	"github.com/llehouerou/platter/internal/logger"
	"github.com/llehouerou/platter/internal/playqueue"
)

const (
	DefaultFrameSize = 1024
	commandQueueSize = 32
)

// Queue is the persisted play queue the engine walks.
type Queue interface {
	CurrentTrack(name string) (*playqueue.Track, error)
	TrackAt(name string, offset int) (*playqueue.Track, error)
	Advance(name string) error
	Rewind(name string) error
}

var _ Queue = (*playqueue.Store)(nil)

// Cache is the prefetch ring the engine reads from.
type Cache interface {
	CacheTrack(path string, slot int) (int, error)
	Upkeep()
	Swap() int
	ExpireAll()
	Read(buf [][2]float64) (int, error)
	Current() int
	CurrentState() cache.SlotState
	SlotError(slot int) error
	Depth() int
}

var _ Cache = (*cache.Cache)(nil)

// Options configures an Engine.
type Options struct {
	Queue       string // queue name
	FrameSize   int    // samples per block, default 1024
	StartPaused bool
}

// Engine owns the output loop. Control surfaces talk to it through the
// command queue and read its state through subscriptions.
type Engine struct {
	queue Queue
	cache Cache
	sink  audio.Sink
	name  string
	log   *logger.Logger

	commands chan Command
	buf      [][2]float64
	silence  [][2]float64

	// owned by the engine goroutine
	paused      bool
	ended       bool
	nextPending bool
	prevPending bool

	mu      sync.RWMutex
	state   State
	current *Track
	next    *Track

	subs   []*Subscription
	subsMu sync.RWMutex

	closed bool
}

// New creates an engine. Nothing happens until Run.
func New(q Queue, c Cache, sink audio.Sink, opts Options, log *logger.Logger) *Engine {
	frameSize := opts.FrameSize
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	return &Engine{
		queue:    q,
		cache:    c,
		sink:     sink,
		name:     opts.Queue,
		log:      &logger.Logger{Logger: log.WithComponent("playback").With("session", uuid.NewString())},
		commands: make(chan Command, commandQueueSize),
		buf:      make([][2]float64, frameSize),
		silence:  make([][2]float64, frameSize),
		paused:   opts.StartPaused,
		state:    StateStopped,
	}
}

// Run loads the queue and loops until ctx is done. It returns an error only
// when the sink fails.
func (e *Engine) Run(ctx context.Context) error {
	e.start()
	defer e.setState(StateStopped)

	for {
		if err := e.step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// start loads the current entry and primes every slot.
func (e *Engine) start() {
	if e.paused {
		e.setState(StatePaused)
	} else {
		e.setState(StatePlaying)
	}

	cur, err := e.queue.CurrentTrack(e.name)
	if err != nil {
		e.lookupFailed("load", err)
		e.endOfQueue()
		return
	}
	e.setTracks(trackFromEntry(cur), e.peek())
	e.emitTrack(nil)

	e.cacheTrack(cur.Path, e.cache.Current())
	e.prefetchAll()
}

// step runs one iteration of the loop.
func (e *Engine) step(ctx context.Context) error {
	e.cache.Upkeep()

	if err := ctx.Err(); err != nil {
		return err
	}

	e.drainCommands()

	if err := e.writeBlock(); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}

	if e.nextPending {
		e.handleNext()
	}
	if e.prevPending {
		e.handlePrev()
	}
	return nil
}

func (e *Engine) drainCommands() {
	for {
		select {
		case cmd := <-e.commands:
			e.apply(cmd)
		default:
			return
		}
	}
}

// writeBlock writes exactly one block of FrameSize samples.
func (e *Engine) writeBlock() error {
	if e.paused || e.current == nil {
		return e.sink.Write(e.silence)
	}

	switch e.cache.CurrentState() {
	case cache.Ready:
	case cache.Failed:
		if !e.nextPending {
			err := e.cache.SlotError(e.cache.Current())
			e.log.Warn("skipping undecodable track", "path", e.current.Path, "error", err)
			e.emitError("decode", e.current.Path, err)
			e.nextPending = true
		}
		return e.sink.Write(e.silence)
	default:
		return e.sink.Write(e.silence)
	}

	n, err := e.cache.Read(e.buf)
	if err != nil {
		e.log.Warn("read failed", "path", e.current.Path, "error", err)
	}
	if n == 0 {
		e.nextPending = true
		return e.sink.Write(e.silence)
	}
	clear(e.buf[n:])
	return e.sink.Write(e.buf)
}

func (e *Engine) handleNext() {
	e.nextPending = false

	prev := e.current
	if prev == nil {
		return
	}

	if err := e.queue.Advance(e.name); err != nil {
		e.log.Error("advance queue", "queue", e.name, "error", err)
		e.emitError("advance", prev.Path, err)
		return
	}
	e.cache.Swap()

	cur, err := e.queue.CurrentTrack(e.name)
	if err != nil {
		e.lookupFailed("advance", err)
		e.setTracks(nil, nil)
		e.endOfQueue()
		return
	}
	e.setTracks(trackFromEntry(cur), e.peek())
	e.emitTrack(prev)

	// Lookahead was missing, so nothing was cached for the new entry.
	if s := e.cache.CurrentState(); s == cache.Empty || s == cache.Exhausted {
		e.cacheTrack(cur.Path, e.cache.Current())
	}

	// The vacated slot takes the entry furthest ahead.
	e.prefetch(e.cache.Depth() - 1)
}

func (e *Engine) handlePrev() {
	e.prevPending = false
	e.nextPending = false

	prev := e.current
	e.cache.ExpireAll()

	if err := e.queue.Rewind(e.name); err != nil {
		e.log.Error("rewind queue", "queue", e.name, "error", err)
		e.emitError("rewind", "", err)
		return
	}

	cur, err := e.queue.CurrentTrack(e.name)
	if err != nil {
		e.lookupFailed("rewind", err)
		e.setTracks(nil, nil)
		e.endOfQueue()
		return
	}
	e.setTracks(trackFromEntry(cur), e.peek())
	e.emitTrack(prev)

	e.cacheTrack(cur.Path, e.cache.Current())
	e.prefetchAll()

	if e.ended {
		e.ended = false
		e.setPaused(false)
	}
}

// peek returns the entry after the cursor, or nil.
func (e *Engine) peek() *Track {
	next, err := e.queue.TrackAt(e.name, 1)
	if err != nil {
		e.lookupFailed("peek", err)
		return nil
	}
	return trackFromEntry(next)
}

// prefetchAll fills the lookahead slots behind the current one.
func (e *Engine) prefetchAll() {
	for offset := 1; offset < e.cache.Depth(); offset++ {
		e.prefetch(offset)
	}
}

func (e *Engine) prefetch(offset int) {
	t, err := e.queue.TrackAt(e.name, offset)
	if err != nil {
		e.lookupFailed("prefetch", err)
		return
	}
	e.cacheTrack(t.Path, cache.Auto)
}

func (e *Engine) cacheTrack(path string, slot int) {
	if _, err := e.cache.CacheTrack(path, slot); err != nil {
		e.log.Error("cache track", "path", path, "slot", slot, "error", err)
		e.emitError("prefetch", path, err)
	}
}

// lookupFailed logs queue lookups that failed for a reason other than
// running off the queue.
func (e *Engine) lookupFailed(op string, err error) {
	if errors.Is(err, playqueue.ErrQueryEmptyResult) {
		return
	}
	e.log.Error("queue lookup", "op", op, "queue", e.name, "error", err)
	e.emitError(op, "", err)
}

func (e *Engine) endOfQueue() {
	e.ended = true
	e.log.Info("end of queue", "queue", e.name)
	e.setPaused(true)
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendEnded(QueueEnded{Queue: e.name})
	}
}

func (e *Engine) setPaused(paused bool) {
	e.paused = paused
	if paused {
		e.setState(StatePaused)
	} else {
		e.setState(StatePlaying)
	}
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	prev := e.state
	e.state = s
	e.mu.Unlock()

	if prev == s {
		return
	}
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendState(StateChange{Previous: prev, Current: s})
	}
}

func (e *Engine) setTracks(cur, next *Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = cur
	e.next = next
}

func (e *Engine) emitTrack(prev *Track) {
	e.mu.RLock()
	ev := TrackChange{Previous: prev, Current: e.current, Next: e.next}
	e.mu.RUnlock()

	if ev.Current != nil {
		e.log.Info("now playing",
			"position", ev.Current.Position,
			"title", ev.Current.Title,
			"artist", ev.Current.Artist)
	}

	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendTrack(ev)
	}
}

func (e *Engine) emitError(op, path string, err error) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendError(ErrorEvent{Operation: op, Path: path, Err: err})
	}
}

// State returns the current playback state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// CurrentTrack returns the track being played, or nil.
func (e *Engine) CurrentTrack() *Track {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// NextTrack returns the entry after the current one, or nil.
func (e *Engine) NextTrack() *Track {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.next
}

// Subscribe creates a new event subscription.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	if e.closed {
		sub.close()
		return sub
	}
	e.subs = append(e.subs, sub)
	return sub
}

// Close ends every subscription. Call it after Run has returned.
func (e *Engine) Close() error {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	return nil
}
