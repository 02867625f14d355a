package playback

import "sync"

// Mock is a Controller for tests of display layers. It records commands
// and lets tests publish events to its subscribers.
type Mock struct {
	mu       sync.Mutex
	commands []Command
	state    State
	current  *Track
	next     *Track
	subs     []*Subscription
}

var _ Controller = (*Mock)(nil)

// NewMock creates a stopped mock controller.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) record(cmd Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, cmd)
}

func (m *Mock) Play()        { m.record(CmdPlay) }
func (m *Mock) Pause()       { m.record(CmdPause) }
func (m *Mock) Toggle()      { m.record(CmdToggle) }
func (m *Mock) RequestNext() { m.record(CmdNext) }
func (m *Mock) RequestPrev() { m.record(CmdPrev) }

// Commands returns the commands received so far.
func (m *Mock) Commands() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Command(nil), m.commands...)
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) CurrentTrack() *Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Mock) NextTrack() *Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next
}

func (m *Mock) Subscribe() *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := newSubscription()
	m.subs = append(m.subs, sub)
	return sub
}

// SetState changes the state and notifies subscribers.
func (m *Mock) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.state
	m.state = s
	for _, sub := range m.subs {
		sub.sendState(StateChange{Previous: prev, Current: s})
	}
}

// SetTracks changes the current and next track and notifies subscribers.
func (m *Mock) SetTracks(cur, next *Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.current
	m.current, m.next = cur, next
	for _, sub := range m.subs {
		sub.sendTrack(TrackChange{Previous: prev, Current: cur, Next: next})
	}
}

// EndQueue publishes a QueueEnded event.
func (m *Mock) EndQueue(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subs {
		sub.sendEnded(QueueEnded{Queue: name})
	}
}

// Fail publishes an ErrorEvent.
func (m *Mock) Fail(op, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subs {
		sub.sendError(ErrorEvent{Operation: op, Path: path, Err: err})
	}
}

// Close ends every subscription.
func (m *Mock) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subs {
		sub.close()
	}
	m.subs = nil
}
