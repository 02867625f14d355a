package audio

import "sync"

// Mock is a test double recording every block written.
type Mock struct {
	mu       sync.Mutex
	blocks   [][][2]float64
	writeErr error
	closed   bool
	onWrite  func(n int)
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Write(samples [][2]float64) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.writeErr != nil {
		err := m.writeErr
		m.mu.Unlock()
		return err
	}
	block := make([][2]float64, len(samples))
	copy(block, samples)
	m.blocks = append(m.blocks, block)
	n := len(m.blocks)
	hook := m.onWrite
	m.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// Blocks returns copies of all blocks written so far.
func (m *Mock) Blocks() [][][2]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][][2]float64, len(m.blocks))
	copy(out, m.blocks)
	return out
}

func (m *Mock) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blocks)
}

// Reset forgets recorded blocks.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks = nil
}

func (m *Mock) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// OnWrite registers fn to run after each write with the block count.
func (m *Mock) OnWrite(fn func(n int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWrite = fn
}

func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// IsSilent reports whether every sample of block is zero.
func IsSilent(block [][2]float64) bool {
	for _, s := range block {
		if s[0] != 0 || s[1] != 0 {
			return false
		}
	}
	return true
}

var _ Sink = (*Mock)(nil)
