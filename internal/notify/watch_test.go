package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/platter/internal/logger"
	"github.com/llehouerou/platter/internal/playback"
)

type recordingNotifier struct {
	mu        sync.Mutex
	shown     []Message
	dismissed int
	err       error
}

func (r *recordingNotifier) Show(m Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.shown = append(r.shown, m)
	return nil
}

func (r *recordingNotifier) Dismiss() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dismissed++
	return nil
}

func (r *recordingNotifier) snapshot() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.shown...)
}

func (r *recordingNotifier) dismissCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dismissed
}

func TestWatch_TrackChanges(t *testing.T) {
	ctl := playback.NewMock()
	sub := ctl.Subscribe()
	n := &recordingNotifier{}
	th := NewThumbnailer(t.TempDir(), 32)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, sub, n, th, logger.Discard())
		close(done)
	}()

	ctl.SetTracks(&playback.Track{Title: "One", Artist: "A", Album: "X", Cover: encodePNG(t, 8, 8)}, nil)
	ctl.SetTracks(&playback.Track{Title: "Two", Artist: "B", Album: "Y"}, nil)
	ctl.SetTracks(nil, nil)
	require.Eventually(t, func() bool { return len(n.snapshot()) == 2 }, time.Second, 5*time.Millisecond)

	ctl.EndQueue("shuffle")
	require.Eventually(t, func() bool { return len(n.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	sent := n.snapshot()
	assert.Equal(t, "One", sent[0].Summary)
	assert.Equal(t, "A - X", sent[0].Body)
	assert.NotEmpty(t, sent[0].Icon)

	assert.Equal(t, "Two", sent[1].Summary)
	assert.Empty(t, sent[1].Icon)

	assert.Equal(t, "Queue finished", sent[2].Summary)
	assert.Contains(t, sent[2].Body, "shuffle")

	assert.Equal(t, 1, n.dismissCount())
}

func TestWatch_StopsWhenSubscriptionCloses(t *testing.T) {
	ctl := playback.NewMock()
	sub := ctl.Subscribe()
	n := &recordingNotifier{}

	done := make(chan struct{})
	go func() {
		Watch(context.Background(), sub, n, nil, logger.Discard())
		close(done)
	}()

	ctl.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after subscription closed")
	}
	assert.Equal(t, 1, n.dismissCount())
}

func TestWatch_NotifyErrorKeepsGoing(t *testing.T) {
	ctl := playback.NewMock()
	sub := ctl.Subscribe()
	n := &recordingNotifier{err: errors.New("no daemon")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, sub, n, nil, logger.Discard())
		close(done)
	}()

	ctl.SetTracks(&playback.Track{Title: "One"}, nil)
	time.Sleep(20 * time.Millisecond)

	n.mu.Lock()
	n.err = nil
	n.mu.Unlock()
	ctl.SetTracks(&playback.Track{Title: "Two"}, nil)

	require.Eventually(t, func() bool { return len(n.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, "Two", n.snapshot()[0].Summary)
}
