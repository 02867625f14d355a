// Package nowplaying is the terminal display: the current track, what
// comes next, and keys driving the playback engine.
package nowplaying

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/platter/internal/playback"
	"github.com/llehouerou/platter/internal/ui/albumart"
)

const (
	minWidth  = 30
	artWidth  = 10 // cells
	artHeight = 5  // cells
)

// Messages carrying engine events into the update loop.
type (
	stateMsg playback.StateChange
	trackMsg playback.TrackChange
	endedMsg playback.QueueEnded
	errorMsg playback.ErrorEvent
	closedMsg struct{}
)

// Model is the bubbletea model of the now-playing screen.
type Model struct {
	ctl  playback.Controller
	sub  *playback.Subscription
	keys KeyMap
	art  *albumart.Renderer

	// Sent once, ahead of the next frame.
	pendingArt string

	state   playback.State
	current *playback.Track
	next    *playback.Track
	ended   string
	lastErr string

	width int
}

// New creates the model. A nil art renderer disables cover display.
func New(ctl playback.Controller, art *albumart.Renderer) Model {
	return Model{
		ctl:     ctl,
		sub:     ctl.Subscribe(),
		keys:    DefaultKeyMap(),
		art:     art,
		state:   ctl.State(),
		current: ctl.CurrentTrack(),
		next:    ctl.NextTrack(),
		width:   80,
	}
}

func (m Model) Init() tea.Cmd {
	return waitEvent(m.sub)
}

// waitEvent blocks until the engine publishes something.
func waitEvent(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return stateMsg(e)
		case e := <-sub.TrackChanged:
			return trackMsg(e)
		case e := <-sub.QueueEnded:
			return endedMsg(e)
		case e := <-sub.Error:
			return errorMsg(e)
		case <-sub.Done:
			return closedMsg{}
		}
	}
}
