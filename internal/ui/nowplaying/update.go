package nowplaying

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/platter/internal/errmsg"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.pendingArt = ""

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, minWidth)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateMsg:
		m.state = msg.Current
		return m, waitEvent(m.sub)

	case trackMsg:
		m.current, m.next = msg.Current, msg.Next
		m.ended = ""
		if msg.Current != nil {
			m.lastErr = ""
			m.prepareArt()
		}
		return m, waitEvent(m.sub)

	case endedMsg:
		m.ended = msg.Queue
		return m, waitEvent(m.sub)

	case errorMsg:
		m.lastErr = errmsg.FormatWith(errmsg.OpCacheTrack, msg.Path, msg.Err)
		return m, waitEvent(m.sub)

	case closedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.ctl.Toggle()
	case key.Matches(msg, m.keys.Next):
		m.ctl.RequestNext()
	case key.Matches(msg, m.keys.Prev):
		m.ctl.RequestPrev()
	}
	return m, nil
}

// prepareArt keys covers by album so consecutive tracks of one album
// reuse the transmitted image.
func (m *Model) prepareArt() {
	if m.art == nil {
		return
	}
	m.pendingArt = m.art.Prepare(m.current.Artist+"\x00"+m.current.Album, m.current.Cover)
}
