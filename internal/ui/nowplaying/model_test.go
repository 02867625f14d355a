package nowplaying

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/platter/internal/playback"
	"github.com/llehouerou/platter/internal/ui/albumart"
)

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestKeys_DriveController(t *testing.T) {
	ctl := playback.NewMock()
	m := New(ctl, nil)

	m, _ = update(t, m, keyMsg(" "))
	m, _ = update(t, m, keyMsg("n"))
	m, _ = update(t, m, keyMsg("b"))
	_, cmd := update(t, m, keyMsg("q"))

	assert.Equal(t, []playback.Command{playback.CmdToggle, playback.CmdNext, playback.CmdPrev}, ctl.Commands())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWaitEvent_ReceivesEngineEvents(t *testing.T) {
	ctl := playback.NewMock()
	m := New(ctl, nil)

	ctl.SetTracks(&playback.Track{Position: 1, Title: "First", Artist: "A", Album: "X"}, nil)
	msg := m.Init()()
	require.IsType(t, trackMsg{}, msg)

	m, cmd := update(t, m, msg)
	require.NotNil(t, cmd, "keeps listening")
	assert.Equal(t, "First", m.current.Title)

	ctl.SetState(playback.StatePaused)
	m, _ = update(t, m, cmd())
	assert.Equal(t, playback.StatePaused, m.state)

	ctl.Close()
	_, cmd = update(t, m, waitEvent(m.sub)())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_ShowsTrack(t *testing.T) {
	ctl := playback.NewMock()
	m := New(ctl, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 10})
	m, _ = update(t, m, stateMsg{Current: playback.StatePlaying})
	m, _ = update(t, m, trackMsg{
		Current: &playback.Track{Position: 3, Title: "Song", Artist: "Band", Album: "Record"},
		Next:    &playback.Track{Position: 4, Title: "Later", Artist: "Other"},
	})

	view := ansi.Strip(m.View())
	assert.Contains(t, view, playSymbol)
	assert.Contains(t, view, "Song")
	assert.Contains(t, view, "Band · Record   #3")
	assert.Contains(t, view, "Next: Later · Other")
	assert.Contains(t, view, "space play/pause")
}

func TestView_EndOfQueueAndErrors(t *testing.T) {
	m := New(playback.NewMock(), nil)
	m, _ = update(t, m, errorMsg{Operation: "decode", Path: "/m/bad.mp3", Err: errors.New("corrupt")})
	m, _ = update(t, m, endedMsg{Queue: "shuffle"})

	view := ansi.Strip(m.View())
	assert.Contains(t, view, `End of "shuffle"`)
	assert.Contains(t, view, "bad.mp3")
	assert.Contains(t, view, "corrupt")

	m, _ = update(t, m, trackMsg{Current: &playback.Track{Title: "Again"}})
	view = ansi.Strip(m.View())
	assert.NotContains(t, view, "corrupt")
	assert.Contains(t, view, "Last track in queue")
}

func TestView_NarrowTruncates(t *testing.T) {
	m := New(playback.NewMock(), nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 10})
	m, _ = update(t, m, trackMsg{Current: &playback.Track{Title: "A very long title that cannot fit anywhere"}})

	for _, line := range bytes.Split([]byte(ansi.Strip(m.View())), []byte("\n")) {
		assert.LessOrEqual(t, ansi.StringWidth(string(line)), minWidth)
	}
}

func TestArt_SentOnceAfterTrackChange(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 32))))

	m := New(playback.NewMock(), albumart.New(artWidth, artHeight))
	m, _ = update(t, m, trackMsg{Current: &playback.Track{Title: "Song", Album: "X", Cover: buf.Bytes()}})

	view := m.View()
	assert.Contains(t, view, "a=t", "transmitted")
	assert.Contains(t, view, "a=p", "placed")

	m, _ = update(t, m, stateMsg{Current: playback.StatePlaying})
	view = m.View()
	assert.NotContains(t, view, "a=t")
	assert.Contains(t, view, "a=p")
}

func TestSanitizeAndFit(t *testing.T) {
	assert.Equal(t, "a b", sanitize("a\tb\x07"))
	assert.Equal(t, "abc", fit("abc", 5))
	assert.Equal(t, "ab…", fit("abcdef", 3))
	assert.Empty(t, fit("abc", 0))
}
