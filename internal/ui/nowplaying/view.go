package nowplaying

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/platter/internal/playback"
	"github.com/llehouerou/platter/internal/ui/styles"
)

const (
	playSymbol  = "▶"
	pauseSymbol = "⏸"
	idleSymbol  = "■"
)

// Cover position inside the panel: top border, then left border plus
// two cells of padding.
const (
	artRow = 2
	artCol = 4
)

func (m Model) View() string {
	th := styles.T()
	s := th.S()

	inner := m.width - 6 // border and padding
	textWidth := inner
	if m.showArt() {
		textWidth -= artWidth + 2
	}

	lines := []string{
		m.titleLine(textWidth),
		s.Muted.Render(fit(m.infoLine(), textWidth)),
		s.Subtle.Render(fit(m.nextLine(), textWidth)),
	}
	if m.lastErr != "" {
		lines = append(lines, s.Error.Render(fit(m.lastErr, textWidth)))
	}
	lines = append(lines, s.Subtle.Render(fit(m.helpLine(), textWidth)))

	body := strings.Join(lines, "\n")
	if m.showArt() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.art.Placeholder(), "  ", body)
	}
	view := s.Panel.Width(m.width - 2).Render(body)

	if m.pendingArt != "" {
		view = m.pendingArt + view
	}
	if m.showArt() {
		view += m.art.Placement(artRow, artCol)
	}
	return view
}

func (m Model) showArt() bool {
	return m.art != nil && m.art.HasImage() && m.current != nil
}

func (m Model) titleLine(width int) string {
	th := styles.T()

	symbol := idleSymbol
	switch m.state {
	case playback.StatePlaying:
		symbol = playSymbol
	case playback.StatePaused:
		symbol = pauseSymbol
	case playback.StateStopped:
	}

	title := "Nothing playing"
	if m.current != nil {
		title = orUnknown(m.current.Title, "Unknown Track")
	}
	if m.ended != "" && m.current == nil {
		title = fmt.Sprintf("End of %q", m.ended)
	}

	line := th.S().Status.Render(symbol) + "  " + th.Title(sanitize(title))
	return ansi.Truncate(line, width, "…")
}

func (m Model) infoLine() string {
	if m.current == nil {
		return ""
	}
	return fmt.Sprintf("%s · %s   #%d",
		orUnknown(m.current.Artist, "Unknown Artist"),
		orUnknown(m.current.Album, "Unknown Album"),
		m.current.Position)
}

func (m Model) nextLine() string {
	if m.next == nil {
		if m.current != nil {
			return "Last track in queue"
		}
		return ""
	}
	return "Next: " + orUnknown(m.next.Title, "Unknown Track") + " · " + m.next.Artist
}

func (m Model) helpLine() string {
	parts := make([]string, 0, 4)
	for _, b := range m.keys.bindings() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

func orUnknown(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// fit sanitizes s and truncates it to width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(sanitize(s), width, "…")
}

// sanitize drops control characters that would break the layout.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, s)
}
