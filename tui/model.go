package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tinymid/inspect"
	"tinymid/midi"
	"tinymid/theme"
)

// row pairs a rendered inspector line with the event it came from, so the
// view can style meta rows without re-deriving the kind.
type row struct {
	text string
	meta bool
}

type Model struct {
	File     *midi.File
	Theme    *theme.Theme
	FileName string

	inspector *inspect.Inspector
	track     int // -1 = all tracks merged in file order
	rows      []row
	cursor    int
	top       int // first visible row
	height    int
	width     int
	quitting  bool
}

func NewModel(f *midi.File, fileName string, th *theme.Theme) Model {
	m := Model{
		File:     f,
		Theme:    th,
		FileName: fileName,
		track:    -1,
		height:   24,
	}
	m.inspector = inspect.New(inspect.DefaultColumns, func(string) {})
	m.rebuild()
	return m
}

// rebuild renders the visible track selection into rows.
func (m *Model) rebuild() {
	m.rows = m.rows[:0]
	for ti, track := range m.File.Tracks {
		if m.track >= 0 && ti != m.track {
			continue
		}
		for _, ev := range track.Events {
			window := m.File.Window(ev.Offset, ev.Length)
			m.rows = append(m.rows, row{text: m.inspector.Row(ev, window), meta: ev.Meta})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.top = 0
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			m.cursor--
		case "down", "j":
			m.cursor++
		case "pgup", "ctrl+u":
			m.cursor -= m.pageSize()
		case "pgdown", "ctrl+d":
			m.cursor += m.pageSize()
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.rows) - 1

		case "tab", "t":
			// Cycle: all tracks, then each track on its own
			m.track++
			if m.track >= len(m.File.Tracks) {
				m.track = -1
			}
			m.rebuild()
		}
		m.clamp()
	}
	return m, nil
}

func (m *Model) pageSize() int {
	n := m.height - 3 // header, status, spacing
	if n < 1 {
		n = 1
	}
	return n
}

func (m *Model) clamp() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	page := m.pageSize()
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+page {
		m.top = m.cursor - page + 1
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	trackLabel := "all tracks"
	if m.track >= 0 {
		trackLabel = fmt.Sprintf("track %d", m.track)
		if name := m.File.Tracks[m.track].Name; name != "" {
			trackLabel += " " + name
		}
	}
	header := m.Theme.HeaderStyle().Render(fmt.Sprintf("tinymid  %s  %s format  division %d  %s",
		m.FileName, m.File.Format, m.File.Division, trackLabel))

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n")

	page := m.pageSize()
	end := m.top + page
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.top; i < end; i++ {
		line := m.rows[i].text
		switch {
		case i == m.cursor:
			line = m.Theme.CursorStyle().Render(line)
		case m.rows[i].meta:
			line = m.Theme.MetaStyle().Render(line)
		}
		out.WriteString(line)
		out.WriteString("\n")
	}

	status := m.Theme.StatusStyle().Render(fmt.Sprintf(
		"%d/%d  j/k:scroll  ctrl+d/u:page  g/G:ends  t:track  q:quit",
		m.cursor+1, len(m.rows)))
	out.WriteString(status)

	return out.String()
}
