// Package tui provides the terminal stand-ins for the editor's prompt
// surfaces: a single-selection picker and a one-line input, both Bubble Tea
// models, plus a newfile.Client implementation wrapping them.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"slate/internal/newfile"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type pickModel struct {
	title     string
	items     []newfile.PickItem
	cursor    int
	choice    string
	cancelled bool
	width     int
}

func newPickModel(title string, items []newfile.PickItem) pickModel {
	return pickModel{title: title, items: items, width: 80}
}

func (m pickModel) Init() tea.Cmd { return nil }

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			m.choice = m.items[m.cursor].ID
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickModel) View() string {
	if m.choice != "" || m.cancelled {
		return ""
	}
	out := titleStyle.Render(m.title) + "\n"
	for i, item := range m.items {
		label := runewidth.Truncate(item.Label, max(m.width-4, 8), "…")
		if i == m.cursor {
			out += selectedStyle.Render("▸ "+label) + "\n"
		} else {
			out += "  " + label + "\n"
		}
	}
	out += dimStyle.Render("↑/↓ move · enter select · esc cancel") + "\n"
	return out
}
