// Package display renders the replayed transcript in the terminal: one pane
// per channel plus the merged chronological feed, filled strictly in the
// order segments are released to it. The ordering contract lives in the
// session; this surface only appends.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/koscakluka/replay-core/core/transcripts"
	"github.com/muesli/reflow/wordwrap"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	paneStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	rawLineStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	correctedLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	statusLineStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
)

type segmentReleasedMsg struct {
	segment transcripts.Segment
}

type statusReleasedMsg struct {
	status string
}

// clearMsg wipes all three surfaces; sent when the session resets so the next
// run starts on an empty screen.
type clearMsg struct{}

type feedLine struct {
	text     string
	channel  transcripts.Channel
	endTime  float64
	isStatus bool
}

type Model struct {
	raw       []string
	corrected []string
	feed      []feedLine

	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

func NewModel() Model {
	return Model{}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(msg.Height-4, 1))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(msg.Height-4, 1)
		}
		m.viewport.SetContent(m.feedContent())
		return m, nil

	case segmentReleasedMsg:
		switch msg.segment.Channel {
		case transcripts.ChannelRaw:
			m.raw = append(m.raw, msg.segment.Text)
		case transcripts.ChannelCorrected:
			m.corrected = append(m.corrected, msg.segment.Text)
		}
		m.feed = append(m.feed, feedLine{
			text:    msg.segment.Text,
			channel: msg.segment.Channel,
			endTime: msg.segment.EndTime,
		})
		m.viewport.SetContent(m.feedContent())
		m.viewport.GotoBottom()
		return m, nil

	case statusReleasedMsg:
		m.feed = append(m.feed, feedLine{text: msg.status, isStatus: true})
		m.viewport.SetContent(m.feedContent())
		m.viewport.GotoBottom()
		return m, nil

	case clearMsg:
		m.raw = nil
		m.corrected = nil
		m.feed = nil
		m.viewport.SetContent("")
		m.viewport.GotoTop()
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "loading transcript feed..."
	}

	paneWidth := max(m.width/2-4, 10)
	rawPane := paneStyle.Width(paneWidth).Render(
		titleStyle.Render("Raw Transcript") + "\n" +
			wordwrap.String(strings.Join(m.raw, "\n"), paneWidth))
	correctedPane := paneStyle.Width(paneWidth).Render(
		titleStyle.Render("AI-Corrected Transcript") + "\n" +
			wordwrap.String(strings.Join(m.corrected, "\n"), paneWidth))

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, rawPane, correctedPane),
		titleStyle.Render("Feed"),
		m.viewport.View(),
	)
}

func (m Model) feedContent() string {
	width := max(m.viewport.Width-2, 10)

	lines := make([]string, 0, len(m.feed))
	for _, line := range m.feed {
		switch {
		case line.isStatus:
			lines = append(lines, statusLineStyle.Render(wordwrap.String(line.text, width)))
		case line.channel == transcripts.ChannelCorrected:
			lines = append(lines, correctedLineStyle.Render(
				wordwrap.String(fmt.Sprintf("[%.2fs] %s", line.endTime, line.text), width)))
		default:
			lines = append(lines, rawLineStyle.Render(
				wordwrap.String(fmt.Sprintf("[%.2fs] %s", line.endTime, line.text), width)))
		}
	}
	return strings.Join(lines, "\n")
}
