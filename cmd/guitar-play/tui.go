package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-guitar/guitar"
)

const refreshInterval = 50 * time.Millisecond

var stringNames = [guitar.NumStrings]string{"E", "A", "D", "G", "B", "e"}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	playStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pauseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	dampStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	ringStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	meterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	clipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// transport is the part of guitar.Player the display drives.
type transport interface {
	Toggle() bool
	Rewind()
	Strike(key int) bool
	Snapshot() guitar.Snapshot
}

type tickMsg time.Time

type deadlineMsg struct{}

type model struct {
	player   transport
	style    string
	deadline <-chan time.Time
	snap     guitar.Snapshot
	peakHold float32
	quitting bool
}

func newModel(player transport, style string, deadline <-chan time.Time) model {
	return model{
		player:   player,
		style:    style,
		deadline: deadline,
		snap:     player.Snapshot(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitDeadline(deadline <-chan time.Time) tea.Cmd {
	if deadline == nil {
		return nil
	}
	return func() tea.Msg {
		<-deadline
		return deadlineMsg{}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(), waitDeadline(m.deadline))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case " ", "p":
			m.player.Toggle()
		case "r":
			m.player.Rewind()
			m.peakHold = 0
		case "1", "2", "3", "4", "5", "6":
			m.player.Strike(guitar.OpenKey(int(key[0] - '1')))
		}
		m.snap = m.player.Snapshot()

	case tickMsg:
		m.snap = m.player.Snapshot()
		// Peak hold falls about 20 dB per second.
		m.peakHold *= 0.9
		if m.snap.Peak > m.peakHold {
			m.peakHold = m.snap.Peak
		}
		return m, tick()

	case deadlineMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("algo-guitar") + "  " + m.style + "\n\n")
	b.WriteString(statusLine(m.snap) + "\n")
	b.WriteString(meter(m.peakHold, 32) + "\n\n")
	for i := guitar.NumStrings - 1; i >= 0; i-- {
		b.WriteString(stringRow(i, m.snap.Strings[i]) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("space/p play-pause  r rewind  1-6 pluck open string  q quit"))
	return borderStyle.Render(b.String())
}

func statusLine(s guitar.Snapshot) string {
	state := pauseStyle.Render("paused ")
	if s.Playing {
		state = playStyle.Render("playing")
	}
	pos := float64(s.Time) / guitar.SampleRate
	end := float64(s.End) / guitar.SampleRate
	return fmt.Sprintf("%s  %6.2fs / %6.2fs  peak %.3f", state, pos, end, s.Peak)
}

func stringRow(i int, st guitar.StringState) string {
	name := fmt.Sprintf("%s %-4s %7.2f Hz", stringNames[i], guitar.KeyName(st.Key), st.Pitch)
	if st.Damped {
		return dampStyle.Render(name + "  muted")
	}
	return ringStyle.Render(name + "  ~~~~")
}

func meter(peak float32, width int) string {
	n := int(peak * float32(width))
	n = max(0, min(n, width))
	bar := strings.Repeat("#", n) + strings.Repeat(".", width-n)
	if peak >= 1 {
		return clipStyle.Render("[" + bar + "] clip")
	}
	return meterStyle.Render("[" + bar + "]")
}
