// Package ui renders the interactive playback screen: transport state,
// the text being spoken, a frequency visualizer and a progress bar.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/notevox/notevox/tts"
	"github.com/notevox/notevox/tts/synth"
)

// Frame rate for the visualizer while audio is playing.
const frameInterval = time.Second / 12

var barGlyphs = []rune("▁▂▃▄▅▆▇█")

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")) // Green
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")) // Yellow
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")) // Gray
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AAFF")) // Blue
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")) // Red
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF71D0"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5C5C5C"))
)

type frameMsg time.Time

type eventMsg tts.Event

// PlayerModel is the bubbletea model for the playback screen.
type PlayerModel struct {
	ctrl *tts.Controller
	vis  *tts.Visualizer

	progress progress.Model
	frame    []float64
	width    int
	ticking  bool
	quitting bool
}

// NewPlayer creates the playback screen over a controller and visualizer.
func NewPlayer(ctrl *tts.Controller, vis *tts.Visualizer) PlayerModel {
	return PlayerModel{
		ctrl:     ctrl,
		vis:      vis,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		frame:    make([]float64, vis.Bins()),
		width:    80,
	}
}

// Init implements tea.Model.
func (m PlayerModel) Init() tea.Cmd {
	return waitEvent(m.ctrl)
}

// Update implements tea.Model.
func (m PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		cmds := []tea.Cmd{waitEvent(m.ctrl)}
		// The visualizer only runs while audio is playing; restart the
		// frame clock when playback comes back.
		if !m.ticking && m.ctrl.State() == tts.StatePlaying {
			m.ticking = true
			cmds = append(cmds, frameTick())
		}
		return m, tea.Batch(cmds...)

	case frameMsg:
		if m.ctrl.State() != tts.StatePlaying {
			m.ticking = false
			for i := range m.frame {
				m.frame[i] = 0
			}
			return m, nil
		}
		m.frame = m.vis.Frame()
		return m, frameTick()
	}
	return m, nil
}

func (m PlayerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case " ":
		switch m.ctrl.State() {
		case tts.StatePlaying:
			_ = m.ctrl.Pause()
		case tts.StatePaused:
			_ = m.ctrl.Resume()
		}

	case "+", "=":
		m.ctrl.SpeedUp()

	case "-", "_":
		m.ctrl.SpeedDown()

	case "n", "right":
		_ = m.ctrl.Skip()

	case "r":
		_ = m.ctrl.Retry()

	case "v":
		m.ctrl.SetVoice(nextVoice(m.ctrl.Voice()))
	}
	return m, nil
}

// View implements tea.Model.
func (m PlayerModel) View() string {
	if m.quitting {
		return ""
	}

	snap := m.ctrl.Snapshot()
	var b strings.Builder

	b.WriteString("  " + titleStyle.Render("notevox") + "  " + m.statusLine(snap) + "\n\n")

	if text := m.currentText(snap); text != "" {
		wrapped := wordwrap.String(text, min(m.width-4, 76))
		for _, line := range strings.Split(wrapped, "\n") {
			b.WriteString("  " + textStyle.Render(line) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + m.renderBars() + "\n\n")
	b.WriteString("  " + m.progress.ViewAs(snap.Progress()) + "\n")

	if snap.Total > 0 && snap.Chunks[snap.Current].Status == tts.StatusError {
		err := snap.Chunks[snap.Current].Err
		b.WriteString("\n  " + errorStyle.Render(fmt.Sprintf("✗ chunk %d failed: %v", snap.Current+1, err)) + "\n")
		b.WriteString("  " + dimStyle.Render("press r to retry") + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("  space pause · +/- speed · n skip · v voice · r retry · q quit") + "\n")
	return b.String()
}

func (m PlayerModel) statusLine(snap tts.Snapshot) string {
	var status string
	switch snap.State {
	case tts.StatePlaying:
		if snap.Waiting {
			status = loadingStyle.Render("⟳ loading")
		} else {
			status = playingStyle.Render("▶ playing")
		}
	case tts.StatePaused:
		status = pausedStyle.Render("⏸ paused")
	default:
		status = stoppedStyle.Render("■ stopped")
	}

	if snap.Total > 0 {
		status += dimStyle.Render(fmt.Sprintf("  %d/%d", snap.Current+1, snap.Total))
	}
	status += dimStyle.Render(fmt.Sprintf("  %.2fx  %s", snap.Speed, snap.Voice))
	return status
}

func (m PlayerModel) currentText(snap tts.Snapshot) string {
	if snap.Total == 0 || snap.Current >= len(snap.Chunks) {
		return ""
	}
	return snap.Chunks[snap.Current].Text
}

func (m PlayerModel) renderBars() string {
	var b strings.Builder
	for _, v := range m.frame {
		idx := int(v * float64(len(barGlyphs)))
		if idx > len(barGlyphs)-1 {
			idx = len(barGlyphs) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(barGlyphs[idx])
		b.WriteRune(' ')
	}
	return barStyle.Render(strings.TrimRight(b.String(), " "))
}

func waitEvent(c *tts.Controller) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-c.Events())
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// NewProgram wraps the player in a bubbletea program.
func NewProgram(ctrl *tts.Controller, vis *tts.Visualizer) *tea.Program {
	return tea.NewProgram(NewPlayer(ctrl, vis), tea.WithAltScreen())
}

func nextVoice(v synth.Voice) synth.Voice {
	voices := synth.Voices()
	for i, cur := range voices {
		if cur == v {
			return voices[(i+1)%len(voices)]
		}
	}
	return synth.DefaultVoice
}
