// Package tui provides the Bubble Tea run screen for a playing session.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/intervals/internal/engine"
	"github.com/fakeyudi/intervals/internal/playback"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 4).
			Align(lipgloss.Center)

	descStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(1, 0)

	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	doneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	endedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("124")).
			Padding(0, 1)

	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Controller is what the run screen needs from playback.
type Controller interface {
	Display() playback.Display
	Toggle() error
	Skip()
	End()
	Subscribe(buffer int) <-chan playback.Update
}

// ── Messages ────────────

type updateMsg playback.Update

type closedMsg struct{}

func waitForUpdate(ch <-chan playback.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return updateMsg(u)
	}
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the run screen.
type Model struct {
	ctl        Controller
	updates    <-chan playback.Update
	display    playback.Display
	progress   progress.Model
	help       help.Model
	keys       keyMap
	confirmEnd bool
	err        error
	width      int
	height     int
}

// New creates a run screen for ctl. It subscribes to controller updates
// immediately so nothing published before the program starts is lost.
func New(ctl Controller) Model {
	return Model{
		ctl:      ctl,
		updates:  ctl.Subscribe(64),
		display:  ctl.Display(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:     help.New(),
		keys:     defaultKeys(),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return waitForUpdate(m.updates) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.display = msg.Display
		return m, waitForUpdate(m.updates)

	case closedMsg:
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(msg.Width-8, 10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.confirmEnd {
			switch {
			case key.Matches(msg, m.keys.Confirm):
				m.confirmEnd = false
				m.ctl.End()
			case key.Matches(msg, m.keys.Cancel):
				m.confirmEnd = false
			}
			return m, nil
		}
		if m.display.Status == engine.StatusFinished {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Toggle):
			m.err = m.ctl.Toggle()
		case key.Matches(msg, m.keys.Skip):
			m.ctl.Skip()
		case key.Matches(msg, m.keys.End):
			m.confirmEnd = true
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	d := m.display

	// ── Row 1: title bar ────────────────────
	title := d.SessionName
	if title == "" {
		title = "intervals"
	}
	clock := d.ElapsedText + " / " + d.TotalText
	header := titleStyle.Width(max(m.width, lipgloss.Width(title)+lipgloss.Width(clock)+6)).
		Render(title + strings.Repeat(" ", max(m.width-lipgloss.Width(title)-lipgloss.Width(clock)-4, 2)) + clock)

	// ── Row 2: progress ────────────────────
	bar := m.progress.ViewAs(d.Progress) + dimStyle.Render(fmt.Sprintf(" %3d%%", d.Percent))

	// ── Body ────────────────────
	var body string
	switch {
	case d.Status == engine.StatusCountdown:
		body = countdownStyle.Render(strconv.Itoa(d.Countdown))
	case d.Status == engine.StatusFinished && d.Outcome == engine.OutcomeCompleted:
		body = doneStyle.Render("Session complete!") + "\n\n" + dimStyle.Render("Total "+d.ElapsedText)
	case d.Status == engine.StatusFinished:
		body = endedStyle.Render("Session ended") + "\n\n" + dimStyle.Render(d.ElapsedText+" of "+d.TotalText)
	default:
		body = m.stepView()
	}
	panel := panelStyle
	if d.Status == engine.StatusRunning && d.Current != nil && d.Current.Color != "" {
		panel = panel.Background(lipgloss.Color(d.Current.Color))
	}
	if m.width > 4 {
		panel = panel.Width(m.width - 4)
	}

	// ── Footer ────────────────────
	var footer string
	switch {
	case m.confirmEnd:
		footer = promptStyle.Render("End this session? (y/n)") + "  " + m.help.View(confirmHelp{m.keys})
	case d.Status == engine.StatusFinished:
		footer = m.help.View(doneHelp{m.keys})
	default:
		footer = statusLabel(d.Status) + "  " + m.help.View(m.keys)
	}
	if m.err != nil {
		footer += "\n" + errStyle.Render(m.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", "  "+bar, "", panel.Render(body), "", footer)
}

func (m Model) stepView() string {
	d := m.display
	var lines []string
	if d.Current != nil {
		lines = append(lines, descStyle.Render(d.Current.Label()))
	}
	if d.ShowSets {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("Set %d of %d", d.Set, d.TotalSets)))
	}
	if d.Current != nil {
		if d.Current.Speed > 0 {
			speed := strconv.FormatFloat(d.Current.Speed, 'f', -1, 64) + " km/h"
			if d.Pace != "" {
				speed += " (" + d.Pace + "/km)"
			}
			lines = append(lines, speed)
		}
		if d.Current.Incline > 0 {
			lines = append(lines, strconv.FormatFloat(d.Current.Incline, 'f', -1, 64)+"% incline")
		}
	}
	lines = append(lines, clockStyle.Render(d.RemainingText))
	lines = append(lines, dimStyle.Render("Next up:"), d.NextDescription)
	return strings.Join(lines, "\n")
}

func statusLabel(s engine.Status) string {
	switch s {
	case engine.StatusIdle:
		return dimStyle.Render("ready")
	case engine.StatusPaused:
		return countdownStyle.Render("paused")
	case engine.StatusRunning:
		return doneStyle.Render("running")
	default:
		return dimStyle.Render(string(s))
	}
}

// Run starts the run screen and blocks until the user quits.
func Run(ctl Controller, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(New(ctl), opts...)
	_, err := p.Run()
	return err
}
