// Package tui plays the game in a terminal using Bubble Tea.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"golang.org/x/text/language"

	"savethebirds/internal/events"
	"savethebirds/internal/gamedata"
	"savethebirds/internal/i18n"
	"savethebirds/internal/leaderboard"
	"savethebirds/internal/session"
)

const (
	KeyCtrlC = "ctrl+c"
	KeyEsc   = "esc"
	KeyEnter = "enter"
)

// changeMsg carries a state change from the game's bus.
type changeMsg events.ChangeEvent

// cueMsg carries an audio cue from the game's bus.
type cueMsg events.CueEvent

// busClosedMsg reports that the game was closed.
type busClosedMsg struct{}

// Model is the Bubble Tea model for one local game.
type Model struct {
	game  *gamedata.Game
	tag   language.Tag
	input textinput.Model
	snap  session.Session
	err   error
	width int
	bell  io.Writer
}

// New builds a model over game. Cues ring the terminal bell on bell; nil
// silences them.
func New(game *gamedata.Game, tag language.Tag, bell io.Writer) Model {
	ti := textinput.New()
	ti.Placeholder = i18n.T(tag, i18n.KeyNamePrompt)
	ti.CharLimit = 32
	ti.Width = 24
	ti.Focus()

	return Model{
		game:  game,
		tag:   tag,
		input: ti,
		snap:  game.Snapshot(),
		bell:  bell,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.game.Events), waitForCue(m.game.Events))
}

func waitForChange(bus *events.Bus) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-bus.Changes
		if !ok {
			return busClosedMsg{}
		}
		return changeMsg(ev)
	}
}

func waitForCue(bus *events.Bus) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-bus.Cues
		if !ok {
			return busClosedMsg{}
		}
		return cueMsg(ev)
	}
}

func (m Model) ringBell() tea.Cmd {
	if m.bell == nil {
		return nil
	}
	w := m.bell
	return func() tea.Msg {
		fmt.Fprint(w, "\a")
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case changeMsg:
		m.snap = m.game.Snapshot()
		m.syncInput()
		return m, waitForChange(m.game.Events)

	case cueMsg:
		cmds := []tea.Cmd{waitForCue(m.game.Events)}
		if msg.Cue != events.CueAmbient {
			cmds = append(cmds, m.ringBell())
		}
		return m, tea.Batch(cmds...)

	case busClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case KeyCtrlC, KeyEsc:
			return m, tea.Quit
		case KeyEnter:
			m.submit()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit applies the input for the current state and clears the field.
func (m *Model) submit() {
	value := m.input.Value()
	switch m.game.State() {
	case session.StateStartScreen:
		m.err = m.game.Start(value)
	case session.StatePlaying:
		m.err = m.game.Submit(value)
	case session.StateGameOver:
		m.err = m.game.Restart()
	}
	m.snap = m.game.Snapshot()
	if m.err == nil || m.snap.State == session.StatePlaying {
		m.input.Reset()
	}
	m.syncInput()
}

func (m *Model) syncInput() {
	switch m.snap.State {
	case session.StateStartScreen:
		m.input.Placeholder = i18n.T(m.tag, i18n.KeyNamePrompt)
	case session.StatePlaying:
		m.input.Placeholder = i18n.T(m.tag, i18n.KeyAnswer)
	case session.StateGameOver:
		m.input.Placeholder = ""
	}
}

func (m Model) View() string {
	t := func(key string, args ...any) string { return i18n.T(m.tag, key, args...) }
	var b strings.Builder

	b.WriteString(TitleStyle.Render(t(i18n.KeyTitle)))
	b.WriteString("\n\n")

	switch m.snap.State {
	case session.StateStartScreen:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(m.leaderboard())

	case session.StatePlaying:
		hud := strings.Join([]string{
			t(i18n.KeyScore, m.snap.Score),
			t(i18n.KeyLevel, m.snap.Level),
			t(i18n.KeyTime, m.snap.TimeLeft),
		}, "   ")
		b.WriteString(HUDStyle.Render(hud))
		b.WriteString("\n\n")
		b.WriteString(m.sky())
		b.WriteString("\n")
		b.WriteString(cageStyle(m.snap.CageSkin()).Render(strings.Join(m.snap.Cage, " ") + " "))
		b.WriteString("\n")
		if msg := m.message(); msg != "" {
			b.WriteString(SuccessStyle.Render(msg))
			b.WriteString("\n")
		}
		if !m.snap.LevelComplete {
			b.WriteString(ProblemStyle.Render(m.snap.Problem.String() + " = ?"))
			b.WriteString("\n")
			b.WriteString(m.input.View())
		}

	case session.StateGameOver:
		b.WriteString(ErrorStyle.Render(t(i18n.KeyGameOver)))
		b.WriteString("\n")
		if msg := m.message(); msg != "" {
			b.WriteString(msg)
			b.WriteString("\n")
		}
		b.WriteString(t(i18n.KeyFinalScore, m.snap.Score))
		b.WriteString("\n")
		b.WriteString(t(i18n.KeyReachedLevel, m.snap.Level))
		b.WriteString("\n\n")
		b.WriteString(m.leaderboard())
		b.WriteString("\n")
		b.WriteString(DimStyle.Render("enter: " + t(i18n.KeyPlayAgain)))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render(m.err.Error()))
	}
	b.WriteString("\n")
	b.WriteString(DimStyle.Render("esc: quit"))

	return BoxStyle.Render(b.String())
}

func (m Model) message() string {
	switch m.snap.Message.Key {
	case session.MsgNone:
		return ""
	case session.MsgLevelComplete:
		return i18n.T(m.tag, string(m.snap.Message.Key), m.snap.Message.Level)
	default:
		return i18n.T(m.tag, string(m.snap.Message.Key))
	}
}

// sky lays freed birds out on a small grid using their percentage positions.
func (m Model) sky() string {
	const cols, rows = 40, 4
	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
		for j := range grid[i] {
			grid[i][j] = " "
		}
	}
	for _, bird := range m.snap.Freed {
		x := bird.X * (cols - 2) / 100
		y := bird.Y * (rows - 1) / 100
		grid[y][x] = bird.Symbol
	}
	lines := make([]string, rows)
	for i, row := range grid {
		lines[i] = strings.Join(row, "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) leaderboard() string {
	var entries []leaderboard.Entry
	if m.game.Board != nil {
		entries = m.game.Board.Entries()
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(i18n.T(m.tag, i18n.KeyLeaderboard)))
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString(DimStyle.Render(i18n.T(m.tag, i18n.KeyLeaderboardEmpty)))
		return b.String()
	}
	b.WriteString(Leaderboard(entries))
	return b.String()
}

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run plays game in the terminal until the player quits.
func Run(game *gamedata.Game, tag language.Tag) error {
	if !IsTTY() {
		return fmt.Errorf("birds play needs an interactive terminal")
	}
	p := tea.NewProgram(New(game, tag, os.Stderr), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
