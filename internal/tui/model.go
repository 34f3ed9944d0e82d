// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keydrill/internal/model"
	"github.com/verte-zerg/keydrill/internal/session"
	"github.com/verte-zerg/keydrill/internal/stats"
	"github.com/verte-zerg/keydrill/internal/store"
)

const tickInterval = 250 * time.Millisecond

type tickMsg time.Time

// Model implements the Bubble Tea typing UI around a session controller.
type Model struct {
	ctrl *session.Controller
	st   *store.Store // nil disables persistence

	width  int
	height int

	saved    bool
	quitting bool
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	correctedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E8A33D"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	skippedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Copy().Underline(true)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	resultTitleStyle = lipgloss.NewStyle().Bold(true)
)

// NewModel starts the controller and wraps it for Bubble Tea.
func NewModel(ctrl *session.Controller, st *store.Store) (*Model, error) {
	if err := ctrl.Start(); err != nil {
		return nil, err
	}
	return &Model{ctrl: ctrl, st: st}, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.ctrl.State() != session.StateRunning {
			return m, nil
		}
		if err := m.ctrl.Tick(); err != nil {
			logErrf("tick failed: %v\n", err)
		}
		m.maybePersist()
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	}

	if m.ctrl.State() == session.StateFinished {
		switch {
		case msg.Type == tea.KeyEnter:
			return m.restart()
		case msg.String() == "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		m.deliver(func() error { return m.ctrl.OnBackspace() })
	case tea.KeySpace:
		m.deliver(func() error { return m.ctrl.OnChar(' ') })
	case tea.KeyEnter:
		if m.ctrl.Mode() == model.ModeCode {
			m.deliver(func() error { return m.ctrl.OnChar('\n') })
		}
	case tea.KeyTab:
		if m.ctrl.Mode() == model.ModeCode {
			m.deliver(func() error { return m.ctrl.OnChar('\t') })
		}
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			// A pasted batch can finish the session mid-way; the rest
			// of the runes are not misuse, just late.
			if m.ctrl.State() != session.StateRunning {
				break
			}
			m.deliver(func() error { return m.ctrl.OnChar(r) })
		}
	}
	return m, nil
}

func (m *Model) deliver(fn func() error) {
	if err := fn(); err != nil {
		logErrf("keystroke dropped: %v\n", err)
		return
	}
	m.maybePersist()
}

func (m *Model) restart() (tea.Model, tea.Cmd) {
	if err := m.ctrl.Reset(); err != nil {
		logErrf("reset failed: %v\n", err)
		return m, nil
	}
	if err := m.ctrl.Start(); err != nil {
		logErrf("restart failed: %v\n", err)
		m.quitting = true
		return m, tea.Quit
	}
	m.saved = false
	return m, tick()
}

func (m *Model) maybePersist() {
	if m.saved || m.ctrl.State() != session.StateFinished {
		return
	}
	m.saved = true
	if m.st == nil {
		return
	}
	rec, ok := m.ctrl.Record()
	if !ok {
		return
	}
	ctx := context.Background()
	if _, err := m.st.InsertSession(ctx, rec, m.ctrl.Series(), m.ctrl.KeyStats()); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.ctrl.Snapshot()
	if len(snap.Target) == 0 {
		return ""
	}
	if snap.Finished {
		return m.viewResults(snap)
	}
	return m.viewTyping(snap)
}

func (m *Model) viewTyping(snap model.SessionSnapshot) string {
	cursor := snap.Cursor
	if cursor >= len(snap.Target) {
		cursor = -1
	}
	styledRunes := buildStyledRunes(snap.Target, snap.States, cursor)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(styledRunes)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapStyledRunes(styledRunes, contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	status := statusStyle.Render(renderStatus(snap))
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	statusLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, status)
	return body + "\n" + statusLine
}

func (m *Model) viewResults(snap model.SessionSnapshot) string {
	rec, ok := m.ctrl.Record()
	if !ok {
		return ""
	}
	lines := []string{
		resultTitleStyle.Render("Session complete"),
		"",
		fmt.Sprintf("WPM       %.1f", rec.FinalWPM),
		fmt.Sprintf("Avg WPM   %.1f", rec.AvgWPM),
		fmt.Sprintf("Peak WPM  %.1f", rec.PeakWPM),
		fmt.Sprintf("Accuracy  %.1f%%", rec.Accuracy*100),
		fmt.Sprintf("Correct   %d", rec.CorrectChars),
		fmt.Sprintf("Errors    %d", rec.WrongAttempts),
		fmt.Sprintf("Time      %s", rec.Elapsed.Round(time.Second)),
	}
	if spark := stats.Sparkline(m.ctrl.WPMSeries()); spark != "" {
		lines = append(lines, "", "WPM "+statusStyle.Render(spark))
	}
	lines = append(lines, keyHighlightLines(m.ctrl.KeyStats())...)
	lines = append(lines, "", statusStyle.Render("enter: again · q: quit"))
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func renderStatus(snap model.SessionSnapshot) string {
	segments := []string{
		fmt.Sprintf("%s left", snap.Remaining.Round(time.Second)),
		fmt.Sprintf("%.1f WPM", snap.WPM),
		fmt.Sprintf("%.1f%%", snap.Accuracy*100),
	}
	return strings.Join(segments, "  ")
}

// keyHighlightLines summarizes the session's best and worst keys for
// the results screen.
func keyHighlightLines(keys []model.KeyStat) []string {
	var lines []string
	if fastest := stats.RankFastestKeys(keys, 3); len(fastest) > 0 {
		lines = append(lines, "", "Fastest   "+renderKeyLatencies(fastest))
	}
	if slowest := stats.RankSlowestKeys(keys, 3); len(slowest) > 0 {
		lines = append(lines, "Slowest   "+renderKeyLatencies(slowest))
	}
	if erring := stats.RankErrorProneKeys(keys, 3); len(erring) > 0 {
		parts := make([]string, 0, len(erring))
		for _, k := range erring {
			parts = append(parts, fmt.Sprintf("%s ×%d", displayKey(k.Char), k.Errors))
		}
		lines = append(lines, "Missed    "+strings.Join(parts, "  "))
	}
	return lines
}

func renderKeyLatencies(keys []model.KeyStat) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %.0fms", displayKey(k.Char), k.AvgLatencyMs()))
	}
	return strings.Join(parts, "  ")
}

// displayKey makes whitespace keys visible in ranking lines.
func displayKey(char string) string {
	switch char {
	case " ":
		return "␣"
	case "\n":
		return "↵"
	case "\t":
		return "⇥"
	default:
		return char
	}
}

// errOut receives best-effort diagnostics without disturbing the
// alternate screen.
var errOut io.Writer = os.Stderr

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(errOut, format, args...); err != nil {
		// Best-effort logging.
		_ = err
	}
}
