// Package ui is a terminal demo that drives a live progress toast: the
// progress engine advances, every step is pushed to the toast through
// Update, and the toast's callbacks are logged as they arrive.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ezchuang/gotoast/internal/core"
	"github.com/ezchuang/gotoast/toast"
	"github.com/ezchuang/gotoast/toaster"
)

const maxEvents = 6

type Model struct {
	engine  *core.Engine
	toaster toaster.Toaster

	// mu guards toast, which toaster commands mutate off the UI goroutine.
	mu    sync.Mutex
	toast *toast.Toast

	advances chan core.State
	events   chan string

	xml      string
	showXML  bool
	shownAt  time.Time
	log      []logLine
	lastErr  error
	width    int
	height   int
	progress progress.Model
}

type logLine struct {
	at   time.Time
	text string
}

// NewModel prepares a demo around t. t needs a progress bar; one is added
// when missing.
func NewModel(engine *core.Engine, tr toaster.Toaster, t *toast.Toast) *Model {
	m := &Model{
		engine:   engine,
		toaster:  tr,
		toast:    t,
		advances: make(chan core.State, 8),
		events:   make(chan string, 8),
		progress: progress.New(progress.WithDefaultGradient()),
	}
	if t.ProgressBar == nil {
		t.ProgressBar = &toast.ProgressBar{}
	}
	t.OnActivated = func(a toast.Activated) {
		m.events <- fmt.Sprintf("activated: %q %v", a.Arguments, a.Inputs)
	}
	t.OnDismissed = func(d toast.Dismissed) {
		m.events <- "dismissed: " + d.Reason.String()
	}
	t.OnFailed = func(f toast.Failed) {
		m.events <- fmt.Sprintf("failed: code %d", f.ErrorCode)
	}
	engine.SetOnAdvance(func(st core.State) {
		m.advances <- st
	})
	return m
}

func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type (
	tickMsg    time.Time
	advanceMsg core.State
	eventMsg   string
	// toastMsg reports a finished toaster call.
	toastMsg struct {
		op  string
		xml string
		err error
	}
)

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) waitAdvance() tea.Cmd {
	return func() tea.Msg { return advanceMsg(<-m.advances) }
}

func (m *Model) waitEvent() tea.Cmd {
	return func() tea.Msg { return eventMsg(<-m.events) }
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitAdvance(), m.waitEvent())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.engine.Stop()
			return m, tea.Quit
		case "s":
			switch m.engine.State().Phase {
			case core.PhaseIdle, core.PhaseDone:
				m.engine.Start()
				return m, m.show()
			case core.PhasePaused:
				m.engine.Resume()
			}
		case "p":
			m.engine.Pause()
		case "r":
			m.engine.Stop()
			return m, m.remove()
		case "c":
			return m, m.clear()
		case "x":
			m.showXML = !m.showXML
		}

	case advanceMsg:
		st := core.State(msg)
		cmds := []tea.Cmd{m.waitAdvance()}
		if st.Phase != core.PhaseIdle {
			cmds = append(cmds, m.update(st))
		}
		return m, tea.Batch(cmds...)

	case eventMsg:
		m.addLog(string(msg))
		return m, m.waitEvent()

	case toastMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			m.addLog(msg.op + " failed")
		} else {
			m.lastErr = nil
			m.addLog(msg.op)
		}
		if msg.xml != "" {
			m.xml = msg.xml
			m.shownAt = time.Now()
		}

	case tickMsg:
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m *Model) show() tea.Cmd {
	return func() tea.Msg {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.toast.ProgressBar.Progress = toast.Percent(0)
		m.toast.ProgressBar.Status = "Starting"
		xml, err := m.toaster.BuildDocument(m.toast, true).XML()
		if err != nil {
			return toastMsg{op: "build", err: err}
		}
		return toastMsg{op: "shown", xml: xml, err: m.toaster.Show(context.Background(), m.toast)}
	}
}

func (m *Model) update(st core.State) tea.Cmd {
	return func() tea.Msg {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.toast.ProgressBar.Progress = toast.Percent(st.Fraction())
		m.toast.ProgressBar.Status = fmt.Sprintf("Step %d of %d", st.Step, st.Steps)
		if st.Phase == core.PhaseDone {
			m.toast.ProgressBar.Status = "Done"
		}
		ok, err := m.toaster.Update(context.Background(), m.toast)
		if err == nil && !ok {
			return toastMsg{op: "update not applied (toast gone)"}
		}
		return toastMsg{op: fmt.Sprintf("updated to %.0f%%", st.Fraction()*100), err: err}
	}
}

func (m *Model) remove() tea.Cmd {
	return func() tea.Msg {
		m.mu.Lock()
		defer m.mu.Unlock()
		return toastMsg{op: "removed", err: m.toaster.Remove(context.Background(), m.toast)}
	}
}

func (m *Model) clear() tea.Cmd {
	return func() tea.Msg {
		return toastMsg{op: "cleared", err: m.toaster.Clear(context.Background())}
	}
}

func (m *Model) addLog(text string) {
	m.log = append(m.log, logLine{at: time.Now(), text: text})
	if len(m.log) > maxEvents {
		m.log = m.log[len(m.log)-maxEvents:]
	}
}

func (m *Model) View() string {
	st := m.engine.State()
	remain := m.engine.Remaining().Truncate(time.Second)

	title := lipgloss.NewStyle().Bold(true).Underline(true).Render("gotoast demo")
	phase := lipgloss.NewStyle().Bold(true).Render(st.Phase.String())

	shown := "never"
	if !m.shownAt.IsZero() {
		shown = humanize.Time(m.shownAt)
	}
	info := fmt.Sprintf("Remaining: %s\nStep: %d/%d\nShown: %s\nApp: %s\n",
		remain, st.Step, st.Steps, shown, m.toaster.AppID())

	bar := m.progress.ViewAs(st.Fraction())

	var events strings.Builder
	for _, l := range m.log {
		fmt.Fprintf(&events, "%s  %s\n", lipgloss.NewStyle().Faint(true).Render(humanize.Time(l.at)), l.text)
	}
	if m.lastErr != nil {
		events.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(m.lastErr.Error()))
	}

	help := lipgloss.NewStyle().Faint(true).Render("[s] show/resume  [p] pause  [r] remove  [c] clear  [x] xml  [q] quit")

	body := fmt.Sprintf("%s\n\nPhase: %s\n%s\n%s\n\n%s\n%s", title, phase, info, bar, events.String(), help)
	if m.showXML && m.xml != "" {
		body += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render(m.xml)
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2).
		Width(max(32, m.width-4)).
		Render(body)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
