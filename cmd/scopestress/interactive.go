package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/dispose/scope"
)

const refreshInterval = 100 * time.Millisecond

var statStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#98FB98"))

type stressModel struct {
	ctx      context.Context
	err      error
	cancel   context.CancelFunc
	w        *workload
	res      result
	stats    scope.Stats
	spinner  spinner.Model
	bar      progress.Model
	percent  float64
	done     bool
	stopping bool
}

type tickMsg time.Time

type doneMsg struct {
	err error
	res result
}

func newStressModel(ctx context.Context, w *workload) *stressModel {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statStyle
	return &stressModel{
		ctx:     ctx,
		cancel:  cancel,
		w:       w,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *stressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runWorkload, tick())
}

func (m *stressModel) runWorkload() tea.Msg {
	res, err := m.w.run(m.ctx)
	return doneMsg{res: res, err: err}
}

func (m *stressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.done {
				return m, tea.Quit
			}
			// the workload returns promptly once cancelled; quit on doneMsg
			m.stopping = true
			m.cancel()
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, 80)

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.percent = m.w.progress()
		m.stats = m.w.scope.Stats()
		return m, tick()

	case doneMsg:
		m.done = true
		m.res, m.err = msg.res, msg.err
		m.percent = 1
		m.stats = m.w.scope.Stats()
		m.cancel()
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *stressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("scope stress"))
	fmt.Fprintf(&b, " %d producers, %d drainers\n\n", m.w.cfg.producers, m.w.cfg.drainers)

	if !m.done {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
	}
	b.WriteString(m.bar.ViewAs(m.percent))
	b.WriteString("\n\n")

	stat := func(label string, v int64) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(statStyle.Render(fmt.Sprint(v)))
		b.WriteString("\n")
	}
	stat("added", m.stats.Added)
	stat("removed", m.stats.Removed)
	stat("released", m.stats.Released)
	stat("drains", m.stats.Drains)
	stat("skipped drains", m.stats.SkippedDrains)
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.stopping:
		b.WriteString(helpStyle.Render("stopping..."))
	default:
		b.WriteString(helpStyle.Render("q quit"))
	}
	b.WriteString("\n")
	return b.String()
}

// runInteractive runs w under a progress view and returns its result once
// the workload finishes or is cancelled.
func runInteractive(ctx context.Context, w *workload) (result, error) {
	m := newStressModel(ctx, w)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return result{}, err
	}
	fm := final.(*stressModel)
	return fm.res, fm.err
}
