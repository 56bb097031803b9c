package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(16)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const maxListedViolations = 10

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// render formats res; styled output is only used for terminals.
func render(cfg config, res result, styled bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	b.WriteString(style(titleStyle, "scope stress"))
	b.WriteString("\n\n")

	row := func(label string, value any) {
		b.WriteString(style(labelStyle, fmt.Sprintf("%-16s", label)))
		fmt.Fprintf(&b, "%v\n", value)
	}
	row("producers", cfg.producers)
	row("drainers", cfg.drainers)
	row("resources", cfg.total())
	row("elapsed", res.elapsed.Round(1e6))
	row("added", res.stats.Added)
	row("removed", res.stats.Removed)
	row("released", res.stats.Released)
	row("drains", res.stats.Drains)
	row("skipped drains", res.stats.SkippedDrains)
	row("failures", res.stats.Failures)
	b.WriteString("\n")

	if len(res.violations) == 0 {
		b.WriteString(style(okStyle, "every resource released exactly once"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(style(errorStyle, fmt.Sprintf("%d release violations", len(res.violations))))
	b.WriteString("\n")
	for i, v := range res.violations {
		if i == maxListedViolations {
			b.WriteString(style(helpStyle, fmt.Sprintf("  ... and %d more", len(res.violations)-i)))
			b.WriteString("\n")
			break
		}
		b.WriteString("  ")
		b.WriteString(v.String())
		b.WriteString("\n")
	}
	return b.String()
}

func report(w io.Writer, cfg config, res result, styled bool) {
	fmt.Fprint(w, render(cfg, res, styled))
}
