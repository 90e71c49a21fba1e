package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"oops/internal/model"
)

type styles struct {
	cursor  lipgloss.Style
	current lipgloss.Style
	normal  lipgloss.Style
	rule    lipgloss.Style
	help    lipgloss.Style
	done    lipgloss.Style
	aborted lipgloss.Style
}

func newStyles(noColors bool) styles {
	if noColors {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		cursor:  lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		current: lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		normal:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		rule:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		help:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		done:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		aborted: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func (m Selector) View() string {
	if m.Done {
		if choice, ok := m.Choice(); ok {
			return m.styles.done.Render(model.IconSelected) + " " + choice.Script + "\n"
		}
		return m.styles.aborted.Render(model.IconAborted) + " aborted\n"
	}

	var b strings.Builder
	for i, c := range m.Candidates {
		marker := model.IconBlank
		script := m.styles.normal.Render(c.Script)
		if i == m.Cursor {
			marker = m.styles.cursor.Render(model.IconCursor)
			script = m.styles.current.Render(c.Script)
		}
		fmt.Fprintf(&b, "%s %d. %s %s\n", marker, i+1, script, m.styles.rule.Render("["+c.RuleName+"]"))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
