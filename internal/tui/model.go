package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"oops/internal/model"
)

// keyMap lists the selector's bindings.
type keyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Select key.Binding
	Abort  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Prev, k.Next, k.Abort}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Prev: key.NewBinding(
		key.WithKeys("up", "k", "ctrl+p"),
		key.WithHelp("↑/k", "previous"),
	),
	Next: key.NewBinding(
		key.WithKeys("down", "j", "ctrl+n"),
		key.WithHelp("↓/j", "next"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "run"),
	),
	Abort: key.NewBinding(
		key.WithKeys("esc", "q", "ctrl+c"),
		key.WithHelp("esc", "abort"),
	),
}

// Selector lets the user pick one of the corrected commands.
type Selector struct {
	// Data
	Candidates []model.CorrectedCommand

	// UI State
	Cursor  int
	Done    bool
	Aborted bool

	keys   keyMap
	help   help.Model
	styles styles
}

// NewSelector returns a selector positioned on the first candidate.
func NewSelector(candidates []model.CorrectedCommand, noColors bool) Selector {
	h := help.New()
	st := newStyles(noColors)
	h.Styles.ShortKey = st.help
	h.Styles.ShortDesc = st.help
	h.Styles.ShortSeparator = st.help
	return Selector{
		Candidates: candidates,
		keys:       defaultKeys,
		help:       h,
		styles:     st,
	}
}

func (m Selector) Init() tea.Cmd {
	return nil
}

// Choice returns the selected candidate once the user confirmed one.
func (m Selector) Choice() (model.CorrectedCommand, bool) {
	if !m.Done || m.Aborted || len(m.Candidates) == 0 {
		return model.CorrectedCommand{}, false
	}
	return m.Candidates[m.Cursor], true
}
