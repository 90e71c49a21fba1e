package tui

import (
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"oops/internal/model"
)

// Update handles key presses. Moving past either end wraps around.
func (m Selector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if len(m.Candidates) == 0 {
			m.Done, m.Aborted = true, true
			return m, tea.Quit
		}
		switch {
		case key.Matches(msg, m.keys.Abort):
			m.Done, m.Aborted = true, true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Select):
			m.Done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			m.Cursor = (m.Cursor - 1 + len(m.Candidates)) % len(m.Candidates)
		case key.Matches(msg, m.keys.Next):
			m.Cursor = (m.Cursor + 1) % len(m.Candidates)
		}
	}
	return m, nil
}

// ErrAborted is returned by Select when the user dismissed the list.
var ErrAborted = errors.New("aborted")

// Options configure Select.
type Options struct {
	NoColors bool
	// Input and Output default to the program's terminal.
	Input  io.Reader
	Output io.Writer
}

// Select shows the candidates and blocks until the user picks one or
// aborts.
func Select(candidates []model.CorrectedCommand, opts Options) (model.CorrectedCommand, error) {
	if len(candidates) == 0 {
		return model.CorrectedCommand{}, ErrAborted
	}

	var progOpts []tea.ProgramOption
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	final, err := tea.NewProgram(NewSelector(candidates, opts.NoColors), progOpts...).Run()
	if err != nil {
		return model.CorrectedCommand{}, err
	}
	choice, ok := final.(Selector).Choice()
	if !ok {
		return model.CorrectedCommand{}, ErrAborted
	}
	return choice, nil
}
