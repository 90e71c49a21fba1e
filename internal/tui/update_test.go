package tui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oops/internal/model"
)

var candidates = []model.CorrectedCommand{
	{Script: "git push", RuleName: "git_push", Priority: 1000},
	{Script: "git pull", RuleName: "git_not_command", Priority: 2000},
	{Script: "git status", RuleName: "no_command", Priority: 3000},
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Selector, msgs ...tea.KeyMsg) Selector {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Selector)
	}
	return m
}

func TestSelectorNavigation(t *testing.T) {
	tests := []struct {
		name   string
		keys   []tea.KeyMsg
		cursor int
	}{
		{"start", nil, 0},
		{"down", []tea.KeyMsg{{Type: tea.KeyDown}}, 1},
		{"j twice", []tea.KeyMsg{runes("j"), runes("j")}, 2},
		{"ctrl+n", []tea.KeyMsg{{Type: tea.KeyCtrlN}}, 1},
		{"down wraps", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyDown}, {Type: tea.KeyDown}}, 0},
		{"up wraps", []tea.KeyMsg{{Type: tea.KeyUp}}, 2},
		{"k", []tea.KeyMsg{runes("k")}, 2},
		{"ctrl+p", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyCtrlP}}, 0},
		{"unbound key", []tea.KeyMsg{runes("x")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, NewSelector(candidates, true), tt.keys...)
			assert.Equal(t, tt.cursor, m.Cursor)
			assert.False(t, m.Done)
		})
	}
}

func TestSelectorSelect(t *testing.T) {
	for _, k := range []tea.KeyMsg{{Type: tea.KeyEnter}, {Type: tea.KeySpace, Runes: []rune{' '}}} {
		m := NewSelector(candidates, true)
		m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
		next, cmd := m.Update(k)
		m = next.(Selector)

		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		choice, ok := m.Choice()
		require.True(t, ok, "key %q", k.String())
		assert.Equal(t, "git pull", choice.Script)
	}
}

func TestSelectorAbort(t *testing.T) {
	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, runes("q"), {Type: tea.KeyCtrlC}} {
		m := NewSelector(candidates, true)
		next, cmd := m.Update(k)
		m = next.(Selector)

		require.NotNil(t, cmd)
		assert.True(t, m.Aborted, "key %q", k.String())
		_, ok := m.Choice()
		assert.False(t, ok)
	}
}

func TestSelectorView(t *testing.T) {
	m := NewSelector(candidates, true)
	view := m.View()
	lines := strings.Split(view, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, model.IconCursor+" 1. git push [git_push]", lines[0])
	assert.Equal(t, model.IconBlank+" 2. git pull [git_not_command]", lines[1])
	assert.Contains(t, view, "abort")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, model.IconSelected+" git push\n", m.View())

	m = press(t, NewSelector(candidates, true), tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, model.IconAborted+" aborted\n", m.View())
}

func TestSelectEmpty(t *testing.T) {
	_, err := Select(nil, Options{NoColors: true})
	assert.ErrorIs(t, err, ErrAborted)
}

func TestSelectProgram(t *testing.T) {
	var out bytes.Buffer
	choice, err := Select(candidates, Options{
		NoColors: true,
		Input:    strings.NewReader("j\r"),
		Output:   &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "git pull", choice.Script)
}
