package components

import (
	"fmt"
	"unicode/utf8"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cbseprep/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with app styling and an optional
// character counter.
type TextInput struct {
	Model       textinput.Model
	ShowCounter bool
}

// NewTextInput creates a focused text input. A limit of 0 means unlimited.
func NewTextInput(placeholder string, limit int, showCounter bool) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()

	return TextInput{
		Model:       ti,
		ShowCounter: showCounter && limit > 0,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// SetWidth sets the visible width of the field.
func (t *TextInput) SetWidth(w int) {
	if w > 0 {
		t.Model.SetWidth(w)
	}
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.ShowCounter {
		n := utf8.RuneCountInString(t.Model.Value())
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if n >= t.Model.CharLimit {
			style = style.Foreground(theme.Accent)
		}
		view += "  " + style.Render(fmt.Sprintf("%d/%d", n, t.Model.CharLimit))
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// Reset clears the input.
func (t *TextInput) Reset() {
	t.Model.Reset()
}
