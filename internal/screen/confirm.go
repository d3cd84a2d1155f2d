package screen

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chmouel/gaiacommit/internal/theme"
)

// Key constants for navigation.
const (
	keyEnter    = "enter"
	keyEsc      = "esc"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyCtrlC    = "ctrl+c"
)

// Button indexes of a ConfirmScreen.
const (
	ButtonYes = 0
	ButtonNo  = 1
)

// ConfirmScreen asks a yes/no question.
type ConfirmScreen struct {
	Question       string
	SelectedButton int
	Thm            *theme.Theme

	OnConfirm func() tea.Cmd
	OnDecline func() tea.Cmd
	// OnAbort runs on Esc or Ctrl+C; OnDecline runs when it is nil.
	OnAbort func() tea.Cmd
}

// NewConfirmScreen creates a prompt with defaultButton focused.
func NewConfirmScreen(question string, defaultButton int, thm *theme.Theme) *ConfirmScreen {
	if defaultButton != ButtonNo {
		defaultButton = ButtonYes
	}
	return &ConfirmScreen{
		Question:       question,
		SelectedButton: defaultButton,
		Thm:            thm,
	}
}

// Type returns the screen type.
func (s *ConfirmScreen) Type() Type {
	return TypeConfirm
}

func run(fn func() tea.Cmd) tea.Cmd {
	if fn == nil {
		return nil
	}
	return fn()
}

// Update processes keyboard events. Returns nil once an answer is given.
func (s *ConfirmScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	switch msg.String() {
	case keyTab, "right", "l", keyShiftTab, "left", "h":
		s.SelectedButton = 1 - s.SelectedButton
	case "y", "Y":
		return nil, run(s.OnConfirm)
	case "n", "N":
		return nil, run(s.OnDecline)
	case keyEnter:
		if s.SelectedButton == ButtonYes {
			return nil, run(s.OnConfirm)
		}
		return nil, run(s.OnDecline)
	case keyEsc, keyCtrlC, "q":
		if s.OnAbort != nil {
			return nil, s.OnAbort()
		}
		return nil, run(s.OnDecline)
	}
	return s, nil
}

// View renders the question with the focused button highlighted.
func (s *ConfirmScreen) View() string {
	width := 50

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Padding(1, 2).
		Width(width)

	questionStyle := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Center).
		Foreground(s.Thm.TextFg).
		Bold(true)

	button := lipgloss.NewStyle().
		Width((width - 6) / 2).
		Align(lipgloss.Center)
	focused := button.
		Foreground(s.Thm.AccentFg).
		Background(s.Thm.Accent).
		Bold(true)
	unfocused := button.Foreground(s.Thm.MutedFg)

	yes, no := unfocused.Render("[Yes]"), unfocused.Render("[No]")
	if s.SelectedButton == ButtonYes {
		yes = focused.Render("[Yes]")
	} else {
		no = focused.Render("[No]")
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		questionStyle.Render(s.Question),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, yes, "  ", no),
	))
}
