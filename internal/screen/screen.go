// Package screen holds the bubbletea screens gaiacommit shows while it runs:
// the staged-file picker, yes/no prompts and the generated message box.
package screen

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Screen represents a modal screen that can handle input and render itself.
type Screen interface {
	// Update processes a key message and returns the updated screen and any command.
	// Returning nil for the Screen signals that this screen should be closed.
	Update(msg tea.KeyMsg) (Screen, tea.Cmd)

	// View renders the screen's content.
	View() string

	// Type returns the screen's type identifier.
	Type() Type
}

// Resizable screens are told about terminal size changes.
type Resizable interface {
	Resize(width, height int)
}

// Type identifies the kind of screen being displayed.
type Type int

// Screen type constants.
const (
	TypeNone Type = iota
	TypeConfirm
	TypeFileSelect
)

// String returns a human-readable name for the screen type.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeConfirm:
		return "confirm"
	case TypeFileSelect:
		return "file-select"
	default:
		return "unknown"
	}
}

// Host runs a single Screen as a bubbletea program and quits once the
// screen closes itself.
type Host struct {
	screen Screen
	closed bool
}

// NewHost wraps scr.
func NewHost(scr Screen) *Host {
	return &Host{screen: scr}
}

// Init implements tea.Model.
func (h *Host) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (h *Host) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if r, ok := h.screen.(Resizable); ok {
			r.Resize(msg.Width, msg.Height)
		}
		return h, nil
	case tea.KeyMsg:
		next, cmd := h.screen.Update(msg)
		if next == nil {
			h.closed = true
			return h, tea.Sequence(cmd, tea.Quit)
		}
		h.screen = next
		return h, cmd
	}
	return h, nil
}

// View implements tea.Model.
func (h *Host) View() string {
	if h.closed {
		return ""
	}
	return h.screen.View()
}

// Closed reports whether the screen closed itself.
func (h *Host) Closed() bool { return h.closed }

// Run shows scr until it closes or ctx is cancelled.
func Run(ctx context.Context, scr Screen, in io.Reader, out io.Writer) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(out)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	_, err := tea.NewProgram(NewHost(scr), opts...).Run()
	return err
}
