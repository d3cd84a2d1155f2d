package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/chmouel/gaiacommit/internal/theme"
)

// SelectionItem is one staged file offered to the user.
type SelectionItem struct {
	ID          string // repository path
	Label       string
	Description string
}

// FileSelectScreen lets the user pick one staged file, with an optional
// preview of its diff under the list.
type FileSelectScreen struct {
	Items    []SelectionItem
	Filtered []SelectionItem

	FilterInput  textinput.Model
	FilterActive bool
	Cursor       int
	ScrollOffset int
	Width        int
	Height       int
	Title        string
	Thm          *theme.Theme

	// Preview returns the rendered preview for an item; nil disables it.
	Preview      func(SelectionItem) string
	PreviewLines int
	previews     map[string]string

	OnSelect func(SelectionItem) tea.Cmd
	OnCancel func() tea.Cmd
}

// NewFileSelectScreen builds a picker over items sized for a width x height terminal.
func NewFileSelectScreen(items []SelectionItem, title string, width, height int, thm *theme.Theme) *FileSelectScreen {
	ti := textinput.New()
	ti.Placeholder = "Filter files..."
	ti.CharLimit = 200
	ti.Prompt = "> "
	ti.Blur()

	cursor := 0
	if len(items) == 0 {
		cursor = -1
	}

	scr := &FileSelectScreen{
		Items:       items,
		Filtered:    items,
		FilterInput: ti,
		Cursor:      cursor,
		Title:       title,
		Thm:         thm,
		previews:    map[string]string{},
	}
	scr.Resize(width, height)
	return scr
}

// Type returns the screen type.
func (s *FileSelectScreen) Type() Type {
	return TypeFileSelect
}

// Resize fits the screen to 90% of the terminal.
func (s *FileSelectScreen) Resize(width, height int) {
	s.Width = max(int(float64(width)*0.9), 60)
	s.Height = max(int(float64(height)*0.9), 12)
	s.FilterInput.Width = s.Width - 6
}

// Update handles keyboard input and returns nil once a file is chosen or the
// picker is cancelled.
func (s *FileSelectScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	keyStr := msg.String()

	switch keyStr {
	case keyEnter:
		if item, ok := s.Selected(); ok && s.OnSelect != nil {
			return nil, s.OnSelect(item)
		}
		if len(s.Filtered) == 0 {
			return s, nil
		}
		return nil, nil
	case keyCtrlC:
		return nil, run(s.OnCancel)
	case keyEsc:
		if s.FilterActive {
			s.FilterActive = false
			s.FilterInput.Blur()
			return s, nil
		}
		return nil, run(s.OnCancel)
	case "up", "ctrl+k":
		s.move(-1)
		return s, nil
	case "down", "ctrl+j":
		s.move(1)
		return s, nil
	}

	if !s.FilterActive {
		switch keyStr {
		case "f", "/":
			s.FilterActive = true
			s.FilterInput.Focus()
			return s, textinput.Blink
		case "k":
			s.move(-1)
		case "j":
			s.move(1)
		case "q":
			return nil, run(s.OnCancel)
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.FilterInput, cmd = s.FilterInput.Update(msg)
	s.applyFilter()
	return s, cmd
}

func (s *FileSelectScreen) move(delta int) {
	next := s.Cursor + delta
	if next < 0 || next >= len(s.Filtered) {
		return
	}
	s.Cursor = next
	maxVisible := s.maxVisible()
	if s.Cursor < s.ScrollOffset {
		s.ScrollOffset = s.Cursor
	}
	if s.Cursor >= s.ScrollOffset+maxVisible {
		s.ScrollOffset = s.Cursor - maxVisible + 1
	}
}

// View renders the list, the filter when active and the preview.
func (s *FileSelectScreen) View() string {
	inner := s.Width - 2

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Width(s.Width)

	titleView := lipgloss.NewStyle().
		Foreground(s.Thm.Accent).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(s.Thm.Border).
		Width(inner).
		Padding(0, 1).
		Render(fmt.Sprintf("%s (%d/%d)", s.Title, len(s.Filtered), len(s.Items)))

	itemStyle := lipgloss.NewStyle().Padding(0, 1).Width(inner)
	selectedStyle := itemStyle.
		Background(s.Thm.Accent).
		Foreground(s.Thm.AccentFg).
		Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(s.Thm.MutedFg)
	mutedStyle := lipgloss.NewStyle().Padding(0, 1).Width(inner).Foreground(s.Thm.MutedFg)

	maxVisible := s.maxVisible()
	end := min(s.ScrollOffset+maxVisible, len(s.Filtered))
	start := min(s.ScrollOffset, end)

	itemViews := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		item := s.Filtered[i]
		label := item.Label
		if item.Description != "" {
			label = fmt.Sprintf("%s  %s", label, descStyle.Render(item.Description))
		}
		if i == s.Cursor {
			itemViews = append(itemViews, selectedStyle.Render(ansi.Strip(label)))
		} else {
			itemViews = append(itemViews, itemStyle.Render(label))
		}
	}
	if len(s.Filtered) == 0 {
		itemViews = append(itemViews, mutedStyle.Italic(true).Render("No staged file matches."))
	}

	lines := []string{titleView}
	if s.FilterActive {
		lines = append(lines, lipgloss.NewStyle().Padding(0, 1).Width(inner).Render(s.FilterInput.View()))
	}
	lines = append(lines, strings.Join(itemViews, "\n"))

	if preview := s.previewFor(); preview != "" {
		lines = append(lines,
			lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), true, false, false, false).
				BorderForeground(s.Thm.Border).
				Width(inner).
				Padding(0, 1).
				Render(clipLines(preview, inner-2)))
	}

	footer := "j/k to move • f to filter • Enter to select • Esc to cancel"
	if s.FilterActive {
		footer = "Esc to stop filtering • Enter to select"
	}
	lines = append(lines, mutedStyle.Align(lipgloss.Right).Render(footer))

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Selected returns the currently selected item, if any.
func (s *FileSelectScreen) Selected() (SelectionItem, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Filtered) {
		return SelectionItem{}, false
	}
	return s.Filtered[s.Cursor], true
}

func (s *FileSelectScreen) previewFor() string {
	if s.Preview == nil {
		return ""
	}
	item, ok := s.Selected()
	if !ok {
		return ""
	}
	if cached, ok := s.previews[item.ID]; ok {
		return cached
	}
	rendered := s.Preview(item)
	s.previews[item.ID] = rendered
	return rendered
}

func (s *FileSelectScreen) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(s.FilterInput.Value()))
	if query == "" {
		s.Filtered = s.Items
	} else {
		s.Filtered = []SelectionItem{}
		for _, item := range s.Items {
			if strings.Contains(strings.ToLower(item.ID), query) ||
				strings.Contains(strings.ToLower(item.Description), query) {
				s.Filtered = append(s.Filtered, item)
			}
		}
	}

	if len(s.Filtered) == 0 {
		s.Cursor = -1
	} else if s.Cursor >= len(s.Filtered) || s.Cursor < 0 {
		s.Cursor = 0
	}
	s.ScrollOffset = 0
}

// maxVisible is the number of list rows left once chrome and preview are drawn.
func (s *FileSelectScreen) maxVisible() int {
	rows := s.Height - 4
	if s.FilterActive {
		rows--
	}
	if s.Preview != nil {
		rows -= s.PreviewLines + 1
	}
	return max(rows, 3)
}

// clipLines truncates every line of text to width cells.
func clipLines(text string, width int) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "…")
	}
	return strings.Join(lines, "\n")
}
