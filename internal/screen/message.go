package screen

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/chmouel/gaiacommit/internal/theme"
)

// RenderMessage draws a commit message in a titled box no wider than width.
// The subject line is bold; body lines are word-wrapped.
func RenderMessage(title, message string, width int, thm *theme.Theme) string {
	width = max(width, 30)
	inner := width - 4

	subject, body, _ := strings.Cut(message, "\n")

	subjectView := lipgloss.NewStyle().
		Foreground(thm.Accent).
		Bold(true).
		Render(wrapText(subject, inner))

	parts := []string{
		lipgloss.NewStyle().Foreground(thm.MutedFg).Render(title),
		"",
		subjectView,
	}
	if body = strings.TrimSpace(body); body != "" {
		parts = append(parts, "", lipgloss.NewStyle().Foreground(thm.TextFg).Render(wrapText(body, inner)))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(thm.Border).
		Padding(0, 1).
		Width(width - 2).
		Render(strings.Join(parts, "\n"))
}

// wrapText word-wraps s at width and hard-wraps words longer than that.
func wrapText(s string, width int) string {
	return wrap.String(wordwrap.String(s, width), width)
}
