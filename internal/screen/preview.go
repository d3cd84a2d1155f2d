package screen

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/chmouel/gaiacommit/internal/theme"
)

// HighlightDiff colours a unified diff: headers are muted, +/- markers take
// the theme's success/error colours and code is highlighted with the lexer
// matching the file being diffed. At most maxLines lines are kept when
// maxLines > 0.
func HighlightDiff(diff string, thm *theme.Theme, maxLines int) string {
	if diff == "" {
		return ""
	}

	style := styles.Get(thm.Chroma)
	if style == nil {
		style = styles.Fallback
	}
	header := lipgloss.NewStyle().Foreground(thm.MutedFg)
	hunk := lipgloss.NewStyle().Foreground(thm.Cyan)
	added := lipgloss.NewStyle().Foreground(thm.SuccessFg)
	removed := lipgloss.NewStyle().Foreground(thm.ErrorFg)

	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	truncated := false
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		truncated = true
	}

	var lexer chroma.Lexer
	out := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		if p, ok := diffPath(line); ok {
			lexer = lexerForPath(p)
			out = append(out, header.Render(line))
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++ "), strings.HasPrefix(line, "--- "),
			strings.HasPrefix(line, "index "), strings.HasPrefix(line, "new file"),
			strings.HasPrefix(line, "deleted file"), strings.HasPrefix(line, "Binary files"):
			out = append(out, header.Render(line))
		case strings.HasPrefix(line, "@@"):
			out = append(out, hunk.Render(line))
		case strings.HasPrefix(line, "+"):
			out = append(out, added.Render("+")+highlightCode(lexer, style, line[1:]))
		case strings.HasPrefix(line, "-"):
			out = append(out, removed.Render("-")+highlightCode(lexer, style, line[1:]))
		case strings.HasPrefix(line, " "):
			out = append(out, " "+highlightCode(lexer, style, line[1:]))
		default:
			out = append(out, line)
		}
	}
	if truncated {
		out = append(out, header.Render("…"))
	}
	return strings.Join(out, "\n")
}

// diffPath extracts the new path from a "diff --git a/x b/x" line.
func diffPath(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "diff --git ")
	if !ok {
		return "", false
	}
	idx := strings.LastIndex(rest, " b/")
	if idx < 0 {
		return "", true
	}
	return rest[idx+3:], true
}

func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		return nil
	}
	return chroma.Coalesce(lexer)
}

func highlightCode(lexer chroma.Lexer, style *chroma.Style, code string) string {
	if lexer == nil || code == "" {
		return code
	}
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var b strings.Builder
	for _, token := range iterator.Tokens() {
		// lexers may append a newline to their input
		value := strings.ReplaceAll(token.Value, "\n", "")
		if value == "" {
			continue
		}
		entry := style.Get(token.Type)
		if !entry.Colour.IsSet() {
			b.WriteString(value)
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(entry.Colour.String())).Render(value))
	}
	return b.String()
}
