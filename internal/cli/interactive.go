// Package cli implements the interactive prompts of a gaiacommit run: the
// staged-file picker and the yes/no questions. Each prompt has a bubbletea
// rendition, an fzf rendition for file picking, and a plain line-based
// fallback used when stdin is not a terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/chmouel/gaiacommit/internal/config"
	log "github.com/chmouel/gaiacommit/internal/log"
	"github.com/chmouel/gaiacommit/internal/screen"
	"github.com/chmouel/gaiacommit/internal/theme"
)

// ErrSelectionCancelled is returned when the user aborts a prompt.
var ErrSelectionCancelled = errors.New("selection cancelled")

// fzfLookPath is a package-level variable for exec.LookPath, replaceable in tests.
var fzfLookPath = exec.LookPath

// isTerminal reports whether f is attached to a terminal, replaceable in tests.
var isTerminal = func(f any) bool {
	file, ok := f.(*os.File)
	return ok && term.IsTerminal(int(file.Fd())) //nolint:gosec
}

// runScreen shows a screen until it closes, replaceable in tests.
var runScreen = screen.Run

// PreviewFunc returns the raw staged diff of path.
type PreviewFunc func(ctx context.Context, path string) (string, error)

// Prompter asks the user questions on the configured streams.
type Prompter struct {
	Mode         string // one of the config.Selector* values
	In           io.Reader
	Out          io.Writer
	Err          io.Writer
	Theme        *theme.Theme
	ShowIcons    bool
	PreviewLines int
	Preview      PreviewFunc
	// Root is the top of the working tree; fzf runs there so its preview
	// resolves root-relative paths.
	Root string

	reader *bufio.Reader
}

// NewPrompter returns a Prompter on the process streams configured from cfg.
// root is the top of the working tree that staged paths are relative to.
func NewPrompter(cfg *config.AppConfig, root string, preview PreviewFunc) *Prompter {
	p := &Prompter{
		Mode:         cfg.Selector,
		In:           os.Stdin,
		Out:          os.Stdout,
		Err:          os.Stderr,
		Theme:        theme.Get(cfg.Theme),
		ShowIcons:    cfg.ShowIcons,
		PreviewLines: cfg.PreviewLines,
		Root:         root,
	}
	if cfg.DiffPreview {
		p.Preview = preview
	}
	return p
}

// mode resolves "auto" to the TUI on a terminal and to plain prompts otherwise.
func (p *Prompter) mode() string {
	switch p.Mode {
	case config.SelectorTUI, config.SelectorFzf, config.SelectorPrompt:
		return p.Mode
	}
	if isTerminal(p.In) && isTerminal(p.Out) {
		return config.SelectorTUI
	}
	return config.SelectorPrompt
}

func (p *Prompter) lineReader() *bufio.Reader {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	return p.reader
}

// readLine returns the next input line without its terminator. io.EOF is
// returned only when nothing was read.
func (p *Prompter) readLine() (string, error) {
	line, err := p.lineReader().ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// termSize is the size of the output terminal, 80x24 when unknown.
func (p *Prompter) termSize() (int, int) {
	if file, ok := p.Out.(*os.File); ok {
		if w, h, err := term.GetSize(int(file.Fd())); err == nil && w > 0 && h > 0 { //nolint:gosec
			return w, h
		}
	}
	return 80, 24
}

// ShowMessage prints the generated commit message in a box.
func (p *Prompter) ShowMessage(message string) {
	width, _ := p.termSize()
	width = min(width, 100)
	fmt.Fprintln(p.Out, screen.RenderMessage("Generated commit message", message, width, p.Theme))
}

// SelectFile asks for exactly one of files.
func (p *Prompter) SelectFile(ctx context.Context, files []string) (string, error) {
	if len(files) == 0 {
		return "", errors.New("no staged files to choose from")
	}

	mode := p.mode()
	if mode == config.SelectorFzf {
		if _, err := fzfLookPath("fzf"); err != nil {
			log.Printf("cli: fzf not found, falling back to prompt")
			mode = config.SelectorPrompt
		}
	}
	log.Printf("cli: selecting among %d files with %s", len(files), mode)

	switch mode {
	case config.SelectorTUI:
		return p.selectFileWithScreen(ctx, files)
	case config.SelectorFzf:
		return p.selectFileWithFzf(ctx, files)
	default:
		return p.selectFileWithPrompt(files)
	}
}

func (p *Prompter) selectFileWithScreen(ctx context.Context, files []string) (string, error) {
	items := make([]screen.SelectionItem, 0, len(files))
	for _, f := range files {
		items = append(items, screen.SelectionItem{ID: f, Label: screen.FileLabel(f, p.ShowIcons)})
	}

	width, height := p.termSize()
	scr := screen.NewFileSelectScreen(items, "Select a staged file", width, height, p.Theme)
	if p.Preview != nil {
		scr.PreviewLines = p.PreviewLines
		scr.Preview = func(item screen.SelectionItem) string {
			diff, err := p.Preview(ctx, item.ID)
			if err != nil {
				return "preview unavailable: " + err.Error()
			}
			return screen.HighlightDiff(diff, p.Theme, p.PreviewLines)
		}
	}

	var picked string
	scr.OnSelect = func(item screen.SelectionItem) tea.Cmd {
		picked = item.ID
		return nil
	}
	if err := runScreen(ctx, scr, p.In, p.Out); err != nil {
		return "", fmt.Errorf("file selection: %w", err)
	}
	if picked == "" {
		return "", ErrSelectionCancelled
	}
	return picked, nil
}

// selectFileWithFzf pipes the staged files through fzf with a staged diff preview.
func (p *Prompter) selectFileWithFzf(ctx context.Context, files []string) (string, error) {
	cmd := p.fzfCommand(ctx, files)
	out, err := cmd.Output()
	if err != nil {
		return "", ErrSelectionCancelled
	}

	selected := strings.TrimSpace(string(out))
	for _, f := range files {
		if f == selected {
			return f, nil
		}
	}
	return "", fmt.Errorf("fzf returned unknown file %q", selected)
}

func (p *Prompter) fzfCommand(ctx context.Context, files []string) *exec.Cmd {
	args := []string{
		"--ansi",
		"--prompt", "Select a staged file> ",
		"--header", "Staged files (type to filter)",
	}
	if p.Preview != nil {
		args = append(args,
			"--preview", "git diff --staged --color=always -- {}",
			"--preview-window", "wrap:down:60%",
		)
	}

	cmd := exec.CommandContext(ctx, "fzf", args...)
	cmd.Dir = p.Root
	cmd.Stdin = strings.NewReader(strings.Join(files, "\n"))
	cmd.Stderr = p.Err
	return cmd
}

// selectFileWithPrompt displays a numbered list and reads the user's choice,
// asking again until the answer is valid.
func (p *Prompter) selectFileWithPrompt(files []string) (string, error) {
	fmt.Fprintf(p.Err, "\nStaged files:\n\n")
	for i, f := range files {
		fmt.Fprintf(p.Err, "  [%d] %s\n", i+1, screen.FileLabel(f, p.ShowIcons))
	}

	for {
		fmt.Fprintf(p.Err, "\nSelect a file [1-%d]: ", len(files))
		text, err := p.readLine()
		if err != nil {
			return "", ErrSelectionCancelled
		}

		idx, err := parseSelection(text, len(files))
		if err != nil {
			fmt.Fprintf(p.Err, "%v\n", err)
			continue
		}
		return files[idx], nil
	}
}

// parseSelection converts a 1-based answer into an index.
func parseSelection(text string, n int) (int, error) {
	if text == "" {
		return 0, errors.New("no file selected")
	}
	idx, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid selection: %q", text)
	}
	if idx < 1 || idx > n {
		return 0, fmt.Errorf("selection out of range: %d (must be 1-%d)", idx, n)
	}
	return idx - 1, nil
}

// Confirm asks a yes/no question; def is the answer when the user just
// presses Enter.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	if p.mode() == config.SelectorTUI {
		return p.confirmWithScreen(ctx, question, def)
	}
	return p.confirmWithPrompt(question, def)
}

func (p *Prompter) confirmWithScreen(ctx context.Context, question string, def bool) (bool, error) {
	button := screen.ButtonNo
	if def {
		button = screen.ButtonYes
	}
	scr := screen.NewConfirmScreen(question, button, p.Theme)

	var answered, answer bool
	scr.OnConfirm = func() tea.Cmd {
		answered, answer = true, true
		return nil
	}
	scr.OnDecline = func() tea.Cmd {
		answered, answer = true, false
		return nil
	}
	scr.OnAbort = func() tea.Cmd { return nil }

	if err := runScreen(ctx, scr, p.In, p.Out); err != nil {
		return false, fmt.Errorf("confirm %q: %w", question, err)
	}
	if !answered {
		return false, ErrSelectionCancelled
	}
	return answer, nil
}

func (p *Prompter) confirmWithPrompt(question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for {
		fmt.Fprintf(p.Err, "%s %s: ", question, hint)
		text, err := p.readLine()
		if err != nil {
			return false, ErrSelectionCancelled
		}
		switch strings.ToLower(text) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintf(p.Err, "please answer y or n\n")
	}
}
