package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOrder(t *testing.T) {
	assert.Equal(t, []string{
		"decode-newline",
		"decode-tab",
		"decode-carriage-return",
		"decode-backspace",
		"decode-form-feed",
		"decode-backslash",
		"decode-double-quote",
		"decode-single-quote",
		"strip-code-fence",
		"strip-horizontal-rule",
		"escape-backslash",
		"escape-double-quote",
		"escape-backtick",
		"escape-single-quote",
	}, Default.Names())
}

func TestDecodeEscapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "newline", in: `feat: add\nbody`, want: "feat: add\nbody"},
		{name: "tab and carriage return", in: `a\tb\rc`, want: "a\tb\rc"},
		{name: "backspace and form feed", in: `x\by\fz`, want: "x\by\fz"},
		{name: "escaped backslash", in: `path\\dir`, want: `path\dir`},
		{name: "quotes", in: `say \"hi\" it\'s`, want: `say "hi" it's`},
		{name: "backslash before n decodes newline first", in: `\\n`, want: "\\\n"},
		{name: "plain text untouched", in: "fix(core): nothing to see", want: "fix(core): nothing to see"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeEscapes.Apply(tt.in))
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	in := "```\n---\n📝 docs(README): Add demo\nBody text\n---\n```"
	assert.Equal(t, "\n\n📝 docs(README): Add demo\nBody text\n\n", StripMarkdown.Apply(in))
}

func TestStripMarkdownIdempotent(t *testing.T) {
	inputs := []string{
		"```go\nfmt.Println()\n```",
		"------ header ---",
		"-----",
		"````",
		"``---`",
		"-```--",
		"`-``--``-`---",
		"no markdown at all",
	}
	for _, in := range inputs {
		once := StripMarkdown.Apply(in)
		assert.Equal(t, once, StripMarkdown.Apply(once), "input %q", in)
		assert.NotContains(t, once, "```")
		assert.NotContains(t, once, "---")
	}
}

func TestShellEscape(t *testing.T) {
	assert.Equal(t, `say \"hi\" to \`+"`"+`cmd\`+"`"+` and it\'s done`,
		ShellEscape.Apply("say \"hi\" to `cmd` and it's done"))
}

// escapedExactlyOnce reports whether every quote-like character and every
// backslash in s is escaped by exactly one backslash.
func escapedExactlyOnce(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 == len(s) {
				return false
			}
			i++
			switch s[i] {
			case '\\', '"', '`', '\'':
			default:
				return false
			}
		case '"', '`', '\'':
			return false
		}
	}
	return true
}

func TestDefaultEscapeInvariant(t *testing.T) {
	inputs := []string{
		`✨ feat(api): add \"retry\" option`,
		"🐛 fix(cli): don't crash on `--help`",
		`"quoted" 'single' ` + "`tick`",
		"```\nrefactor: it's \"fine\"\n```",
		`mixed \'escaped\' and 'raw'`,
		"a\\`b",
		`trailing \\`,
		`C:\\path\\`,
		`keep \z and \"q\"`,
	}
	for _, in := range inputs {
		out := Default.Apply(in)
		assert.True(t, escapedExactlyOnce(out), "input %q produced %q", in, out)
	}
}

func TestShellEscapeDoublesBackslashes(t *testing.T) {
	assert.Equal(t, "a\\\\\\`b", ShellEscape.Apply("a\\`b"))
	assert.Equal(t, `dir\\\\sub`, ShellEscape.Apply(`dir\\sub`))
}

func TestMessage(t *testing.T) {
	raw := "```\n---\n🌍 feat(bun.lockb): Bun integration\\nAdds bun.\n---\n```\n\n"
	assert.Equal(t, "🌍 feat(bun.lockb): Bun integration\nAdds bun.", Message(raw))
	assert.Empty(t, Message("  ```  ---  "))
}

func TestShellMessage(t *testing.T) {
	raw := `feat: add "x"` + "\n"
	assert.Equal(t, `feat: add \"x\"`, ShellMessage(raw))
}

func TestPipelineThenDoesNotAlias(t *testing.T) {
	base := Pipeline{{Name: "a", Old: "a", New: "b"}}
	extended := base.Then(Pipeline{{Name: "b", Old: "b", New: "c"}})
	_ = base.Then(Pipeline{{Name: "other", Old: "x", New: "y"}})

	assert.Equal(t, []string{"a", "b"}, extended.Names())
	assert.Equal(t, "c", extended.Apply("a"))
}

func TestRuleWithEmptyOldIsNoop(t *testing.T) {
	r := Rule{Name: "noop"}
	assert.Equal(t, "unchanged", r.Apply("unchanged"))
	assert.True(t, strings.HasPrefix(Rule{Old: "u", New: "U"}.Apply("unchanged"), "U"))
}
