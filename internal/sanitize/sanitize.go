// Package sanitize turns raw model output into commit message text.
//
// The work is an ordered list of literal substitutions. Order matters: the
// escape rules run last because decoding can introduce the characters they
// escape.
package sanitize

import "strings"

// Rule replaces every occurrence of Old with New. A rule made by
// Pipeline.Settle runs its inner pipeline instead.
type Rule struct {
	Name string
	Old  string
	New  string

	inner Pipeline
}

// Apply runs the rule over s.
func (r Rule) Apply(s string) string {
	if r.inner != nil {
		for {
			next := r.inner.Apply(s)
			if next == s {
				return s
			}
			s = next
		}
	}
	if r.Old == "" {
		return s
	}
	return strings.ReplaceAll(s, r.Old, r.New)
}

// Pipeline is an ordered list of rules applied one after the other.
type Pipeline []Rule

// Apply folds every rule over s in order.
func (p Pipeline) Apply(s string) string {
	for _, r := range p {
		s = r.Apply(s)
	}
	return s
}

// Then returns a new pipeline running p followed by next.
func (p Pipeline) Then(next Pipeline) Pipeline {
	out := make(Pipeline, 0, len(p)+len(next))
	out = append(out, p...)
	return append(out, next...)
}

// Settle wraps p in one rule that reapplies p until the text stops
// changing. Every rule in p must shorten the text it changes.
func (p Pipeline) Settle(name string) Rule {
	return Rule{Name: name, inner: p}
}

// Names lists rule names in execution order, expanding settled rules.
func (p Pipeline) Names() []string {
	names := make([]string, 0, len(p))
	for _, r := range p {
		if r.inner != nil {
			names = append(names, r.inner.Names()...)
			continue
		}
		names = append(names, r.Name)
	}
	return names
}

// DecodeEscapes turns literal backslash sequences into the characters they
// name. `\\` is decoded after the control characters, so `\\n` becomes a
// backslash followed by a newline.
var DecodeEscapes = Pipeline{
	{Name: "decode-newline", Old: `\n`, New: "\n"},
	{Name: "decode-tab", Old: `\t`, New: "\t"},
	{Name: "decode-carriage-return", Old: `\r`, New: "\r"},
	{Name: "decode-backspace", Old: `\b`, New: "\b"},
	{Name: "decode-form-feed", Old: `\f`, New: "\f"},
	{Name: "decode-backslash", Old: `\\`, New: `\`},
	{Name: "decode-double-quote", Old: `\"`, New: `"`},
	{Name: "decode-single-quote", Old: `\'`, New: `'`},
}

// StripMarkdown removes code fences and horizontal rules. Removing one can
// join the pieces of the other, so both run again until nothing is left.
var StripMarkdown = Pipeline{
	Pipeline{
		{Name: "strip-code-fence", Old: "```", New: ""},
		{Name: "strip-horizontal-rule", Old: "---", New: ""},
	}.Settle("strip-markdown"),
}

// ShellEscape makes text safe to embed inside a double-quoted shell string.
// Backslashes are doubled first so the escapes added after them stay single.
var ShellEscape = Pipeline{
	{Name: "escape-backslash", Old: `\`, New: `\\`},
	{Name: "escape-double-quote", Old: `"`, New: `\"`},
	{Name: "escape-backtick", Old: "`", New: "\\`"},
	{Name: "escape-single-quote", Old: `'`, New: `\'`},
}

// Clean is what gets shown to the user and handed to git.
var Clean = DecodeEscapes.Then(StripMarkdown)

// Default is the complete chain, ending with shell escaping.
var Default = Clean.Then(ShellEscape)

// Message cleans a raw completion and trims surrounding whitespace.
func Message(raw string) string {
	return strings.TrimSpace(Clean.Apply(raw))
}

// ShellMessage runs the complete chain and trims surrounding whitespace.
func ShellMessage(raw string) string {
	return strings.TrimSpace(Default.Apply(raw))
}
