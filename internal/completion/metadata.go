// Package completion holds the metadata shell completion needs: global
// flags, their values and the keys accepted by --config.
package completion

import (
	"strings"

	"github.com/chmouel/gaiacommit/internal/theme"
)

// FlagInfo contains metadata about a command-line flag for completion generation.
type FlagInfo struct {
	Name        string   // Flag name without dashes
	Short       string   // One-letter alias, if any
	Description string   // Human-readable description
	HasValue    bool     // true for string flags, false for bool flags
	ValueHint   string   // Hint for value type (e.g., "PATH", "NAME")
	Values      []string // Enumerated values for completion (e.g., theme names)
}

// GetFlags returns metadata for all gaiacommit global flags.
func GetFlags() []FlagInfo {
	return []FlagInfo{
		{
			Name:        "config-file",
			Description: "Path to configuration file",
			HasValue:    true,
			ValueHint:   "PATH",
		},
		{
			Name:        "config",
			Short:       "C",
			Description: "Override config values (repeatable)",
			HasValue:    true,
			ValueHint:   "gc.KEY=VALUE",
		},
		{
			Name:        "debug-log",
			Description: "Path to debug log file",
			HasValue:    true,
			ValueHint:   "PATH",
		},
		{
			Name:        "theme",
			Short:       "t",
			Description: "Override the UI theme",
			HasValue:    true,
			ValueHint:   "NAME",
			Values:      theme.Available(),
		},
		{
			Name:        "model-filter",
			Description: "Only use nodes whose model name contains this text",
			HasValue:    true,
			ValueHint:   "TEXT",
		},
		{
			Name:        "remote",
			Description: "Remote to push to",
			HasValue:    true,
			ValueHint:   "NAME",
		},
		{
			Name:        "branch",
			Description: "Branch to push, HEAD for the current one",
			HasValue:    true,
			ValueHint:   "NAME",
			Values:      []string{"HEAD"},
		},
	}
}

// FlagValues returns the enumerated values of the flag called name or short.
func FlagValues(name string) []string {
	name = strings.TrimLeft(name, "-")
	for _, f := range GetFlags() {
		if f.Name == name || (f.Short != "" && f.Short == name) {
			return f.Values
		}
	}
	return nil
}

// ConfigKeys lists every key accepted in the YAML file, git config and --config.
var ConfigKeys = []string{
	"directory_url", "model_filter", "request_timeout", "retry_attempts",
	"retry_backoff_limit", "system_prompt", "remote", "push_branch", "selector",
	"theme", "show_icons", "diff_preview", "preview_lines", "debug_log",
	"history", "history_file", "metrics_file", "tracing_enabled", "tracing_endpoint",
}

const configPrefix = "gc."

// ValuesFor returns the known values of a config key.
func ValuesFor(key string) []string {
	switch key {
	case "theme":
		return theme.Available()
	case "selector":
		return []string{"auto", "tui", "fzf", "prompt"}
	case "push_branch":
		return []string{"HEAD"}
	case "show_icons", "diff_preview", "history", "tracing_enabled":
		return []string{"true", "false"}
	default:
		return nil
	}
}

// SuggestConfig completes a --config argument. Before the "=" it offers
// "gc.key=" entries, after it the values of that key.
func SuggestConfig(partial string) []string {
	body := strings.TrimPrefix(partial, configPrefix)

	if key, value, ok := strings.Cut(body, "="); ok {
		var out []string
		for _, v := range ValuesFor(key) {
			if strings.HasPrefix(v, value) {
				out = append(out, configPrefix+key+"="+v)
			}
		}
		return out
	}

	var out []string
	for _, key := range ConfigKeys {
		if strings.HasPrefix(key, body) {
			out = append(out, configPrefix+key+"=")
		}
	}
	return out
}
