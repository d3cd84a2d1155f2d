// Package config loads gaiacommit settings from YAML, git config, the
// environment and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	log "github.com/chmouel/gaiacommit/internal/log"
	"github.com/chmouel/gaiacommit/internal/theme"
)

// EnvPrefix marks environment variables read as configuration.
const EnvPrefix = "GAIACOMMIT_"

// Selector modes.
const (
	SelectorAuto   = "auto"
	SelectorTUI    = "tui"
	SelectorFzf    = "fzf"
	SelectorPrompt = "prompt"
)

// AppConfig defines the gaiacommit configuration options.
type AppConfig struct {
	DirectoryURL      string        `validate:"required,url"`
	ModelFilter       string        `validate:"required"`
	RequestTimeout    time.Duration `validate:"gt=0"`
	RetryAttempts     int           `validate:"min=1,max=10"`
	RetryBackoffLimit time.Duration `validate:"gt=0"`
	SystemPrompt      string
	Remote            string `validate:"required"`
	PushBranch        string `validate:"required"` // "HEAD" pushes the current branch
	Selector          string `validate:"oneof=auto tui fzf prompt"`
	Theme             string
	ShowIcons         bool
	DiffPreview       bool
	PreviewLines      int `validate:"min=0"`
	DebugLog          string
	History           bool
	HistoryFile       string
	MetricsFile       string
	TracingEnabled    bool
	TracingEndpoint   string
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		DirectoryURL:      "https://api.gaianet.ai/api/v1/network/nodes/",
		ModelFilter:       "llama",
		RequestTimeout:    50 * time.Second,
		RetryAttempts:     3,
		RetryBackoffLimit: 3 * time.Second,
		Remote:            "origin",
		PushBranch:        "main",
		Selector:          SelectorAuto,
		ShowIcons:         true,
		DiffPreview:       true,
		PreviewLines:      40,
		History:           true,
		HistoryFile:       filepath.Join(getDataDir(), "gaiacommit", "history.db"),
	}
}

// LoadOptions says where configuration comes from.
type LoadOptions struct {
	// ConfigPath is an explicit YAML file; empty means the default location.
	ConfigPath string
	// RepoPath enables the repository-local git config layer.
	RepoPath string
	// Overrides are gc.key=value pairs applied last.
	Overrides []string
}

var (
	validate    = validator.New()
	detectTheme = theme.Detect
)

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		switch text {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case int:
		return v
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}
	return defaultVal
}

// coerceDuration accepts Go duration strings; bare numbers are milliseconds.
func coerceDuration(value any, defaultVal time.Duration) time.Duration {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case int:
		return time.Duration(v) * time.Millisecond
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if ms, err := strconv.Atoi(text); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
		if d, err := time.ParseDuration(text); err == nil {
			return d
		}
	}
	return defaultVal
}

// lastValue unwraps multi-valued keys, where the last occurrence wins.
func lastValue(value any) any {
	if list, ok := value.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[len(list)-1]
	}
	return value
}

func coerceString(value any, defaultVal string) string {
	value = lastValue(value)
	if value == nil {
		return defaultVal
	}
	text := strings.TrimSpace(fmt.Sprintf("%v", value))
	if text == "" {
		return defaultVal
	}
	return text
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	get := func(key string) any { return lastValue(data[key]) }

	cfg.DirectoryURL = coerceString(data["directory_url"], cfg.DirectoryURL)
	cfg.ModelFilter = coerceString(data["model_filter"], cfg.ModelFilter)
	cfg.RequestTimeout = coerceDuration(get("request_timeout"), cfg.RequestTimeout)
	cfg.RetryAttempts = coerceInt(get("retry_attempts"), cfg.RetryAttempts)
	cfg.RetryBackoffLimit = coerceDuration(get("retry_backoff_limit"), cfg.RetryBackoffLimit)
	cfg.Remote = coerceString(data["remote"], cfg.Remote)
	cfg.PushBranch = coerceString(data["push_branch"], cfg.PushBranch)
	cfg.Selector = strings.ToLower(coerceString(data["selector"], cfg.Selector))
	cfg.ShowIcons = coerceBool(get("show_icons"), cfg.ShowIcons)
	cfg.DiffPreview = coerceBool(get("diff_preview"), cfg.DiffPreview)
	cfg.PreviewLines = coerceInt(get("preview_lines"), cfg.PreviewLines)
	cfg.History = coerceBool(get("history"), cfg.History)
	cfg.TracingEnabled = coerceBool(get("tracing_enabled"), cfg.TracingEnabled)
	cfg.TracingEndpoint = coerceString(data["tracing_endpoint"], cfg.TracingEndpoint)

	// The prompt keeps its inner whitespace.
	if prompt, ok := get("system_prompt").(string); ok && strings.TrimSpace(prompt) != "" {
		cfg.SystemPrompt = prompt
	}

	if themeName := coerceString(data["theme"], ""); themeName != "" {
		cfg.Theme = theme.Normalize(themeName)
	}

	for key, dst := range map[string]*string{
		"debug_log":    &cfg.DebugLog,
		"history_file": &cfg.HistoryFile,
		"metrics_file": &cfg.MetricsFile,
	} {
		if raw := coerceString(data[key], ""); raw != "" {
			if expanded, err := expandPath(raw); err == nil {
				*dst = expanded
			}
		}
	}

	if cfg.PreviewLines < 0 {
		cfg.PreviewLines = 0
	}

	return cfg
}

// Validate reports the first invalid setting.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config value for %s: %v (rule %s)", fe.Field(), fe.Value(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

func getDataDir() string {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return xdgDataHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath is the YAML file read when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "gaiacommit", "config.yaml")
}

func loadYAML(configPath string) (map[string]any, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath()
	} else {
		expanded, err := expandPath(configPath)
		if err != nil {
			return nil, err
		}
		configPath = expanded
	}

	data, err := os.ReadFile(configPath) //nolint:gosec
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlData map[string]any
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if yamlData == nil {
		yamlData = map[string]any{}
	}
	log.Printf("config: loaded %d keys from %s", len(yamlData), configPath)
	return yamlData, nil
}

// loadEnv reads GAIACOMMIT_* variables: GAIACOMMIT_RETRY_ATTEMPTS sets retry_attempts.
func loadEnv() (map[string]any, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}
	return k.All(), nil
}

// Load merges every configuration layer, lowest priority first: defaults,
// YAML file, global git config, local git config, environment, overrides.
func Load(opts LoadOptions) (*AppConfig, error) {
	merged := map[string]any{}

	fileData, err := loadYAML(opts.ConfigPath)
	if err != nil {
		return DefaultConfig(), err
	}
	maps.Copy(merged, fileData)

	if globalData, err := loadGitConfig(true, ""); err != nil {
		log.Printf("config: skipping global git config: %v", err)
	} else {
		maps.Copy(merged, globalData)
	}
	if opts.RepoPath != "" {
		if localData, err := loadGitConfig(false, opts.RepoPath); err != nil {
			log.Printf("config: skipping local git config: %v", err)
		} else {
			maps.Copy(merged, localData)
		}
	}

	envData, err := loadEnv()
	if err != nil {
		return DefaultConfig(), err
	}
	maps.Copy(merged, envData)

	overrides, err := parseCLIConfigOverrides(opts.Overrides)
	if err != nil {
		return DefaultConfig(), err
	}
	maps.Copy(merged, overrides)

	if name, ok := merged["theme"]; ok && theme.Normalize(coerceString(name, "")) == "" {
		return DefaultConfig(), fmt.Errorf("unknown theme %q, available: %s", coerceString(name, ""), strings.Join(theme.Available(), ", "))
	}

	cfg := parseConfig(merged)
	if cfg.Theme == "" {
		cfg.Theme = detectTheme()
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}
