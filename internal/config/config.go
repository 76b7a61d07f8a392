// Package config provides configuration types, defaults and validation for
// mentions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/template"
	"time"

	"github.com/zjrosen/mentions/internal/log"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Part type kinds.
const (
	KindMention = "mention"
	KindPattern = "pattern"
)

// Config holds all configuration options for mentions.
type Config struct {
	PartTypes   []PartTypeConfig  `mapstructure:"part_types"`
	Diff        DiffConfig        `mapstructure:"diff"`
	Suggestions SuggestionsConfig `mapstructure:"suggestions"`
	Directory   DirectoryConfig   `mapstructure:"directory"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Log         LogConfig         `mapstructure:"log"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	Theme       ThemeConfig       `mapstructure:"theme"`
}

// PartTypeConfig declares one part type. Order matters: earlier types win.
type PartTypeConfig struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Kind    string `mapstructure:"kind" yaml:"kind,omitempty"` // "mention" (default) or "pattern"
	Trigger string `mapstructure:"trigger" yaml:"trigger,omitempty"`
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	Style   string `mapstructure:"style" yaml:"style,omitempty"` // hashtag, italic, mention, strong, underline
	Color   string `mapstructure:"color" yaml:"color,omitempty"` // hex color used by the editor

	// Label and Markup are text/template sources. Label sees .Trigger, .ID,
	// .Name and .Original; Markup sees .Trigger, .ID and .Name.
	Label  string `mapstructure:"label" yaml:"label,omitempty"`
	Markup string `mapstructure:"markup" yaml:"markup,omitempty"`

	AllowedSpaces    int    `mapstructure:"allowed_spaces" yaml:"allowed_spaces,omitempty"`
	InsertSpaceAfter bool   `mapstructure:"insert_space_after" yaml:"insert_space_after,omitempty"`
	RenderPosition   string `mapstructure:"render_position" yaml:"render_position,omitempty"` // "top" (default) or "bottom"
}

// IsMention reports whether the entry declares a mention type.
func (p PartTypeConfig) IsMention() bool {
	return p.Kind == "" || p.Kind == KindMention
}

// DiffConfig tunes the character diff used when reconciling edits.
type DiffConfig struct {
	// Timeout bounds one diff; 0 disables the bound.
	Timeout time.Duration `mapstructure:"timeout"`
}

// SuggestionsConfig controls suggestion lists.
type SuggestionsConfig struct {
	Limit int `mapstructure:"limit"`
}

// DirectoryConfig locates the suggestion directory file.
type DirectoryConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig controls the parse cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LogConfig controls debug logging.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/mentions/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// ThemeConfig holds editor color options.
type ThemeConfig struct {
	// Mode forces light or dark mode. If empty, uses terminal detection.
	Mode string `mapstructure:"mode"`

	// Colors overrides style colors by tag, e.g. "mention": "#7AA2F7".
	// Supports both nested YAML structure and dot notation.
	Colors map[string]any `mapstructure:"colors"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys.
// This handles both nested YAML structures and already-flat keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

// flattenColors recursively flattens a nested map into dot-notation keys.
func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			// YAML sometimes produces map[any]any instead of map[string]any
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/mentions/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mentions", "traces", "traces.jsonl")
}

// DefaultPartTypes returns user mentions, topic mentions and URLs.
func DefaultPartTypes() []PartTypeConfig {
	return []PartTypeConfig{
		{
			Name:             "user",
			Trigger:          "@",
			Pattern:          `<(?P<trigger>@)(?P<id>[A-Za-z0-9_.-]+)>`,
			Style:            "mention",
			Color:            "#7AA2F7",
			Label:            `{{.Trigger}}{{if .Name}}{{.Name}}{{else}}{{.ID}}{{end}}`,
			AllowedSpaces:    1,
			InsertSpaceAfter: true,
		},
		{
			Name:             "topic",
			Trigger:          "#",
			Pattern:          `<(?P<trigger>#)(?P<id>[A-Za-z0-9_.-]+)>`,
			Style:            "hashtag",
			Color:            "#9ECE6A",
			InsertSpaceAfter: true,
			RenderPosition:   "bottom",
		},
		{
			Name:    "url",
			Kind:    KindPattern,
			Pattern: `https?://[^\s<>]+`,
			Style:   "underline",
		},
	}
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		PartTypes: DefaultPartTypes(),
		Diff: DiffConfig{
			Timeout: time.Second,
		},
		Suggestions: SuggestionsConfig{
			Limit: 8,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Log: LogConfig{
			Level: "debug",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks cfg for errors. Every error wraps ErrInvalidConfig.
func Validate(cfg Config) error {
	if err := ValidatePartTypes(cfg.PartTypes); err != nil {
		return err
	}
	if cfg.Diff.Timeout < 0 {
		return fmt.Errorf("%w: diff.timeout must not be negative, got %s", ErrInvalidConfig, cfg.Diff.Timeout)
	}
	if cfg.Suggestions.Limit < 0 {
		return fmt.Errorf("%w: suggestions.limit must not be negative, got %d", ErrInvalidConfig, cfg.Suggestions.Limit)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative, got %s", ErrInvalidConfig, cfg.Cache.TTL)
	}
	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", ErrInvalidConfig, cfg.Log.Level)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidatePartTypes checks part type declarations for errors.
func ValidatePartTypes(types []PartTypeConfig) error {
	if len(types) == 0 {
		return fmt.Errorf("%w: at least one part type is required", ErrInvalidConfig)
	}

	names := make(map[string]bool, len(types))
	for i, pt := range types {
		if pt.Name == "" {
			return fmt.Errorf("%w: part type %d: name is required", ErrInvalidConfig, i)
		}
		if names[pt.Name] {
			return fmt.Errorf("%w: part type %d: duplicate name %q", ErrInvalidConfig, i, pt.Name)
		}
		names[pt.Name] = true

		if pt.Pattern == "" {
			return fmt.Errorf("%w: part type %d (%s): pattern is required", ErrInvalidConfig, i, pt.Name)
		}
		re, err := regexp.Compile(pt.Pattern)
		if err != nil {
			return fmt.Errorf("%w: part type %d (%s): %w", ErrInvalidConfig, i, pt.Name, err)
		}
		if re.MatchString("") {
			return fmt.Errorf("%w: part type %d (%s): pattern matches the empty string", ErrInvalidConfig, i, pt.Name)
		}

		switch pt.Kind {
		case "", KindMention:
			if pt.Trigger == "" {
				return fmt.Errorf("%w: part type %d (%s): trigger is required for mention types", ErrInvalidConfig, i, pt.Name)
			}
			if pt.AllowedSpaces < 0 {
				return fmt.Errorf("%w: part type %d (%s): allowed_spaces must not be negative", ErrInvalidConfig, i, pt.Name)
			}
			for field, src := range map[string]string{"label": pt.Label, "markup": pt.Markup} {
				if _, err := template.New(field).Parse(src); err != nil {
					return fmt.Errorf("%w: part type %d (%s): %s template: %w", ErrInvalidConfig, i, pt.Name, field, err)
				}
			}
		case KindPattern:
		default:
			return fmt.Errorf("%w: part type %d (%s): invalid kind %q (must be \"mention\" or \"pattern\")", ErrInvalidConfig, i, pt.Name, pt.Kind)
		}

		switch pt.RenderPosition {
		case "", "top", "bottom":
		default:
			return fmt.Errorf("%w: part type %d (%s): render_position must be \"top\" or \"bottom\", got %q", ErrInvalidConfig, i, pt.Name, pt.RenderPosition)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("%w: tracing.sample_rate must be between 0.0 and 1.0, got %v", ErrInvalidConfig, tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("%w: tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", ErrInvalidConfig, tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("%w: tracing.file_path is required when exporter is \"file\"", ErrInvalidConfig)
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("%w: tracing.otlp_endpoint is required when exporter is \"otlp\"", ErrInvalidConfig)
		}
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Mentions Configuration

# Part types, in priority order. Text matched by an earlier type is never
# offered to a later one.
part_types:
  - name: user
    trigger: "@"
    # Mention patterns need "trigger" and "id" groups (or two positional groups).
    pattern: '<(?P<trigger>@)(?P<id>[A-Za-z0-9_.-]+)>'
    style: mention
    color: "#7AA2F7"
    # Label template: .Trigger .ID .Name .Original (name comes from the directory)
    label: '{{.Trigger}}{{if .Name}}{{.Name}}{{else}}{{.ID}}{{end}}'
    # markup: '<{{.Trigger}}{{.ID}}>'
    allowed_spaces: 1          # spaces a keyword may contain
    insert_space_after: true   # add a space after an inserted mention at end of line

  - name: topic
    trigger: "#"
    pattern: '<(?P<trigger>#)(?P<id>[A-Za-z0-9_.-]+)>'
    style: hashtag
    color: "#9ECE6A"
    insert_space_after: true
    render_position: bottom    # top (default) or bottom

  - name: url
    kind: pattern
    pattern: 'https?://[^\s<>]+'
    style: underline

# Character diff used to fold plain-text edits back into the raw value
diff:
  timeout: 1s                  # 0 disables the bound

# Suggestion lists
suggestions:
  limit: 8

# Suggestion directory (YAML file with a top-level "suggestions" list)
# directory:
#   path: ~/.config/mentions/people.yaml

# Parse cache
cache:
  enabled: true
  ttl: 10m

# Debug logging (enabled with --debug or MENTIONS_DEBUG=1)
log:
  level: debug
  # file: debug.log

# Editor colors by style tag
# theme:
#   mode: dark
#   colors:
#     mention: "#7AA2F7"
#     hashtag: "#9ECE6A"

# Distributed tracing configuration
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/mentions/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
