// Package config handles configuration loading and validation for casekit.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/casekit/internal/core/shortcut"
)

// State backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	DefaultTransformation string            `yaml:"default_transformation"`
	HistorySize           int               `yaml:"history_size"`
	Debounce              time.Duration     `yaml:"debounce"`
	CopiedReset           time.Duration     `yaml:"copied_reset"`
	TransformTimeout      time.Duration     `yaml:"transform_timeout"`
	Previews              PreviewConfig     `yaml:"previews"`
	Registry              RegistryConfig    `yaml:"registry"`
	State                 StateConfig       `yaml:"state"`
	Clipboard             ClipboardConfig   `yaml:"clipboard"`
	Keybindings           map[string]string `yaml:"keybindings"`
	FocusSearchKey        string            `yaml:"focus_search_key"`
	DataDir               string            `yaml:"-"` // set by caller, not from config file
}

// PreviewConfig lists the quick-access preview slots.
type PreviewConfig struct {
	Slots    []string `yaml:"slots"`
	MaxSlots int      `yaml:"max_slots"`
}

// RegistryConfig selects the transformation registry. An empty URL uses the
// built-in registry.
type RegistryConfig struct {
	URL string `yaml:"url"`
}

// StateConfig selects where the converter selection is persisted.
type StateConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// ClipboardConfig overrides the system clipboard with shell commands, for
// example "pbcopy" and "pbpaste".
type ClipboardConfig struct {
	Command      string `yaml:"command"`
	PasteCommand string `yaml:"paste_command"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTransformation: "upper-case",
		HistorySize:           50,
		Debounce:              300 * time.Millisecond,
		CopiedReset:           2 * time.Second,
		TransformTimeout:      5 * time.Second,
		Previews: PreviewConfig{
			MaxSlots: 12,
		},
		State: StateConfig{
			Backend: BackendFile,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "casekit:",
			},
		},
		Keybindings:    map[string]string{},
		FocusSearchKey: shortcut.DefaultFocusKey,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.DefaultTransformation == "" {
		c.DefaultTransformation = defaults.DefaultTransformation
	}
	if c.HistorySize == 0 {
		c.HistorySize = defaults.HistorySize
	}
	if c.Debounce == 0 {
		c.Debounce = defaults.Debounce
	}
	if c.CopiedReset == 0 {
		c.CopiedReset = defaults.CopiedReset
	}
	if c.TransformTimeout == 0 {
		c.TransformTimeout = defaults.TransformTimeout
	}
	if c.Previews.MaxSlots == 0 {
		c.Previews.MaxSlots = defaults.Previews.MaxSlots
	}
	if c.State.Backend == "" {
		c.State.Backend = defaults.State.Backend
	}
	if c.State.Redis.Addr == "" {
		c.State.Redis.Addr = defaults.State.Redis.Addr
	}
	if c.State.Redis.Prefix == "" {
		c.State.Redis.Prefix = defaults.State.Redis.Prefix
	}
	if c.FocusSearchKey == "" {
		c.FocusSearchKey = defaults.FocusSearchKey
	}
	if c.Keybindings == nil {
		c.Keybindings = map[string]string{}
	}
}

// Bindings merges the configured keybindings over the defaults. Keys are
// normalized; binding a key to "none" removes it. Invalid entries are
// skipped since Validate reports them.
func (c *Config) Bindings() map[string]shortcut.Action {
	out := maps.Clone(shortcut.DefaultBindings())
	delete(out, shortcut.DefaultFocusKey)

	focus, err := shortcut.Normalize(c.FocusSearchKey)
	if err != nil {
		focus = shortcut.DefaultFocusKey
	}
	out[focus] = shortcut.ActionFocusSearch

	for key, name := range c.Keybindings {
		canonical, err := shortcut.Normalize(key)
		if err != nil {
			continue
		}
		if name == "none" {
			delete(out, canonical)
			continue
		}
		action, err := shortcut.ParseAction(name)
		if err != nil {
			continue
		}
		out[canonical] = action
	}

	return out
}

// StateFile returns the path to the persisted converter state.
func (c *Config) StateFile() string {
	return filepath.Join(c.DataDir, "state.json")
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "casekit.log")
}
