package config

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"sort"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/casekit/internal/core/shortcut"
	"github.com/hay-kot/casekit/internal/core/validate"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is valid. Returns
// criterio.FieldErrors describing every invalid field.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", errors.New("data directory cannot be empty"))
	}

	if err := validate.MethodName(c.DefaultTransformation); err != nil {
		errs = errs.Append("default_transformation", err)
	}

	if c.HistorySize < 1 {
		errs = errs.Append("history_size", errors.New("must be at least 1"))
	}

	if c.Debounce < 0 {
		errs = errs.Append("debounce", errors.New("cannot be negative"))
	}
	if c.CopiedReset < 0 {
		errs = errs.Append("copied_reset", errors.New("cannot be negative"))
	}
	if c.TransformTimeout < 0 {
		errs = errs.Append("transform_timeout", errors.New("cannot be negative"))
	}

	if c.Previews.MaxSlots < 1 {
		errs = errs.Append("previews.max_slots", errors.New("must be at least 1"))
	}
	for i, slot := range c.Previews.Slots {
		if err := validate.MethodName(slot); err != nil {
			errs = errs.Append(fmt.Sprintf("previews.slots[%d]", i), err)
		}
	}

	if c.Registry.URL != "" {
		u, err := url.Parse(c.Registry.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = errs.Append("registry.url", fmt.Errorf("%q is not an http(s) URL", c.Registry.URL))
		}
	}

	switch c.State.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.State.Redis.Addr == "" {
			errs = errs.Append("state.redis.addr", errors.New("required for the redis backend"))
		}
		if c.State.Redis.DB < 0 {
			errs = errs.Append("state.redis.db", errors.New("cannot be negative"))
		}
		if c.State.Redis.TTL < 0 {
			errs = errs.Append("state.redis.ttl", errors.New("cannot be negative"))
		}
	default:
		errs = errs.Append("state.backend", fmt.Errorf("unknown backend %q (want file, redis or memory)", c.State.Backend))
	}

	if _, err := shortcut.Normalize(c.FocusSearchKey); err != nil {
		errs = errs.Append("focus_search_key", err)
	}

	keys := make([]string, 0, len(c.Keybindings))
	for k := range c.Keybindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field := fmt.Sprintf("keybindings[%q]", key)
		if _, err := shortcut.Normalize(key); err != nil {
			errs = errs.Append(field, err)
			continue
		}
		name := c.Keybindings[key]
		if name == "none" {
			continue
		}
		if _, err := shortcut.ParseAction(name); err != nil {
			errs = errs.Append(field, fmt.Errorf("%w (want one of: %v, none)", err, shortcut.ActionNames()))
		}
	}

	return errs.ToError()
}

// ValidateDeep performs Validate plus checks that touch the environment:
// the config file and data directory.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil && info.IsDir() {
			errs = errs.Append("config", fmt.Errorf("%s is a directory, not a file", configPath))
		} else if err != nil && !os.IsNotExist(err) {
			errs = errs.Append("config", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
			errs = errs.Append("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))
		}
	}

	var fieldErrs criterio.FieldErrors
	if err := c.Validate(); err != nil {
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = errs.Append(fe.Field, fe.Err)
		}
	}

	return errs.ToError()
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if n := len(c.Previews.Slots); n > c.Previews.MaxSlots {
		warnings = append(warnings, ValidationWarning{
			Category: "Previews",
			Item:     "previews.slots",
			Message:  fmt.Sprintf("%d slots configured but max_slots is %d; extra slots are dropped", n, c.Previews.MaxSlots),
		})
	}

	seen := make(map[string]bool, len(c.Previews.Slots))
	for _, slot := range c.Previews.Slots {
		if seen[slot] {
			warnings = append(warnings, ValidationWarning{
				Category: "Previews",
				Item:     "previews.slots",
				Message:  fmt.Sprintf("%q is listed more than once", slot),
			})
		}
		seen[slot] = true
	}

	if c.Clipboard.PasteCommand != "" && c.Clipboard.Command == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Clipboard",
			Item:     "clipboard.paste_command",
			Message:  "ignored without clipboard.command; the system clipboard is used",
		})
	}

	if c.Debounce > 0 && c.TransformTimeout > 0 && c.TransformTimeout < c.Debounce {
		warnings = append(warnings, ValidationWarning{
			Category: "Timing",
			Item:     "transform_timeout",
			Message:  "shorter than debounce; slow registries will time out before typing settles",
		})
	}

	focus, err := shortcut.Normalize(c.FocusSearchKey)
	if err == nil {
		for key, name := range c.Keybindings {
			canonical, err := shortcut.Normalize(key)
			if err == nil && canonical == focus && name != shortcut.ActionFocusSearch.String() {
				warnings = append(warnings, ValidationWarning{
					Category: "Keybindings",
					Item:     key,
					Message:  "overrides the focus search key",
				})
			}
		}
	}

	slices.SortStableFunc(warnings, func(a, b ValidationWarning) int {
		return cmp.Compare(a.Category, b.Category)
	})

	return warnings
}
