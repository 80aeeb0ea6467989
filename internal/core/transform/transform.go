// Package transform defines the text transformation contract consumed by
// converter sessions and ships the built-in method set.
package transform

import (
	"cmp"
	"context"
	"errors"
	"slices"
)

// ErrNotFound is returned when a transformation name is unknown to a registry.
var ErrNotFound = errors.New("transformation not found")

// Failure is returned when a known transformation fails while running.
type Failure struct {
	Method string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return "transformation failed"
	}
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Method describes a transformation exposed by a registry.
type Method struct {
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Options     []OptionSpec `json:"options,omitempty"`
}

// Defaults returns a fresh option set holding every declared default.
func (m Method) Defaults() Options {
	out := make(Options, len(m.Options))
	for _, spec := range m.Options {
		out[spec.Key] = spec.Default
	}
	return out
}

// Resolve overlays valid values from opts onto the declared defaults.
// Unknown keys are dropped and mistyped values fall back to the default.
func (m Method) Resolve(opts Options) Options {
	out := m.Defaults()
	for _, spec := range m.Options {
		if v, ok := opts[spec.Key]; ok && spec.Accepts(v) {
			out[spec.Key] = v
		}
	}
	return out
}

// Option returns the OptionSpec for key.
func (m Method) Option(key string) (OptionSpec, bool) {
	for _, spec := range m.Options {
		if spec.Key == key {
			return spec, true
		}
	}
	return OptionSpec{}, false
}

// Registry applies named transformations. Implementations are safe for
// concurrent use and hold no per-caller state.
type Registry interface {
	// Transform applies the named method. Returns an error wrapping
	// ErrNotFound for unknown names and a *Failure when the method fails.
	Transform(ctx context.Context, name, text string, opts Options) (string, error)
	// Has reports whether the named method exists.
	Has(name string) bool
	// Method returns the metadata for the named method.
	Method(name string) (Method, bool)
	// Methods returns every method sorted by category, then name.
	Methods() []Method
	// Grouped returns methods keyed by category.
	Grouped() map[string][]Method
}

// SortMethods orders methods by category, then name.
func SortMethods(methods []Method) {
	slices.SortFunc(methods, func(a, b Method) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// Group buckets methods by category, preserving their relative order.
func Group(methods []Method) map[string][]Method {
	out := make(map[string][]Method)
	for _, m := range methods {
		out[m.Category] = append(out[m.Category], m)
	}
	return out
}
