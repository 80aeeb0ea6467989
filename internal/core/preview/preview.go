// Package preview keeps a list of quick-access transformation outputs in
// sync with the converter's input text.
package preview

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hay-kot/casekit/internal/core/transform"
)

// DefaultMaxSlots bounds the slot list when no limit is configured.
const DefaultMaxSlots = 12

// DefaultKeys are the slots shown when none are configured.
var DefaultKeys = []string{
	"upper-case",
	"lower-case",
	"title-case",
	"sentence-case",
	"camel-case",
	"pascal-case",
	"snake-case",
	"kebab-case",
	"constant-case",
	"dot-case",
}

// Slot is one preview output.
type Slot struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Output string `json:"output"`
}

// Set owns the preview slots of a single session.
type Set struct {
	registry transform.Registry
	log      zerolog.Logger
	maxSlots int
	timeout  time.Duration

	mu    sync.RWMutex
	slots []Slot
	// gen increases with every recompute; only the latest may write outputs.
	gen uint64
}

type Option func(*Set)

// WithTimeout bounds each preview transform. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Set) { s.timeout = d }
}

// New creates a set with a slot per key. Duplicate keys are dropped and the
// list is cut to maxSlots.
func New(registry transform.Registry, keys []string, maxSlots int, log zerolog.Logger, opts ...Option) *Set {
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}

	s := &Set{registry: registry, log: log, maxSlots: maxSlots}
	for _, opt := range opts {
		opt(s)
	}
	for _, key := range keys {
		if s.indexOf(key) >= 0 {
			continue
		}
		s.slots = append(s.slots, s.newSlot(key))
		if len(s.slots) == maxSlots {
			break
		}
	}

	return s
}

func (s *Set) newSlot(key string) Slot {
	label := key
	if m, ok := s.registry.Method(key); ok && m.Label != "" {
		label = m.Label
	}
	return Slot{Key: key, Label: label}
}

func (s *Set) indexOf(key string) int {
	return slices.IndexFunc(s.slots, func(sl Slot) bool { return sl.Key == key })
}

// RecomputeAll transforms input through every slot concurrently. Empty input
// clears every output without calling the registry. A slot whose transform
// fails shows the input unchanged; other slots are unaffected. When calls
// overlap, only the one started last updates the outputs. It reports whether
// its outputs were applied.
func (s *Set) RecomputeAll(ctx context.Context, input string) bool {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	keys := make([]string, len(s.slots))
	for i, sl := range s.slots {
		keys[i] = sl.Key
	}
	s.mu.Unlock()

	outputs := make([]string, len(keys))
	if input != "" {
		var g errgroup.Group
		for i, key := range keys {
			g.Go(func() error {
				outputs[i] = s.transform(ctx, key, input)
				return nil
			})
		}
		_ = g.Wait()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}

	results := make(map[string]string, len(keys))
	for i, key := range keys {
		results[key] = outputs[i]
	}
	for i := range s.slots {
		if out, ok := results[s.slots[i].Key]; ok {
			s.slots[i].Output = out
		}
	}
	return true
}

func (s *Set) transform(ctx context.Context, key, input string) string {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.registry.Transform(ctx, key, input, nil)
	if err != nil {
		s.log.Debug().Err(err).Str("slot", key).Msg("preview transform failed")
		return input
	}
	return out
}

// Promote inserts key at the front of the list when it is not already
// present and evicts the oldest slots beyond the limit. It reports whether
// key was inserted.
func (s *Set) Promote(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(key) >= 0 {
		return false
	}

	s.slots = slices.Insert(s.slots, 0, s.newSlot(key))
	if len(s.slots) > s.maxSlots {
		s.slots = s.slots[:s.maxSlots]
	}
	return true
}

// Slots returns a copy of the current slots in display order.
func (s *Set) Slots() []Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.slots)
}
