package converter

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/casekit/internal/core/history"
	"github.com/hay-kot/casekit/internal/core/preview"
	"github.com/hay-kot/casekit/internal/core/state"
	"github.com/hay-kot/casekit/internal/integration/clipboard"
)

const (
	DefaultTransformation = "upper-case"
	DefaultDebounce       = 300 * time.Millisecond
	DefaultCopiedReset    = 2 * time.Second
	DefaultTimeout        = 5 * time.Second
)

type config struct {
	historySize int
	debounce    time.Duration
	copiedReset time.Duration
	timeout     time.Duration
	selected    string
	previewKeys []string
	maxPreviews int
	clipboard   clipboard.Clipboard
	store       state.Store
	log         zerolog.Logger
	now         func() time.Time
}

func defaultConfig() config {
	return config{
		historySize: history.DefaultMaxSize,
		debounce:    DefaultDebounce,
		copiedReset: DefaultCopiedReset,
		timeout:     DefaultTimeout,
		selected:    DefaultTransformation,
		previewKeys: preview.DefaultKeys,
		maxPreviews: preview.DefaultMaxSlots,
		log:         zerolog.Nop(),
		now:         time.Now,
	}
}

// Option configures a Session.
type Option func(*config)

// WithHistorySize bounds the undo history.
func WithHistorySize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.historySize = n
		}
	}
}

// WithDebounce sets the delay between the last input change and the
// transform it triggers.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithCopiedReset sets how long the copied flag stays raised.
func WithCopiedReset(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.copiedReset = d
		}
	}
}

// WithTimeout bounds each registry call.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDefaultTransformation sets the transformation selected at start.
func WithDefaultTransformation(name string) Option {
	return func(c *config) {
		if name != "" {
			c.selected = name
		}
	}
}

// WithPreviews sets the preview slot keys and the slot limit.
func WithPreviews(keys []string, maxSlots int) Option {
	return func(c *config) {
		if len(keys) > 0 {
			c.previewKeys = keys
		}
		if maxSlots > 0 {
			c.maxPreviews = maxSlots
		}
	}
}

func WithClipboard(cb clipboard.Clipboard) Option {
	return func(c *config) {
		c.clipboard = cb
	}
}

// WithStateStore enables persisting the selection.
func WithStateStore(s state.Store) Option {
	return func(c *config) {
		c.store = s
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithClock replaces the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
