// Package converter owns a single text conversion session: the input and
// output text, the selected transformation and its options, the undo
// history and the live previews.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/hay-kot/casekit/internal/core/history"
	"github.com/hay-kot/casekit/internal/core/preview"
	"github.com/hay-kot/casekit/internal/core/state"
	"github.com/hay-kot/casekit/internal/core/transform"
	"github.com/hay-kot/casekit/internal/integration/clipboard"
)

const (
	msgFailed   = "Transformation failed"
	msgTimedOut = "Transformation timed out"
)

// persistTimeout bounds a single state store write.
const persistTimeout = 2 * time.Second

// Stats holds character and word counts.
type Stats struct {
	InputChars  int `json:"input_chars"`
	InputWords  int `json:"input_words"`
	OutputChars int `json:"output_chars"`
	OutputWords int `json:"output_words"`
}

// State is an immutable snapshot of a session.
type State struct {
	Input        string            `json:"input"`
	Output       string            `json:"output"`
	Selected     string            `json:"selected"`
	Options      transform.Options `json:"options"`
	Error        string            `json:"error,omitempty"`
	Processing   bool              `json:"processing"`
	Pending      bool              `json:"pending"`
	Copied       bool              `json:"copied"`
	HistoryIndex int               `json:"history_index"`
	HistoryLen   int               `json:"history_len"`
	HistoryMax   int               `json:"history_max"`
	CanUndo      bool              `json:"can_undo"`
	CanRedo      bool              `json:"can_redo"`
	Previews     []preview.Slot    `json:"previews"`
	Stats        Stats             `json:"stats"`
}

// Session is a converter session. All methods are safe for concurrent use.
// Observers registered with Subscribe may be called from any goroutine.
type Session struct {
	registry  transform.Registry
	history   *history.Stack
	previews  *preview.Set
	clipboard clipboard.Clipboard
	store     state.Store
	log       zerolog.Logger
	now       func() time.Time
	timeout   time.Duration
	reset     time.Duration
	debouncer *Debouncer

	// ctx is cancelled by Close and parents the debounced transforms.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	input       string
	output      string
	selected    string
	options     transform.Options
	errMsg      string
	processing  int
	seq         uint64
	copied      bool
	copiedTimer *time.Timer
	observers   map[int]func(State)
	nextObs     int
}

// New creates a session over registry.
func New(registry transform.Registry, opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.log.With().Str("component", "converter").Logger()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		registry:  registry,
		history:   history.NewStack(cfg.historySize),
		previews:  preview.New(registry, cfg.previewKeys, cfg.maxPreviews, log, preview.WithTimeout(cfg.timeout)),
		clipboard: cfg.clipboard,
		store:     cfg.store,
		log:       log,
		now:       cfg.now,
		timeout:   cfg.timeout,
		reset:     cfg.copiedReset,
		ctx:       ctx,
		cancel:    cancel,
		selected:  cfg.selected,
		options:   transform.Options{},
		observers: make(map[int]func(State)),
	}
	if m, ok := registry.Method(cfg.selected); ok {
		s.options = m.Defaults()
	}
	s.debouncer = NewDebouncer(cfg.debounce, s.debounced)

	return s
}

// Registry returns the registry the session transforms through.
func (s *Session) Registry() transform.Registry {
	return s.registry
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the observer.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	return State{
		Input:        s.input,
		Output:       s.output,
		Selected:     s.selected,
		Options:      s.options.Clone(),
		Error:        s.errMsg,
		Processing:   s.processing > 0,
		Pending:      s.debouncer.Pending(),
		Copied:       s.copied,
		HistoryIndex: s.history.Index(),
		HistoryLen:   s.history.Len(),
		HistoryMax:   s.history.MaxSize(),
		CanUndo:      s.history.CanUndo(),
		CanRedo:      s.history.CanRedo(),
		Previews:     s.previews.Slots(),
		Stats: Stats{
			InputChars:  utf8.RuneCountInString(s.input),
			InputWords:  len(strings.Fields(s.input)),
			OutputChars: utf8.RuneCountInString(s.output),
			OutputWords: len(strings.Fields(s.output)),
		},
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	observers := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

// History returns the undo history, oldest first.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// SetInputText stores text, recomputes the previews before returning and
// schedules a debounced transform.
func (s *Session) SetInputText(ctx context.Context, text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()

	s.refreshPreviews(ctx)
	s.debouncer.Call()
	s.notify()
}

// refreshPreviews recomputes the previews for the current input. A refresh
// overtaken by a newer one leaves the outputs to it; one that finishes after
// the input moved on runs again.
func (s *Session) refreshPreviews(ctx context.Context) {
	for {
		s.mu.Lock()
		input := s.input
		s.mu.Unlock()

		if !s.previews.RecomputeAll(ctx, input) {
			return
		}

		s.mu.Lock()
		current := s.input
		s.mu.Unlock()
		if current == input {
			return
		}
	}
}

// debounced runs the scheduled transform unless the session is closed.
func (s *Session) debounced() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	s.Transform(s.ctx)
}

// SetSelectedTransformation selects name, resets the options to its declared
// defaults and transforms immediately. An unknown name keeps the current
// options; the following transform reports it.
func (s *Session) SetSelectedTransformation(ctx context.Context, name string) {
	if name == "" {
		name = DefaultTransformation
	}
	s.debouncer.Cancel()

	s.mu.Lock()
	s.selected = name
	if m, ok := s.registry.Method(name); ok {
		s.options = m.Defaults()
	}
	s.mu.Unlock()

	s.persist()
	s.Transform(ctx)
}

// SetOption sets one option of the selected transformation and transforms
// immediately.
func (s *Session) SetOption(ctx context.Context, key string, v transform.Value) error {
	s.mu.Lock()
	name := s.selected
	s.mu.Unlock()

	m, ok := s.registry.Method(name)
	if !ok {
		return fmt.Errorf("%w: %s", transform.ErrNotFound, name)
	}
	spec, ok := m.Option(key)
	if !ok {
		return fmt.Errorf("%s has no option %q", name, key)
	}
	if !spec.Accepts(v) {
		return fmt.Errorf("option %q does not accept %s value %q", key, v.Kind, v.String())
	}

	s.debouncer.Cancel()

	s.mu.Lock()
	s.options[key] = v
	s.mu.Unlock()

	s.persist()
	s.Transform(ctx)
	return nil
}

// SetOptions sets several options of the selected transformation at once and
// transforms a single time. Nothing is applied if any value is rejected.
func (s *Session) SetOptions(ctx context.Context, opts transform.Options) error {
	s.mu.Lock()
	name := s.selected
	s.mu.Unlock()

	m, ok := s.registry.Method(name)
	if !ok {
		return fmt.Errorf("%w: %s", transform.ErrNotFound, name)
	}

	var errs []error
	for key, v := range opts {
		spec, ok := m.Option(key)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%s has no option %q", name, key))
		case !spec.Accepts(v):
			errs = append(errs, fmt.Errorf("option %q does not accept %s value %q", key, v.Kind, v.String()))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.debouncer.Cancel()

	s.mu.Lock()
	for key, v := range opts {
		s.options[key] = v
	}
	s.mu.Unlock()

	s.persist()
	s.Transform(ctx)
	return nil
}

// QuickTransform adds name to the previews and selects it.
func (s *Session) QuickTransform(ctx context.Context, name string) {
	if s.previews.Promote(name) {
		s.refreshPreviews(ctx)
	}
	s.SetSelectedTransformation(ctx, name)
}

// Transform applies the selected transformation to the input. Overlapping
// calls are allowed; only the most recently started call updates the
// output and error.
func (s *Session) Transform(ctx context.Context) {
	s.mu.Lock()
	s.seq++
	seq := s.seq

	if s.input == "" {
		s.output = ""
		s.errMsg = ""
		s.mu.Unlock()
		s.notify()
		return
	}

	input, name, opts := s.input, s.selected, s.options.Clone()
	s.processing++
	s.mu.Unlock()
	s.notify()

	var (
		out string
		err error
	)
	if !s.registry.Has(name) {
		err = fmt.Errorf("%w: %s", transform.ErrNotFound, name)
	} else {
		tctx, cancel := context.WithTimeout(ctx, s.timeout)
		out, err = s.registry.Transform(tctx, name, input, opts)
		if err == nil {
			err = tctx.Err()
		}
		cancel()
	}

	s.mu.Lock()
	s.processing--
	switch {
	case seq != s.seq:
		s.log.Debug().Uint64("seq", seq).Str("transformation", name).Msg("discarding stale result")
	case err != nil && errors.Is(err, context.Canceled):
		s.log.Debug().Str("transformation", name).Msg("transform cancelled")
	case err != nil:
		s.output = ""
		s.errMsg = errorMessage(name, err)
		s.log.Debug().Err(err).Str("transformation", name).Msg("transform failed")
	default:
		s.output = out
		s.errMsg = ""
		s.history.Push(history.NewEntry(input, out, name, opts, s.now()))
	}
	s.mu.Unlock()
	s.notify()
}

func errorMessage(name string, err error) string {
	var failure *transform.Failure
	switch {
	case errors.Is(err, transform.ErrNotFound):
		return fmt.Sprintf("Transformation '%s' not found", name)
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimedOut
	case errors.As(err, &failure):
		if failure.Err == nil || failure.Err.Error() == "" {
			return msgFailed
		}
		return failure.Error()
	case err.Error() != "":
		return err.Error()
	default:
		return msgFailed
	}
}

// Undo restores the previous history entry. It is a no-op at the oldest entry.
func (s *Session) Undo(ctx context.Context) bool {
	return s.move(ctx, s.history.Undo)
}

// Redo restores the next history entry. It is a no-op at the newest entry.
func (s *Session) Redo(ctx context.Context) bool {
	return s.move(ctx, s.history.Redo)
}

func (s *Session) move(ctx context.Context, step func() (history.Entry, bool)) bool {
	s.debouncer.Cancel()

	s.mu.Lock()
	e, ok := step()
	if !ok {
		s.mu.Unlock()
		return false
	}
	// supersede any transform still in flight
	s.seq++
	s.input = e.Input
	s.output = e.Output
	s.selected = e.Transformation
	s.options = e.Options.Clone()
	s.errMsg = ""
	s.mu.Unlock()

	s.refreshPreviews(ctx)
	s.persist()
	s.notify()
	return true
}

// ClearHistory drops every history entry.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	s.history.Clear()
	s.mu.Unlock()
	s.notify()
}

// CopyOutput writes the output to the clipboard and raises the copied flag
// for a short time. Empty output is not copied.
func (s *Session) CopyOutput(ctx context.Context) {
	s.mu.Lock()
	out := s.output
	s.mu.Unlock()

	if out == "" {
		return
	}
	if s.clipboard == nil {
		s.setError("Clipboard is not available")
		return
	}

	if err := s.clipboard.WriteText(ctx, out); err != nil {
		s.log.Debug().Err(err).Msg("copy failed")
		s.setError(fmt.Sprintf("Failed to copy: %v", err))
		return
	}

	s.mu.Lock()
	s.copied = true
	if s.copiedTimer != nil {
		s.copiedTimer.Stop()
	}
	s.copiedTimer = time.AfterFunc(s.reset, func() {
		s.mu.Lock()
		s.copied = false
		s.mu.Unlock()
		s.notify()
	})
	s.mu.Unlock()
	s.notify()
}

// PasteInput replaces the input with the clipboard contents.
func (s *Session) PasteInput(ctx context.Context) {
	if s.clipboard == nil {
		s.setError("Clipboard is not available")
		return
	}

	text, err := s.clipboard.ReadText(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("paste failed")
		s.setError(fmt.Sprintf("Failed to paste: %v", err))
		return
	}
	s.SetInputText(ctx, text)
}

// SwapTexts exchanges input and output, then transforms the new input with
// the selected transformation.
func (s *Session) SwapTexts(ctx context.Context) {
	s.debouncer.Cancel()

	s.mu.Lock()
	s.input, s.output = s.output, s.input
	s.mu.Unlock()

	s.refreshPreviews(ctx)
	s.Transform(ctx)
}

// ClearAll empties input, output and error. History and the selection are
// kept.
func (s *Session) ClearAll(ctx context.Context) {
	s.debouncer.Cancel()

	s.mu.Lock()
	s.seq++
	s.input = ""
	s.output = ""
	s.errMsg = ""
	s.mu.Unlock()

	s.refreshPreviews(ctx)
	s.notify()
}

// LoadFile reads r as the new input. A read failure sets the error and
// leaves the input untouched.
func (s *Session) LoadFile(ctx context.Context, r io.Reader) {
	data, err := io.ReadAll(r)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.log.Debug().Err(err).Msg("load file failed")
		s.setError(fmt.Sprintf("Failed to read file: %v", err))
		return
	}
	s.SetInputText(ctx, string(data))
}

// LoadPath opens path and loads it with LoadFile.
func (s *Session) LoadPath(ctx context.Context, path string) {
	f, err := os.Open(path)
	if err != nil {
		s.log.Debug().Err(err).Str("path", path).Msg("open file failed")
		s.setError(fmt.Sprintf("Failed to read file: %v", err))
		return
	}
	defer func() { _ = f.Close() }()

	s.LoadFile(ctx, f)
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
	s.notify()
}

// Restore loads the persisted selection. Missing or unreadable state leaves
// the defaults in place.
func (s *Session) Restore(ctx context.Context) {
	if s.store == nil {
		return
	}

	snap, err := state.Load(ctx, s.store)
	if err != nil {
		if !errors.Is(err, state.ErrKeyNotFound) {
			s.log.Debug().Err(err).Msg("failed to restore state")
		}
		return
	}

	m, ok := s.registry.Method(snap.Selected)
	if !ok {
		s.log.Debug().Str("selected", snap.Selected).Msg("ignoring unknown persisted transformation")
		return
	}

	s.mu.Lock()
	s.selected = m.Name
	s.options = m.Resolve(snap.Options)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) persist() {
	if s.store == nil {
		return
	}

	s.mu.Lock()
	snap := state.Snapshot{Selected: s.selected, Options: s.options.Clone()}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := state.Save(ctx, s.store, snap); err != nil {
		s.log.Debug().Err(err).Msg("failed to persist state")
	}
}

// Close cancels pending work and waits for in-flight transforms.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.copiedTimer != nil {
		s.copiedTimer.Stop()
	}
	s.mu.Unlock()

	s.debouncer.Cancel()
	s.cancel()
	s.wg.Wait()
}
