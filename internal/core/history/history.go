// Package history implements the bounded, linear undo/redo log of
// transformations applied in a converter session.
package history

import (
	"time"

	"github.com/hay-kot/casekit/internal/core/transform"
)

// DefaultMaxSize is the number of entries kept when no size is configured.
const DefaultMaxSize = 50

// Entry is an immutable snapshot of one successful transformation.
type Entry struct {
	Input          string            `json:"input"`
	Output         string            `json:"output"`
	Transformation string            `json:"transformation"`
	Options        transform.Options `json:"options"`
	Timestamp      time.Time         `json:"timestamp"`
}

// NewEntry builds an entry holding its own copy of opts.
func NewEntry(input, output, transformation string, opts transform.Options, at time.Time) Entry {
	return Entry{
		Input:          input,
		Output:         output,
		Transformation: transformation,
		Options:        opts.Clone(),
		Timestamp:      at,
	}
}

// Stack is a bounded list of entries with a cursor marking the current one.
// Stack is not safe for concurrent use; its owner serializes access.
type Stack struct {
	entries []Entry
	index   int
	maxSize int
}

// NewStack creates an empty stack holding at most maxSize entries.
func NewStack(maxSize int) *Stack {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Stack{index: -1, maxSize: maxSize}
}

// Push discards every entry after the cursor, appends e, drops the oldest
// entries beyond the size bound, and moves the cursor to the new tail.
func (s *Stack) Push(e Entry) {
	s.entries = append(s.entries[:s.index+1], e)

	if excess := len(s.entries) - s.maxSize; excess > 0 {
		s.entries = append([]Entry(nil), s.entries[excess:]...)
	}

	s.index = len(s.entries) - 1
}

// Undo moves the cursor back one entry and returns it. At the oldest entry
// it returns false and leaves the cursor where it is.
func (s *Stack) Undo() (Entry, bool) {
	if !s.CanUndo() {
		return Entry{}, false
	}
	s.index--
	return s.entries[s.index], true
}

// Redo moves the cursor forward one entry and returns it. At the newest
// entry it returns false and leaves the cursor where it is.
func (s *Stack) Redo() (Entry, bool) {
	if !s.CanRedo() {
		return Entry{}, false
	}
	s.index++
	return s.entries[s.index], true
}

// Current returns the entry under the cursor.
func (s *Stack) Current() (Entry, bool) {
	if s.index < 0 {
		return Entry{}, false
	}
	return s.entries[s.index], true
}

func (s *Stack) CanUndo() bool { return s.index > 0 }
func (s *Stack) CanRedo() bool { return s.index < len(s.entries)-1 }
func (s *Stack) Len() int      { return len(s.entries) }
func (s *Stack) Index() int    { return s.index }
func (s *Stack) MaxSize() int  { return s.maxSize }

// Entries returns a copy of the log, oldest first.
func (s *Stack) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear removes every entry.
func (s *Stack) Clear() {
	s.entries = nil
	s.index = -1
}
