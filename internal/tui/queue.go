package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// opKey names a kind of queued operation whose pending entries collapse into
// the most recent one.
type opKey string

const opSetInput opKey = "set-input"

type queuedOp struct {
	key      opKey
	fn       func()
	finished []chan struct{}
}

// opQueue runs session operations one at a time, in the order they were
// queued, off the Bubble Tea update loop. Queueing never blocks.
type opQueue struct {
	mu      sync.Mutex
	pending []*queuedOp
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func newOpQueue() *opQueue {
	q := &opQueue{wake: make(chan struct{}, 1), done: make(chan struct{})}
	go q.run()
	return q
}

func (q *opQueue) run() {
	defer close(q.done)
	for {
		op, ok := q.next()
		if !ok {
			return
		}
		op.fn()
		for _, ch := range op.finished {
			close(ch)
		}
	}
}

// next waits for an operation. It reports false once the queue is closed and
// drained.
func (q *opQueue) next() (*queuedOp, bool) {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			op := q.pending[0]
			q.pending = q.pending[1:]
			q.mu.Unlock()
			return op, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil, false
		}
		<-q.wake
	}
}

// do queues fn and returns a command that reports when it has run.
// syncInput asks the model to reload the input from the session afterwards.
func (q *opQueue) do(fn func(), syncInput bool) tea.Cmd {
	return q.doLatest("", fn, syncInput)
}

// doLatest queues fn like do. When key is set and the last waiting operation
// has the same key, fn replaces it and both commands finish together.
func (q *opQueue) doLatest(key opKey, fn func(), syncInput bool) tea.Cmd {
	finished := make(chan struct{})

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}

	if n := len(q.pending); key != "" && n > 0 && q.pending[n-1].key == key {
		last := q.pending[n-1]
		last.fn = fn
		last.finished = append(last.finished, finished)
	} else {
		q.pending = append(q.pending, &queuedOp{key: key, fn: fn, finished: []chan struct{}{finished}})
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	return func() tea.Msg {
		<-finished
		return opDoneMsg{syncInput: syncInput}
	}
}

// close runs what is already queued and stops the worker.
func (q *opQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}
