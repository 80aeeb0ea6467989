// Package utils holds small helpers shared by the CLI entrypoint.
package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter buffers writes while the terminal is owned by the TUI and
// replays them once it exits.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *DeferredWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// Flush writes the buffered output to dst and empties the buffer.
func (w *DeferredWriter) Flush(dst io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.buf.WriteTo(dst)
	return err
}
