package tui

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpQueue_RunsInOrder(t *testing.T) {
	q := newOpQueue()

	var (
		mu  sync.Mutex
		got []int
	)
	for i := range 5 {
		q.do(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}, false)
	}
	q.close()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestOpQueue_NeverBlocksAndCoalescesInput(t *testing.T) {
	q := newOpQueue()
	t.Cleanup(q.close)

	release := make(chan struct{})
	started := make(chan struct{})
	q.do(func() {
		close(started)
		<-release
	}, false)
	<-started

	var (
		mu  sync.Mutex
		ran []int
	)
	cmds := make(chan struct{})
	go func() {
		defer close(cmds)
		for i := range 500 {
			q.doLatest(opSetInput, func() {
				mu.Lock()
				ran = append(ran, i)
				mu.Unlock()
			}, false)
		}
	}()

	select {
	case <-cmds:
	case <-time.After(time.Second):
		t.Fatal("queueing blocked behind a stuck operation")
	}

	close(release)
	q.close()

	assert.Equal(t, []int{499}, ran)
}

func TestOpQueue_CoalescedCommandsAllFinish(t *testing.T) {
	q := newOpQueue()
	t.Cleanup(q.close)

	release := make(chan struct{})
	q.do(func() { <-release }, false)

	first := q.doLatest(opSetInput, func() {}, false)
	second := q.doLatest(opSetInput, func() {}, true)
	close(release)

	assert.Equal(t, opDoneMsg{}, first())
	assert.Equal(t, opDoneMsg{syncInput: true}, second())
}

func TestOpQueue_DoesNotCoalesceAcrossOtherOps(t *testing.T) {
	q := newOpQueue()

	release := make(chan struct{})
	q.do(func() { <-release }, false)

	var got []string
	q.doLatest(opSetInput, func() { got = append(got, "a") }, false)
	q.do(func() { got = append(got, "undo") }, true)
	q.doLatest(opSetInput, func() { got = append(got, "b") }, false)

	close(release)
	q.close()

	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "undo", "b"}, got)
}

func TestOpQueue_ClosedReturnsNil(t *testing.T) {
	q := newOpQueue()
	q.close()
	assert.Nil(t, q.do(func() {}, false))
}
