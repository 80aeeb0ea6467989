package converter

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_OnlyLastCallFires(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { calls.Add(1) })

	for range 5 {
		d.Call()
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, d.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(10*time.Millisecond, func() { calls.Add(1) })

	d.Call()
	d.Cancel()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load())
	assert.False(t, d.Pending())
}
