package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/hay-kot/casekit/internal/core/state"
)

const checkKey = "doctor.check"

// StoreCheck round-trips a sample value through the state store.
type StoreCheck struct {
	store   state.Store
	backend string
}

func NewStoreCheck(store state.Store, backend string) *StoreCheck {
	return &StoreCheck{store: store, backend: backend}
}

func (c *StoreCheck) Name() string {
	return "State Store"
}

func (c *StoreCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	sample := []byte(`{"ok":true}`)
	if err := c.store.Set(ctx, checkKey, sample); err != nil {
		result.add("Write", StatusFail, err.Error())
		return result
	}

	got, err := c.store.Get(ctx, checkKey)
	switch {
	case err != nil:
		result.add("Read", StatusFail, err.Error())
	case !sameJSON(got, sample):
		result.add("Read", StatusFail, fmt.Sprintf("read back %q", got))
	default:
		result.add("Read/write", StatusPass, c.describe())
	}

	if err := c.store.Delete(ctx, checkKey); err != nil {
		result.add("Cleanup", StatusWarn, err.Error())
	}

	if _, err := state.Load(ctx, c.store); err != nil {
		if errors.Is(err, state.ErrKeyNotFound) {
			result.add("Saved selection", StatusPass, "none saved, defaults apply")
		} else {
			result.add("Saved selection", StatusWarn, err.Error()+" (defaults apply)")
		}
	} else {
		result.add("Saved selection", StatusPass, "")
	}

	return result
}

// describe names the backend and, for file stores, the file.
func (c *StoreCheck) describe() string {
	if ps, ok := c.store.(interface{ Path() string }); ok {
		return c.backend + " " + ps.Path()
	}
	return c.backend
}

// sameJSON reports whether a and b decode to the same value. Stores may
// reformat what they keep.
func sameJSON(a, b []byte) bool {
	var va, vb any
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}
