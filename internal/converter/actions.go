package converter

import (
	"context"

	"github.com/hay-kot/casekit/internal/core/shortcut"
)

// HandleAction runs the session operation bound to a. It returns false for
// actions the session does not own, such as focusing the method search.
func (s *Session) HandleAction(ctx context.Context, a shortcut.Action) bool {
	switch a {
	case shortcut.ActionTransform:
		s.debouncer.Cancel()
		s.Transform(ctx)
	case shortcut.ActionUndo:
		s.Undo(ctx)
	case shortcut.ActionRedo:
		s.Redo(ctx)
	case shortcut.ActionCopy:
		s.CopyOutput(ctx)
	case shortcut.ActionSwap:
		s.SwapTexts(ctx)
	case shortcut.ActionClear:
		s.ClearAll(ctx)
	case shortcut.ActionClearHistory:
		s.ClearHistory()
	default:
		return false
	}
	return true
}
