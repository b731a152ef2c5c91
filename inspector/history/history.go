/*
Package history implements a linear undo/redo log of edit actions.

Actions which follow each other and share a non-empty merge key are merged
into one entry, so that a burst of edits to the same target is undone in
one step, back to the state before the first of them.

Clients may group actions by marking undoable states. Undo reverts every
action back to the previous mark, redo re-applies every action up to the
next one.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package history

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'webinspect.history'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.history")
}

// Action is an edit operation which can be reverted.
type Action interface {
	Name() string
	MergeKey() string // actions with the same non-empty merge key are merged
	Perform() error
	Undo() error
	Redo() error
	Merge(next Action) // absorb a performed action with the same merge key
}

// mark separates groups of actions.
type mark struct{}

func (mark) Name() string { return "mark" }
func (mark) MergeKey() string { return "" }
func (mark) Perform() error { return nil }
func (mark) Undo() error { return nil }
func (mark) Redo() error { return nil }
func (mark) Merge(Action) {}

func isMark(a Action) bool {
	_, ok := a.(mark)
	return ok
}

// History is a linear log of actions with a cursor. Entries before the
// cursor have been performed, entries after it have been undone.
type History struct {
	entries []Action
	cursor  int
}

// New creates an empty history.
func New() *History {
	return &History{}
}

// Len returns the number of entries, not counting marks.
func (h *History) Len() int {
	n := 0
	for _, a := range h.entries {
		if !isMark(a) {
			n++
		}
	}
	return n
}

// CanUndo is true if there is an action to undo.
func (h *History) CanUndo() bool {
	for i := h.cursor - 1; i >= 0; i-- {
		if !isMark(h.entries[i]) {
			return true
		}
	}
	return false
}

// CanRedo is true if there is an action to redo.
func (h *History) CanRedo() bool {
	for i := h.cursor; i < len(h.entries); i++ {
		if !isMark(h.entries[i]) {
			return true
		}
	}
	return false
}

// Perform performs an action and records it. If the action fails, nothing
// is recorded. The redo tail is dropped in any case of success.
func (h *History) Perform(a Action) error {
	if err := a.Perform(); err != nil {
		return err
	}
	h.entries = h.entries[:h.cursor]
	if key := a.MergeKey(); key != "" && h.cursor > 0 {
		if last := h.entries[h.cursor-1]; last.MergeKey() == key {
			last.Merge(a)
			tracer().Debugf("history: merged %s into previous entry", a.Name())
			return nil
		}
	}
	h.entries = append(h.entries, a)
	h.cursor++
	tracer().Debugf("history: performed %s, %d entries", a.Name(), len(h.entries))
	return nil
}

// MarkUndoableState ends a group of actions.
func (h *History) MarkUndoableState() {
	h.entries = h.entries[:h.cursor]
	if h.cursor > 0 && isMark(h.entries[h.cursor-1]) {
		return
	}
	h.entries = append(h.entries, mark{})
	h.cursor++
}

// Undo reverts actions back to the previous mark. If an action fails to
// undo, the cursor stays on it and its error is returned.
func (h *History) Undo() error {
	for h.cursor > 0 && isMark(h.entries[h.cursor-1]) {
		h.cursor--
	}
	for h.cursor > 0 {
		a := h.entries[h.cursor-1]
		if isMark(a) {
			break
		}
		if err := a.Undo(); err != nil {
			return fmt.Errorf("cannot undo %s: %w", a.Name(), err)
		}
		h.cursor--
		tracer().Debugf("history: undone %s", a.Name())
	}
	return nil
}

// Redo re-applies actions up to the next mark. If an action fails to redo,
// the cursor stays in front of it and its error is returned.
func (h *History) Redo() error {
	for h.cursor < len(h.entries) && isMark(h.entries[h.cursor]) {
		h.cursor++
	}
	for h.cursor < len(h.entries) {
		a := h.entries[h.cursor]
		if isMark(a) {
			break
		}
		if err := a.Redo(); err != nil {
			return fmt.Errorf("cannot redo %s: %w", a.Name(), err)
		}
		h.cursor++
		tracer().Debugf("history: redone %s", a.Name())
	}
	return nil
}

// Reset drops all entries.
func (h *History) Reset() {
	h.entries = nil
	h.cursor = 0
}
