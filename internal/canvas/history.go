package canvas

import (
	"time"

	"github.com/samber/lo"
)

// History is the room-wide undo/redo state machine. State is the entry log plus
// a cursor into it; -1 means nothing is applied. Every member of a room shares
// one History, so any member may undo any other member's stroke.
//
// History is not safe for concurrent use; the owning room serializes access.
type History struct {
	entries []HistoryEntry
	cursor  int
	now     func() time.Time
}

// UndoResult describes an applied undo. Type and StrokeID come from the entry
// that was stepped over: undoing an add hides the stroke, undoing a remove
// shows it again.
type UndoResult struct {
	Cursor   int
	Type     ActionType
	StrokeID string
}

// RedoResult describes an applied redo. Stroke is the entry stroke; redoing a
// remove entry hides it.
type RedoResult struct {
	Cursor int
	Type   ActionType
	Stroke Stroke
}

// NewHistory returns an empty history with cursor -1.
func NewHistory() *History {
	return &History{cursor: -1, now: time.Now}
}

// Cursor returns the index of the last applied entry.
func (h *History) Cursor() int {
	return h.cursor
}

// Len returns the number of entries, including the redo future.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the log.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Commit appends an add entry for s and discards any redo future. Invalid
// strokes and strokes whose id is already applied are ignored. A non-empty
// userID replaces the author claimed by the stroke.
func (h *History) Commit(s Stroke, userID string) (Stroke, bool) {
	if !s.Valid() {
		return Stroke{}, false
	}
	applied := h.entries[:h.cursor+1]
	if lo.ContainsBy(applied, func(e HistoryEntry) bool { return e.Stroke.ID == s.ID }) {
		return Stroke{}, false
	}

	s.Points = append([]Point(nil), s.Points...)
	if userID != "" {
		s.UserID = userID
	}
	h.entries = append(applied, HistoryEntry{
		Type:      ActionAdd,
		Stroke:    s,
		UserID:    userID,
		Timestamp: h.now().UnixMilli(),
	})
	h.cursor = len(h.entries) - 1
	return s, true
}

// Undo steps the cursor back by one entry. It is a no-op at cursor -1.
func (h *History) Undo() (UndoResult, bool) {
	if h.cursor < 0 {
		return UndoResult{}, false
	}
	entry := h.entries[h.cursor]
	h.cursor--
	return UndoResult{Cursor: h.cursor, Type: entry.Type, StrokeID: entry.Stroke.ID}, true
}

// Redo re-applies the entry after the cursor. It is a no-op when the cursor is
// already at the last entry.
func (h *History) Redo() (RedoResult, bool) {
	if h.cursor >= len(h.entries)-1 {
		return RedoResult{}, false
	}
	h.cursor++
	entry := h.entries[h.cursor]
	return RedoResult{Cursor: h.cursor, Type: entry.Type, Stroke: entry.Stroke}, true
}

// Clear drops the whole log. It cannot be undone.
func (h *History) Clear() {
	h.entries = nil
	h.cursor = -1
}

// Visible derives the rendered strokes from the applied prefix of the log, in
// commit order.
func (h *History) Visible() []Stroke {
	visible := make([]Stroke, 0, h.cursor+1)
	for _, e := range h.entries[:h.cursor+1] {
		switch e.Type {
		case ActionAdd:
			visible = append(visible, e.Stroke)
		case ActionRemove:
			id := e.Stroke.ID
			visible = lo.Reject(visible, func(s Stroke, _ int) bool { return s.ID == id })
		}
	}
	return visible
}

// Snapshot returns the visible strokes with the current cursor.
func (h *History) Snapshot() Snapshot {
	return Snapshot{Strokes: h.Visible(), Cursor: h.cursor}
}
