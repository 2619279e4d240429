package canvas

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func stroke(id string, points int) Stroke {
	pts := make([]Point, points)
	for i := range pts {
		pts[i] = Point{X: float64(i), Y: float64(i * 2)}
	}
	return Stroke{
		ID:        id,
		Points:    pts,
		Color:     "#000000",
		Width:     4,
		Tool:      ToolBrush,
		UserID:    "alice",
		Timestamp: 1700000000000,
	}
}

func ids(strokes []Stroke) []string {
	out := make([]string, 0, len(strokes))
	for _, s := range strokes {
		out = append(out, s.ID)
	}
	return out
}

func TestHistory_CommitAppendsAndAdvancesCursor(t *testing.T) {
	req := require.New(t)
	h := NewHistory()

	_, ok := h.Commit(stroke("s1", 3), "alice")
	req.True(ok)

	req.Equal(0, h.Cursor())
	req.Equal(1, h.Len())
	req.Equal([]string{"s1"}, ids(h.Visible()))
	req.Equal(ActionAdd, h.Entries()[0].Type)
	req.Equal("alice", h.Entries()[0].UserID)
}

func TestHistory_CommitRejectsInvalidStrokes(t *testing.T) {
	h := NewHistory()

	bad := []Stroke{
		stroke("single", 1),
		stroke("", 3),
		func() Stroke { s := stroke("w", 3); s.Width = 0; return s }(),
		func() Stroke { s := stroke("t", 3); s.Tool = "spray"; return s }(),
	}
	for _, s := range bad {
		_, ok := h.Commit(s, "alice")
		require.False(t, ok, "stroke %q should be rejected", s.ID)
	}
	require.Equal(t, -1, h.Cursor())
	require.Empty(t, h.Visible())
}

func TestHistory_CommitIgnoresDuplicateAppliedID(t *testing.T) {
	req := require.New(t)
	h := NewHistory()

	_, ok := h.Commit(stroke("s1", 2), "alice")
	req.True(ok)
	_, ok = h.Commit(stroke("s1", 2), "alice")
	req.False(ok)
	req.Equal(1, h.Len())

	// Once undone, the id lives only in the redo future and may be reused.
	_, ok = h.Undo()
	req.True(ok)
	_, ok = h.Commit(stroke("s1", 2), "bob")
	req.True(ok)
	req.Equal(1, h.Len())
	req.Equal("bob", h.Entries()[0].UserID)
}

func TestHistory_CommitTruncatesFuture(t *testing.T) {
	req := require.New(t)
	h := NewHistory()

	h.Commit(stroke("s1", 3), "alice")
	h.Commit(stroke("s2", 3), "alice")
	req.Equal(1, h.Cursor())

	res, ok := h.Undo()
	req.True(ok)
	req.Equal(0, res.Cursor)
	req.Equal(ActionAdd, res.Type)
	req.Equal("s2", res.StrokeID)
	req.Equal([]string{"s1"}, ids(h.Visible()))

	h.Commit(stroke("s3", 3), "alice")
	req.Equal(1, h.Cursor())
	req.Equal(2, h.Len())
	req.Equal([]string{"s1", "s3"}, ids(h.Visible()))

	// s2 is gone for good.
	_, ok = h.Redo()
	req.False(ok)
	req.Equal([]string{"s1", "s3"}, ids(h.Visible()))
}

func TestHistory_UndoRedoInverse(t *testing.T) {
	req := require.New(t)
	h := NewHistory()
	for _, id := range []string{"a", "b", "c", "d"} {
		h.Commit(stroke(id, 4), "alice")
	}

	for range 4 {
		before := h.Visible()
		_, ok := h.Undo()
		req.True(ok)
		res, ok := h.Redo()
		req.True(ok)
		req.Equal(before, h.Visible())
		req.Equal(before[len(before)-1].ID, res.Stroke.ID)
		h.Undo()
	}
	req.Equal(-1, h.Cursor())
}

func TestHistory_BoundaryOpsAreNoops(t *testing.T) {
	req := require.New(t)
	h := NewHistory()

	_, ok := h.Undo()
	req.False(ok)
	_, ok = h.Redo()
	req.False(ok)
	req.Equal(-1, h.Cursor())

	h.Commit(stroke("s1", 2), "alice")
	_, ok = h.Redo()
	req.False(ok)
	req.Equal(0, h.Cursor())

	h.Undo()
	_, ok = h.Undo()
	req.False(ok)
	req.Equal(-1, h.Cursor())
	req.Equal(1, h.Len())
}

func TestHistory_ClearDropsEverything(t *testing.T) {
	req := require.New(t)
	h := NewHistory()
	h.Commit(stroke("s1", 2), "alice")
	h.Commit(stroke("s2", 2), "bob")
	h.Undo()

	h.Clear()

	req.Equal(-1, h.Cursor())
	req.Zero(h.Len())
	req.Empty(h.Visible())
	_, ok := h.Redo()
	req.False(ok)
}

func TestHistory_VisibleHonorsRemoveEntries(t *testing.T) {
	req := require.New(t)
	h := NewHistory()
	h.Commit(stroke("s1", 2), "alice")
	h.Commit(stroke("s2", 2), "alice")
	h.entries = append(h.entries, HistoryEntry{Type: ActionRemove, Stroke: stroke("s1", 2)})
	h.cursor = 2

	req.Equal([]string{"s2"}, ids(h.Visible()))

	res, ok := h.Undo()
	req.True(ok)
	req.Equal(ActionRemove, res.Type)
	req.Equal("s1", res.StrokeID)
	req.Equal([]string{"s1", "s2"}, ids(h.Visible()))

	redone, ok := h.Redo()
	req.True(ok)
	req.Equal(2, redone.Cursor)
	req.Equal(ActionRemove, redone.Type)
	req.Equal("s1", redone.Stroke.ID)
	req.Equal([]string{"s2"}, ids(h.Visible()))
}

func TestHistory_SnapshotMatchesDerivedState(t *testing.T) {
	req := require.New(t)
	h := NewHistory()
	h.Commit(stroke("s1", 2), "alice")
	h.Commit(stroke("s2", 2), "bob")
	h.Undo()

	snap := h.Snapshot()
	req.Equal(0, snap.Cursor)
	req.Equal(h.Visible(), snap.Strokes)
}

func TestHistory_CommitStampsAuthor(t *testing.T) {
	h := NewHistory()
	s := stroke("s1", 2)
	s.UserID = "mallory"

	committed, ok := h.Commit(s, "bob")
	require.True(t, ok)
	require.Equal(t, "bob", committed.UserID)
	require.Equal(t, "bob", h.Visible()[0].UserID)
}
