package core

import "github.com/vovakirdan/wirecanvas-server/internal/canvas"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventCanvasState delivers the room snapshot to a member that just joined.
	EventCanvasState EventKind = iota
	// EventUsersUpdate carries the full member list.
	EventUsersUpdate
	// EventStrokePreview relays another member's in-progress stroke.
	EventStrokePreview
	// EventStrokeComplete carries a newly committed stroke.
	EventStrokeComplete
	// EventCursorMove relays another member's pointer.
	EventCursorMove
	// EventUndoApplied reports the cursor after an undo.
	EventUndoApplied
	// EventRedoApplied reports the cursor and stroke after a redo.
	EventRedoApplied
	// EventCleared reports that the room canvas was wiped.
	EventCleared
	// EventError notifies a client about a domain error.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventCanvasState:
		return "canvas_state"
	case EventUsersUpdate:
		return "users_update"
	case EventStrokePreview:
		return "stroke_preview"
	case EventStrokeComplete:
		return "stroke_complete"
	case EventCursorMove:
		return "cursor_move"
	case EventUndoApplied:
		return "undo_applied"
	case EventRedoApplied:
		return "redo_applied"
	case EventCleared:
		return "cleared"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Ephemeral events may be dropped for a slow client without breaking its replica.
func (k EventKind) Ephemeral() bool {
	return k == EventStrokePreview || k == EventCursorMove
}

// Event is sent to clients to describe what happened in a room.
type Event struct {
	Kind     EventKind
	Room     string
	Snapshot *canvas.Snapshot     // EventCanvasState
	Users    []canvas.User        // EventUsersUpdate
	From     canvas.User          // sender of a relayed preview
	Preview  canvas.StrokePreview // EventStrokePreview
	Stroke   canvas.Stroke        // EventStrokeComplete, EventRedoApplied
	Cursor   int                  // EventUndoApplied, EventRedoApplied
	StrokeID string               // EventUndoApplied
	Pointer  *canvas.CursorPosition
	Error    *CoreError
}
