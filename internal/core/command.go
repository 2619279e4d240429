package core

import "github.com/vovakirdan/wirecanvas-server/internal/canvas"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom attaches the client to a room, leaving any previous one.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom detaches the client from its room.
	CommandLeaveRoom
	// CommandStrokePreview relays an in-progress stroke.
	CommandStrokePreview
	// CommandStrokeComplete commits a finished stroke to the room history.
	CommandStrokeComplete
	// CommandCursorMove relays the pointer position.
	CommandCursorMove
	// CommandUndo steps the shared history back.
	CommandUndo
	// CommandRedo steps the shared history forward.
	CommandRedo
	// CommandClear wipes the room canvas and history.
	CommandClear
	// CommandDrawingState toggles the member's drawing indicator.
	CommandDrawingState
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoinRoom:
		return "join"
	case CommandLeaveRoom:
		return "leave"
	case CommandStrokePreview:
		return "stroke_preview"
	case CommandStrokeComplete:
		return "stroke_complete"
	case CommandCursorMove:
		return "cursor_move"
	case CommandUndo:
		return "undo"
	case CommandRedo:
		return "redo"
	case CommandClear:
		return "clear"
	case CommandDrawingState:
		return "drawing_state"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
type Command struct {
	Kind      CommandKind
	Room      string
	User      canvas.User
	Stroke    canvas.Stroke
	Preview   canvas.StrokePreview
	Position  canvas.Point
	IsDrawing bool
}
