package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	ProtocolVersion = 1

	InboundTypeJoin           = "join"
	InboundTypeLeave          = "leave"
	InboundTypeStrokePreview  = "stroke_preview"
	InboundTypeStrokeComplete = "stroke_complete"
	InboundTypeCursorMove     = "cursor_move"
	InboundTypeUndo           = "undo"
	InboundTypeRedo           = "redo"
	InboundTypeClear          = "clear"
	InboundTypeDrawingState   = "drawing_state"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventCanvasState    = "canvas_state"
	EventUsersUpdate    = "users_update"
	EventStrokePreview  = "stroke_preview"
	EventStrokeComplete = "stroke_complete"
	EventCursorMove     = "cursor_move"
	EventUndoApplied    = "undo_applied"
	EventRedoApplied    = "redo_applied"
	EventCleared        = "cleared"
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// User describes a room member.
type User struct {
	ID        string `json:"id" validate:"max=128"`
	ConnID    string `json:"connId,omitempty"`
	Name      string `json:"name" validate:"max=64"`
	Color     string `json:"color" validate:"max=32"`
	IsDrawing bool   `json:"isDrawing"`
}

// JoinData requests to join a room.
type JoinData struct {
	RoomID   string `json:"roomId" validate:"required,max=128"`
	User     User   `json:"user"`
	Protocol int    `json:"protocol,omitempty" validate:"gte=0"`
}

// Stroke is a completed drawing action.
type Stroke struct {
	ID        string  `json:"id" validate:"required,max=128"`
	Points    []Point `json:"points" validate:"min=2"`
	Color     string  `json:"color" validate:"max=32"`
	Width     float64 `json:"width" validate:"gt=0"`
	Tool      string  `json:"tool" validate:"oneof=brush eraser"`
	UserID    string  `json:"userId"`
	Timestamp int64   `json:"timestamp"`
}

// StrokePreview is a partial stroke sent while drawing.
type StrokePreview struct {
	ID     string  `json:"id,omitempty"`
	Points []Point `json:"points"`
	Color  string  `json:"color,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Tool   string  `json:"tool,omitempty" validate:"omitempty,oneof=brush eraser"`
}

// DrawingStateData toggles the drawing indicator. Clients may also send a bare boolean.
type DrawingStateData struct {
	IsDrawing bool `json:"isDrawing"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventCanvasStateData is the snapshot sent to a member that just joined.
type EventCanvasStateData struct {
	RoomID  string   `json:"roomId"`
	Strokes []Stroke `json:"strokes"`
	Cursor  int      `json:"cursor"`
}

// EventUsersUpdateData is the full member list of a room.
type EventUsersUpdateData struct {
	RoomID string `json:"roomId"`
	Users  []User `json:"users"`
}

// EventStrokePreviewData relays a preview with its author attached.
type EventStrokePreviewData struct {
	StrokePreview
	UserID string `json:"userId"`
	ConnID string `json:"connId"`
}

// EventCursorMoveData relays a member's pointer.
type EventCursorMoveData struct {
	UserID   string `json:"userId"`
	ConnID   string `json:"connId"`
	Position Point  `json:"position"`
	Color    string `json:"color"`
	Name     string `json:"name"`
}

// EventUndoAppliedData carries the new cursor and the stroke that disappeared.
type EventUndoAppliedData struct {
	RoomID   string `json:"roomId"`
	Cursor   int    `json:"cursor"`
	StrokeID string `json:"strokeId,omitempty"`
}

// EventRedoAppliedData carries the new cursor and the re-applied stroke.
type EventRedoAppliedData struct {
	RoomID string `json:"roomId"`
	Cursor int    `json:"cursor"`
	Stroke Stroke `json:"stroke"`
}

// EventClearedData reports a wiped canvas.
type EventClearedData struct {
	RoomID string `json:"roomId"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
