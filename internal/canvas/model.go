// Package canvas holds the drawing domain: strokes, users and the shared
// undo/redo history of a room.
package canvas

import "math"

// Tool is the instrument a stroke was drawn with.
type Tool string

const (
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
)

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	return t == ToolBrush || t == ToolEraser
}

// Point is a position on the canvas.
type Point struct {
	X float64
	Y float64
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// MinStrokePoints is the smallest number of points a committed stroke may have.
// Single clicks produce no visible mark.
const MinStrokePoints = 2

// Stroke is a completed freehand drawing action. It is never mutated after commit.
type Stroke struct {
	ID        string
	Points    []Point
	Color     string
	Width     float64
	Tool      Tool
	UserID    string
	Timestamp int64 // unix milliseconds, as produced by the drawing client
}

// Valid reports whether the stroke may enter a history log.
func (s Stroke) Valid() bool {
	if s.ID == "" || len(s.Points) < MinStrokePoints || !s.Tool.Valid() {
		return false
	}
	if !(s.Width > 0) || math.IsInf(s.Width, 0) {
		return false
	}
	for _, p := range s.Points {
		if !p.finite() {
			return false
		}
	}
	return true
}

// StrokePreview is a partial stroke relayed while the author is still drawing.
// It never touches room state.
type StrokePreview struct {
	ID     string
	Points []Point
	Color  string
	Width  float64
	Tool   Tool
}

// ActionType is the kind of a history entry.
type ActionType string

const (
	ActionAdd    ActionType = "add"
	ActionRemove ActionType = "remove"
)

// HistoryEntry is one committed action in a room's history log.
type HistoryEntry struct {
	Type      ActionType
	Stroke    Stroke
	UserID    string
	Timestamp int64
}

// User is a room member as shown to other participants.
type User struct {
	ID        string
	ConnID    string
	Name      string
	Color     string
	IsDrawing bool
}

// CursorPosition is an ephemeral pointer location of a member.
type CursorPosition struct {
	UserID   string
	ConnID   string
	Position Point
	Color    string
	Name     string
}

// Snapshot is the derived visible state handed to a newly joined member.
type Snapshot struct {
	Strokes []Stroke
	Cursor  int
}
