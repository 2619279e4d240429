package store

import (
	"context"
	"time"
)

// RoomEventKind labels an entry in the room journal.
type RoomEventKind string

const (
	RoomEventCreated   RoomEventKind = "room_created"
	RoomEventDestroyed RoomEventKind = "room_destroyed"
	RoomEventJoined    RoomEventKind = "member_joined"
	RoomEventLeft      RoomEventKind = "member_left"
	RoomEventCommitted RoomEventKind = "stroke_committed"
	RoomEventUndo      RoomEventKind = "undo"
	RoomEventRedo      RoomEventKind = "redo"
	RoomEventCleared   RoomEventKind = "clear"
)

// RoomEvent is an audit record of something that happened in a live room.
// Journal rows are write-only from the hub's perspective: room state is never
// rebuilt from them.
type RoomEvent struct {
	ID        int64
	RoomID    string
	Kind      RoomEventKind
	ClientID  string
	UserID    string
	StrokeID  string
	Cursor    int
	CreatedAt time.Time
}

// Journal persists room events.
type Journal interface {
	// Record appends an event to the journal.
	Record(ctx context.Context, ev *RoomEvent) error

	// ListRoomEvents returns the newest events of a room, newest first.
	ListRoomEvents(ctx context.Context, roomID string, limit int) ([]*RoomEvent, error)

	// Close closes the underlying storage.
	Close() error
}
