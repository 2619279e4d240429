package core

import (
	"sync"

	"github.com/samber/lo"

	"github.com/vovakirdan/wirecanvas-server/internal/canvas"
	"github.com/vovakirdan/wirecanvas-server/internal/store"
)

// Room is the authoritative state of one canvas: its members and the shared
// history. Each method is a single operation executed under the room lock.
// Journal events are enqueued under the same lock, so they keep room order.
type Room struct {
	ID string

	mu       sync.Mutex
	members  map[*Client]*canvas.User
	order    []*Client
	history  *canvas.History
	recorder Recorder
}

// RoomInfo is a read-only summary of a live room.
type RoomInfo struct {
	ID      string
	Members int
	Strokes int
	History int
	Cursor  int
}

// NewRoom constructs an empty room with cursor -1.
func NewRoom(id string) *Room {
	return newRoom(id, nil)
}

func newRoom(id string, recorder Recorder) *Room {
	return &Room{
		ID:       id,
		members:  make(map[*Client]*canvas.User),
		history:  canvas.NewHistory(),
		recorder: recorder,
	}
}

// Snapshot returns the visible strokes derived from the history and cursor.
func (r *Room) Snapshot() canvas.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Snapshot()
}

// Info summarizes the room.
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{
		ID:      r.ID,
		Members: len(r.order),
		Strokes: len(r.history.Visible()),
		History: r.history.Len(),
		Cursor:  r.history.Cursor(),
	}
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order) == 0
}

// addMember registers c (or refreshes its user record), sends the snapshot to
// c only and the member list to everyone. It reports whether c is new.
func (r *Room) addMember(c *Client, user canvas.User) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existing := r.members[c]
	u := user
	r.members[c] = &u
	if !existing {
		r.order = append(r.order, c)
	}

	snap := r.history.Snapshot()
	r.sendTo(c, &Event{Kind: EventCanvasState, Room: r.ID, Snapshot: &snap})
	r.broadcastUsers()
	if !existing {
		r.record(store.RoomEventJoined, c, "", -1)
	}
	return !existing
}

// removeMember drops c and notifies the remaining members. It reports whether
// the room is now empty.
func (r *Room) removeMember(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[c]; !ok {
		return len(r.order) == 0
	}
	r.record(store.RoomEventLeft, c, "", -1)
	delete(r.members, c)
	r.order = lo.Without(r.order, c)
	r.broadcastUsers()
	return len(r.order) == 0
}

// commit appends s to the history and relays it to the other members.
func (r *Room) commit(c *Client, s canvas.Stroke) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	committed, ok := r.history.Commit(s, r.userOf(c).ID)
	if !ok {
		return false
	}
	r.broadcast(&Event{Kind: EventStrokeComplete, Room: r.ID, Stroke: committed}, c)
	r.record(store.RoomEventCommitted, c, committed.ID, r.history.Cursor())
	return true
}

func (r *Room) undo(c *Client) (canvas.UndoResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.history.Undo()
	if !ok {
		return res, false
	}
	r.broadcast(&Event{Kind: EventUndoApplied, Room: r.ID, Cursor: res.Cursor, StrokeID: res.StrokeID}, nil)
	r.record(store.RoomEventUndo, c, res.StrokeID, res.Cursor)
	return res, true
}

func (r *Room) redo(c *Client) (canvas.RedoResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.history.Redo()
	if !ok {
		return res, false
	}
	r.broadcast(&Event{Kind: EventRedoApplied, Room: r.ID, Cursor: res.Cursor, Stroke: res.Stroke}, nil)
	r.record(store.RoomEventRedo, c, res.Stroke.ID, res.Cursor)
	return res, true
}

func (r *Room) clear(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history.Clear()
	r.broadcast(&Event{Kind: EventCleared, Room: r.ID}, nil)
	r.record(store.RoomEventCleared, c, "", -1)
}

func (r *Room) preview(c *Client, p canvas.StrokePreview) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.broadcast(&Event{Kind: EventStrokePreview, Room: r.ID, From: r.userOf(c), Preview: p}, c)
}

func (r *Room) moveCursor(c *Client, pos canvas.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.userOf(c)
	r.broadcast(&Event{
		Kind: EventCursorMove,
		Room: r.ID,
		Pointer: &canvas.CursorPosition{
			UserID:   u.ID,
			ConnID:   u.ConnID,
			Position: pos,
			Color:    u.Color,
			Name:     u.Name,
		},
	}, c)
}

func (r *Room) setDrawing(c *Client, drawing bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.members[c]
	if !ok {
		return false
	}
	u.IsDrawing = drawing
	r.broadcastUsers()
	return true
}

func (r *Room) userOf(c *Client) canvas.User {
	if u, ok := r.members[c]; ok {
		return *u
	}
	return canvas.User{ID: c.ID, ConnID: c.ID}
}

// record enqueues a journal event. Must hold r.mu.
func (r *Room) record(kind store.RoomEventKind, c *Client, strokeID string, cursor int) {
	if r.recorder == nil {
		return
	}
	r.recorder.Enqueue(store.RoomEvent{
		RoomID:   r.ID,
		Kind:     kind,
		ClientID: c.ID,
		UserID:   r.userOf(c).ID,
		StrokeID: strokeID,
		Cursor:   cursor,
	})
}

func (r *Room) users() []canvas.User {
	return lo.Map(r.order, func(c *Client, _ int) canvas.User { return *r.members[c] })
}

func (r *Room) broadcastUsers() {
	r.broadcast(&Event{Kind: EventUsersUpdate, Room: r.ID, Users: r.users()}, nil)
}

// broadcast fans ev out to every member except skip. Must hold r.mu.
func (r *Room) broadcast(ev *Event, skip *Client) {
	for _, c := range r.order {
		if c == skip {
			continue
		}
		r.sendTo(c, ev)
	}
}

// sendTo never blocks. A full queue drops ephemeral events; losing a state
// event would corrupt the client's replica, so the client is evicted instead.
func (r *Room) sendTo(c *Client, ev *Event) {
	if c.deliver(ev) {
		return
	}
	if !ev.Kind.Ephemeral() {
		c.evict()
	}
}
