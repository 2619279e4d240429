package core

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirecanvas-server/internal/canvas"
	"github.com/vovakirdan/wirecanvas-server/internal/store"
)

// Recorder receives journal events. Implementations must not block.
type Recorder interface {
	Enqueue(ev store.RoomEvent)
}

// Hub is the room registry and session lifecycle manager. Rooms are created on
// first join and destroyed when their last member leaves.
type Hub struct {
	log      *zerolog.Logger
	recorder Recorder

	mu    sync.Mutex
	rooms map[string]*Room

	register chan *Client
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewHub creates a hub. logger and recorder may be nil.
func NewHub(logger *zerolog.Logger, recorder Recorder) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		log:      logger,
		recorder: recorder,
		rooms:    make(map[string]*Room),
		register: make(chan *Client),
		done:     make(chan struct{}),
	}
}

// Run accepts client registrations until ctx is cancelled. On return every
// client has left its room.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.wg.Add(1)
			go h.serve(ctx, c)
		case <-ctx.Done():
			h.wg.Wait()
			return
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// RegisterClient starts processing the client's commands. If the hub is no
// longer running the client's event channel is closed immediately.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Events)
	}
}

// UnregisterClient disconnects the client; it leaves its room asynchronously.
func (h *Hub) UnregisterClient(c *Client) {
	c.stop()
}

// RoomCount returns the number of live rooms.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// Rooms summarizes live rooms ordered by id.
func (h *Hub) Rooms() []RoomInfo {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()

	infos := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, r.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Room returns the live room with the given id.
func (h *Hub) Room(id string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[id]
	return r, ok
}

func (h *Hub) serve(ctx context.Context, c *Client) {
	defer h.wg.Done()
	defer close(c.Events)
	defer h.leave(c)

	for {
		select {
		case cmd := <-c.Commands:
			if cmd == nil {
				continue
			}
			if err := h.handle(c, cmd); err != nil {
				h.log.Debug().Err(err).Str("client_id", c.ID).Str("command", cmd.Kind.String()).Msg("command ignored")
			}
		case <-c.quit:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handle(c *Client, cmd *Command) error {
	if cmd.Kind == CommandJoinRoom {
		return h.join(c, cmd.Room, cmd.User)
	}

	room := c.room
	if room == nil {
		return ErrNotInRoom
	}

	switch cmd.Kind {
	case CommandLeaveRoom:
		h.leave(c)
	case CommandStrokePreview:
		room.preview(c, cmd.Preview)
	case CommandCursorMove:
		room.moveCursor(c, cmd.Position)
	case CommandStrokeComplete:
		if !room.commit(c, cmd.Stroke) {
			h.log.Debug().Str("client_id", c.ID).Str("room_id", room.ID).Str("stroke_id", cmd.Stroke.ID).Msg("stroke dropped")
		}
	case CommandUndo:
		room.undo(c)
	case CommandRedo:
		room.redo(c)
	case CommandClear:
		room.clear(c)
	case CommandDrawingState:
		room.setDrawing(c, cmd.IsDrawing)
	default:
		return ErrBadRequest
	}
	return nil
}

func (h *Hub) join(c *Client, roomID string, user canvas.User) error {
	if roomID == "" {
		c.deliver(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "room is required")})
		return ErrBadRequest
	}
	if c.room != nil && c.room.ID != roomID {
		h.leave(c)
	}

	user.ConnID = c.ID
	if user.ID == "" {
		user.ID = c.ID
	}
	if user.Name == "" {
		user.Name = user.ID
	}
	user.IsDrawing = false

	c.user = user

	h.mu.Lock()
	room, created := h.getOrCreateRoom(roomID)
	if created {
		h.record(roomID, store.RoomEventCreated, c)
	}
	added := room.addMember(c, user)
	h.mu.Unlock()

	c.room = room

	if created {
		h.log.Info().Str("room_id", roomID).Msg("room created")
	}
	if added {
		h.log.Info().Str("room_id", roomID).Str("client_id", c.ID).Str("user", user.Name).Msg("member joined")
	}
	return nil
}

// leave detaches c from its room, if any, and destroys the room when empty.
func (h *Hub) leave(c *Client) {
	room := c.room
	if room == nil {
		return
	}
	c.room = nil

	h.mu.Lock()
	empty := room.removeMember(c)
	destroyed := empty && h.destroyRoomIfEmpty(room)
	if destroyed {
		h.record(room.ID, store.RoomEventDestroyed, c)
	}
	h.mu.Unlock()

	h.log.Info().Str("room_id", room.ID).Str("client_id", c.ID).Str("user", c.user.Name).Msg("member left")
	if destroyed {
		h.log.Info().Str("room_id", room.ID).Msg("room destroyed")
	}
}

// getOrCreateRoom returns the room with id, creating an empty one if needed.
// Must hold h.mu.
func (h *Hub) getOrCreateRoom(id string) (*Room, bool) {
	if r, ok := h.rooms[id]; ok {
		return r, false
	}
	r := newRoom(id, h.recorder)
	h.rooms[id] = r
	return r, true
}

// destroyRoomIfEmpty removes room from the registry when it has no members.
// Must hold h.mu.
func (h *Hub) destroyRoomIfEmpty(room *Room) bool {
	if h.rooms[room.ID] != room || !room.Empty() {
		return false
	}
	delete(h.rooms, room.ID)
	return true
}

// record enqueues a room lifecycle event. Must hold h.mu so that creation and
// destruction rows bracket the room's own rows.
func (h *Hub) record(roomID string, kind store.RoomEventKind, c *Client) {
	if h.recorder == nil {
		return
	}
	h.recorder.Enqueue(store.RoomEvent{
		RoomID:   roomID,
		Kind:     kind,
		ClientID: c.ID,
		UserID:   c.user.ID,
		Cursor:   -1,
	})
}
