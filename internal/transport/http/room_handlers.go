package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/wirecanvas-server/internal/core"
)

// RoomHandlers serves the read-only HTTP view of live rooms.
type RoomHandlers struct {
	hub Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// MessageResponse is the body of GET /.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

// RoomResponse represents a live room in API responses.
type RoomResponse struct {
	ID      string `json:"id"`
	Members int    `json:"members"`
	Strokes int    `json:"strokes"`
	History int    `json:"history"`
	Cursor  int    `json:"cursor"`
}

// Root handles GET /.
func (h *RoomHandlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "Collaborative Canvas Backend"})
}

// Health handles GET /api/health.
func (h *RoomHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Rooms: h.hub.RoomCount()})
}

// ListRooms handles GET /api/rooms.
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms := h.hub.Rooms()
	response := lo.Map(rooms, func(r core.RoomInfo, _ int) RoomResponse {
		return RoomResponse{
			ID:      r.ID,
			Members: r.Members,
			Strokes: r.Strokes,
			History: r.History,
			Cursor:  r.Cursor,
		}
	})

	h.log.Debug().Int("room_count", len(response)).Msg("rooms listed")
	c.JSON(http.StatusOK, response)
}
