package http

import (
	"encoding/json"

	"github.com/samber/lo"

	"github.com/vovakirdan/wirecanvas-server/internal/canvas"
	"github.com/vovakirdan/wirecanvas-server/internal/core"
	"github.com/vovakirdan/wirecanvas-server/internal/proto"
)

const errCodeInvalidMessage = "invalid_message"

// inboundToCommand maps a client frame to a core command. A nil command with a
// nil error means the frame is dropped silently.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid join payload"}
		}
		if join.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		if join.Protocol > proto.ProtocolVersion {
			return nil, &proto.Error{Code: core.ErrCodeUnsupportedVersion, Msg: "unsupported protocol version"}
		}
		if err := proto.Validate(join); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid join payload"}
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: join.RoomID,
			User: canvas.User{
				ID:    join.User.ID,
				Name:  join.User.Name,
				Color: join.User.Color,
			},
		}, nil
	case proto.InboundTypeLeave:
		return &core.Command{Kind: core.CommandLeaveRoom}, nil
	case proto.InboundTypeUndo:
		return &core.Command{Kind: core.CommandUndo}, nil
	case proto.InboundTypeRedo:
		return &core.Command{Kind: core.CommandRedo}, nil
	case proto.InboundTypeClear:
		return &core.Command{Kind: core.CommandClear}, nil
	case proto.InboundTypeStrokeComplete:
		var stroke proto.Stroke
		if err := json.Unmarshal(inbound.Data, &stroke); err != nil {
			return nil, nil
		}
		if err := proto.Validate(stroke); err != nil {
			return nil, nil
		}
		return &core.Command{Kind: core.CommandStrokeComplete, Stroke: strokeToCanvas(stroke)}, nil
	case proto.InboundTypeStrokePreview:
		var preview proto.StrokePreview
		if err := json.Unmarshal(inbound.Data, &preview); err != nil {
			return nil, nil
		}
		if err := proto.Validate(preview); err != nil {
			return nil, nil
		}
		return &core.Command{
			Kind: core.CommandStrokePreview,
			Preview: canvas.StrokePreview{
				ID:     preview.ID,
				Points: pointsToCanvas(preview.Points),
				Color:  preview.Color,
				Width:  preview.Width,
				Tool:   canvas.Tool(preview.Tool),
			},
		}, nil
	case proto.InboundTypeCursorMove:
		var pos proto.Point
		if err := json.Unmarshal(inbound.Data, &pos); err != nil {
			return nil, nil
		}
		return &core.Command{Kind: core.CommandCursorMove, Position: canvas.Point{X: pos.X, Y: pos.Y}}, nil
	case proto.InboundTypeDrawingState:
		drawing, ok := parseDrawingState(inbound.Data)
		if !ok {
			return nil, nil
		}
		return &core.Command{Kind: core.CommandDrawingState, IsDrawing: drawing}, nil
	default:
		return nil, &proto.Error{Code: errCodeInvalidMessage, Msg: "unknown message type"}
	}
}

// parseDrawingState accepts a bare boolean or {"isDrawing": bool}.
func parseDrawingState(data json.RawMessage) (bool, bool) {
	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		return flag, true
	}
	var state proto.DrawingStateData
	if err := json.Unmarshal(data, &state); err != nil {
		return false, false
	}
	return state.IsDrawing, true
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventCanvasState:
		data := proto.EventCanvasStateData{RoomID: event.Room, Strokes: []proto.Stroke{}, Cursor: -1}
		if event.Snapshot != nil {
			data.Strokes = lo.Map(event.Snapshot.Strokes, func(s canvas.Stroke, _ int) proto.Stroke { return strokeFromCanvas(s) })
			data.Cursor = event.Snapshot.Cursor
		}
		return proto.Outbound{Type: proto.OutboundTypeEvent, Event: proto.EventCanvasState, Data: data}
	case core.EventUsersUpdate:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUsersUpdate,
			Data: proto.EventUsersUpdateData{
				RoomID: event.Room,
				Users:  lo.Map(event.Users, func(u canvas.User, _ int) proto.User { return userFromCanvas(u) }),
			},
		}
	case core.EventStrokePreview:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventStrokePreview,
			Data: proto.EventStrokePreviewData{
				StrokePreview: proto.StrokePreview{
					ID:     event.Preview.ID,
					Points: pointsFromCanvas(event.Preview.Points),
					Color:  event.Preview.Color,
					Width:  event.Preview.Width,
					Tool:   string(event.Preview.Tool),
				},
				UserID: event.From.ID,
				ConnID: event.From.ConnID,
			},
		}
	case core.EventStrokeComplete:
		return proto.Outbound{Type: proto.OutboundTypeEvent, Event: proto.EventStrokeComplete, Data: strokeFromCanvas(event.Stroke)}
	case core.EventCursorMove:
		data := proto.EventCursorMoveData{}
		if p := event.Pointer; p != nil {
			data = proto.EventCursorMoveData{
				UserID:   p.UserID,
				ConnID:   p.ConnID,
				Position: proto.Point{X: p.Position.X, Y: p.Position.Y},
				Color:    p.Color,
				Name:     p.Name,
			}
		}
		return proto.Outbound{Type: proto.OutboundTypeEvent, Event: proto.EventCursorMove, Data: data}
	case core.EventUndoApplied:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUndoApplied,
			Data:  proto.EventUndoAppliedData{RoomID: event.Room, Cursor: event.Cursor, StrokeID: event.StrokeID},
		}
	case core.EventRedoApplied:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRedoApplied,
			Data:  proto.EventRedoAppliedData{RoomID: event.Room, Cursor: event.Cursor, Stroke: strokeFromCanvas(event.Stroke)},
		}
	case core.EventCleared:
		return proto.Outbound{Type: proto.OutboundTypeEvent, Event: proto.EventCleared, Data: proto.EventClearedData{RoomID: event.Room}}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func strokeToCanvas(s proto.Stroke) canvas.Stroke {
	return canvas.Stroke{
		ID:        s.ID,
		Points:    pointsToCanvas(s.Points),
		Color:     s.Color,
		Width:     s.Width,
		Tool:      canvas.Tool(s.Tool),
		UserID:    s.UserID,
		Timestamp: s.Timestamp,
	}
}

func strokeFromCanvas(s canvas.Stroke) proto.Stroke {
	return proto.Stroke{
		ID:        s.ID,
		Points:    pointsFromCanvas(s.Points),
		Color:     s.Color,
		Width:     s.Width,
		Tool:      string(s.Tool),
		UserID:    s.UserID,
		Timestamp: s.Timestamp,
	}
}

func pointsToCanvas(points []proto.Point) []canvas.Point {
	return lo.Map(points, func(p proto.Point, _ int) canvas.Point { return canvas.Point{X: p.X, Y: p.Y} })
}

func pointsFromCanvas(points []canvas.Point) []proto.Point {
	return lo.Map(points, func(p canvas.Point, _ int) proto.Point { return proto.Point{X: p.X, Y: p.Y} })
}

func userFromCanvas(u canvas.User) proto.User {
	return proto.User{
		ID:        u.ID,
		ConnID:    u.ConnID,
		Name:      u.Name,
		Color:     u.Color,
		IsDrawing: u.IsDrawing,
	}
}
