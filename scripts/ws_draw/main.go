package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/vovakirdan/wirecanvas-server/internal/proto"
)

const usage = `commands:
  line X1 Y1 X2 Y2   commit a straight stroke
  cursor X Y         move the pointer
  undo | redo | clear
  leave`

func main() {
	if err := run(); err != nil {
		log.Printf("ws_draw: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3001/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "user id and display name")
	color := flag.String("color", "#222222", "stroke color")
	room := flag.String("room", "general", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.InboundTypeJoin, proto.JoinData{
		RoomID:   *room,
		User:     proto.User{ID: *user, Name: *user, Color: *color},
		Protocol: proto.ProtocolVersion,
	}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println(usage)

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *color)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	inbound := proto.Inbound{Type: typ}
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		inbound.Data = payload
	}
	if err := wsjson.Write(ctx, conn, inbound); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var f struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if f.Error != nil {
			fmt.Printf("error %s: %s\n", f.Error.Code, f.Error.Msg)
			continue
		}

		switch f.Event {
		case proto.EventCanvasState:
			var evt proto.EventCanvasStateData
			if err := json.Unmarshal(f.Data, &evt); err == nil {
				fmt.Printf("[%s] canvas: %d strokes, cursor %d\n", evt.RoomID, len(evt.Strokes), evt.Cursor)
			}
		case proto.EventUsersUpdate:
			var evt proto.EventUsersUpdateData
			if err := json.Unmarshal(f.Data, &evt); err == nil {
				names := make([]string, 0, len(evt.Users))
				for _, u := range evt.Users {
					name := u.Name
					if u.IsDrawing {
						name += "*"
					}
					names = append(names, name)
				}
				fmt.Printf("[%s] users: %s\n", evt.RoomID, strings.Join(names, ", "))
			}
		case proto.EventStrokeComplete:
			var evt proto.Stroke
			if err := json.Unmarshal(f.Data, &evt); err == nil {
				fmt.Printf("stroke %s by %s (%d points)\n", evt.ID, evt.UserID, len(evt.Points))
			}
		case proto.EventUndoApplied:
			var evt proto.EventUndoAppliedData
			if err := json.Unmarshal(f.Data, &evt); err == nil {
				fmt.Printf("undo: %s hidden, cursor %d\n", evt.StrokeID, evt.Cursor)
			}
		case proto.EventRedoApplied:
			var evt proto.EventRedoAppliedData
			if err := json.Unmarshal(f.Data, &evt); err == nil {
				fmt.Printf("redo: %s restored, cursor %d\n", evt.Stroke.ID, evt.Cursor)
			}
		case proto.EventCleared:
			fmt.Println("canvas cleared")
		case proto.EventStrokePreview, proto.EventCursorMove:
			// too chatty for a terminal
		default:
			fmt.Printf("event=%s data=%s\n", f.Event, string(f.Data))
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, color string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			typ, data, err := parseCommand(line, color)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if typ == "" {
				continue
			}
			if err := send(ctx, conn, typ, data); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func parseCommand(line, color string) (string, any, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, nil
	}

	switch fields[0] {
	case "undo":
		return proto.InboundTypeUndo, nil, nil
	case "redo":
		return proto.InboundTypeRedo, nil, nil
	case "clear":
		return proto.InboundTypeClear, nil, nil
	case "leave":
		return proto.InboundTypeLeave, nil, nil
	case "cursor":
		nums, err := floats(fields[1:], 2)
		if err != nil {
			return "", nil, err
		}
		return proto.InboundTypeCursorMove, proto.Point{X: nums[0], Y: nums[1]}, nil
	case "line":
		nums, err := floats(fields[1:], 4)
		if err != nil {
			return "", nil, err
		}
		return proto.InboundTypeStrokeComplete, proto.Stroke{
			ID:        uuid.NewString(),
			Points:    []proto.Point{{X: nums[0], Y: nums[1]}, {X: nums[2], Y: nums[3]}},
			Color:     color,
			Width:     3,
			Tool:      "brush",
			Timestamp: time.Now().UnixMilli(),
		}, nil
	default:
		return "", nil, fmt.Errorf("unknown command %q\n%s", fields[0], usage)
	}
}

func floats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", a)
		}
		out[i] = v
	}
	return out, nil
}
