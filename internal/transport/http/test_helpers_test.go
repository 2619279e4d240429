package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirecanvas-server/internal/config"
	"github.com/vovakirdan/wirecanvas-server/internal/core"
	"github.com/vovakirdan/wirecanvas-server/internal/proto"
)

// frame is an outbound message with its payload left raw.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	cfg.EphemeralRateLimit = 0
	return &cfg
}

func startTestServer(t *testing.T, cfg *config.Config) (*httptest.Server, *core.Hub) {
	t.Helper()

	hub := core.NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	disabledLogger := zerolog.Nop()
	server := NewServer(hub, cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

func dialWS(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	inbound := proto.Inbound{Type: typ}
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal %s: %v", typ, err)
		}
		inbound.Data = payload
	}
	if err := wsjson.Write(ctx, conn, inbound); err != nil {
		t.Fatalf("send %s: %v", typ, err)
	}
}

// readUntil skips frames until one matches.
func readUntil(ctx context.Context, t *testing.T, conn *websocket.Conn, match func(frame) bool) frame {
	t.Helper()

	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(f) {
			return f
		}
	}
}

func readEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, event string) frame {
	t.Helper()
	return readUntil(ctx, t, conn, func(f frame) bool {
		return f.Type == proto.OutboundTypeEvent && f.Event == event
	})
}

func readError(ctx context.Context, t *testing.T, conn *websocket.Conn) *proto.Error {
	t.Helper()
	f := readUntil(ctx, t, conn, func(f frame) bool { return f.Type == proto.OutboundTypeError })
	return f.Error
}

func decode[T any](t *testing.T, f frame) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(f.Data, &v); err != nil {
		t.Fatalf("decode %s: %v", f.Event, err)
	}
	return v
}

func joinRoom(ctx context.Context, t *testing.T, conn *websocket.Conn, room, user string) proto.EventCanvasStateData {
	t.Helper()

	send(ctx, t, conn, proto.InboundTypeJoin, proto.JoinData{
		RoomID: room,
		User:   proto.User{ID: user, Name: user, Color: "#123456"},
	})
	return decode[proto.EventCanvasStateData](t, readEvent(ctx, t, conn, proto.EventCanvasState))
}

func testStroke(id string) proto.Stroke {
	return proto.Stroke{
		ID:        id,
		Points:    []proto.Point{{X: 1, Y: 1}, {X: 5, Y: 8}, {X: 9, Y: 3}},
		Color:     "#000000",
		Width:     3,
		Tool:      "brush",
		Timestamp: 1700000000000,
	}
}
