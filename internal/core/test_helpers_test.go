package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirecanvas-server/internal/canvas"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// noEvent fails if an event of kind shows up on ch within wait.
func noEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	deadline := time.After(wait)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		case <-deadline:
			return
		}
	}
}

func startHub(t *testing.T, recorder Recorder) *Hub {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	hub := NewHub(nil, recorder)
	go hub.Run(ctx)
	return hub
}

func newJoinedClient(t *testing.T, hub *Hub, id, room string) *Client {
	t.Helper()

	c := NewClient(id, 0)
	hub.RegisterClient(c)
	c.Commands <- &Command{
		Kind: CommandJoinRoom,
		Room: room,
		User: canvas.User{ID: id, Name: id, Color: "#ff0000"},
	}
	mustEvent(t, c.Events, EventCanvasState)
	return c
}

// drain discards c's events until the hub closes the channel.
func drain(c *Client) {
	go func() {
		for range c.Events {
		}
	}()
}

func waitRoom(t *testing.T, hub *Hub, id string, cond func(canvas.Snapshot) bool) {
	t.Helper()

	require.Eventually(t, func() bool {
		r, ok := hub.Room(id)
		return ok && cond(r.Snapshot())
	}, 2*time.Second, 5*time.Millisecond)
}

func testStroke(id, user string, points int) canvas.Stroke {
	pts := make([]canvas.Point, points)
	for i := range pts {
		pts[i] = canvas.Point{X: float64(10 * i), Y: float64(5 * i)}
	}
	return canvas.Stroke{
		ID:        id,
		Points:    pts,
		Color:     "#222222",
		Width:     3,
		Tool:      canvas.ToolBrush,
		UserID:    user,
		Timestamp: time.Now().UnixMilli(),
	}
}

func strokeIDs(strokes []canvas.Stroke) []string {
	out := make([]string, 0, len(strokes))
	for _, s := range strokes {
		out = append(out, s.ID)
	}
	return out
}

// waitUsers reads events from ch until a member list satisfies match.
func waitUsers(t *testing.T, ch <-chan *Event, match func([]canvas.User) bool) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == EventUsersUpdate && match(ev.Users) {
				return
			}
		case <-deadline:
			t.Fatal("expected member list not received")
		}
	}
}
