package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/olekukonko/tablewriter"

	"github.com/vovakirdan/wirecanvas-server/internal/discovery"
	"github.com/vovakirdan/wirecanvas-server/internal/proto"
	"github.com/vovakirdan/wirecanvas-server/internal/store"
	"github.com/vovakirdan/wirecanvas-server/internal/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3001/ws", "WebSocket address")
	discover := flag.Bool("discover", false, "find the server over mDNS instead of -addr")
	user := flag.String("user", "tester", "user id announced on join")
	room := flag.String("room", "smoke", "room id")
	journal := flag.String("journal", "", "sqlite journal to print after the run")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	target := *addr
	if *discover {
		found, err := discovery.Browse(ctx, 2*time.Second)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("no %s service found", discovery.ServiceType)
		}
		target = found[0]
	}

	conn, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
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

	strokeID := "smoke-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	steps := []struct {
		typ  string
		data any
	}{
		{proto.InboundTypeJoin, proto.JoinData{RoomID: *room, User: proto.User{ID: *user, Name: *user, Color: "#1e90ff"}, Protocol: proto.ProtocolVersion}},
		{proto.InboundTypeStrokeComplete, proto.Stroke{
			ID:        strokeID,
			Points:    []proto.Point{{X: 10, Y: 10}, {X: 120, Y: 80}},
			Color:     "#1e90ff",
			Width:     4,
			Tool:      "brush",
			Timestamp: time.Now().UnixMilli(),
		}},
		{proto.InboundTypeUndo, nil},
		{proto.InboundTypeRedo, nil},
	}
	for _, step := range steps {
		if err := send(step.typ, step.data); err != nil {
			return err
		}
	}

	table := newTable([]string{"#", "Type", "Event", "Detail"})
	for i := 1; ; i++ {
		var f struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			table.Render()
			return fmt.Errorf("read: %w", err)
		}

		detail := string(f.Data)
		if f.Error != nil {
			detail = f.Error.Code + ": " + f.Error.Msg
		}
		table.Append([]string{strconv.Itoa(i), f.Type, f.Event, detail})

		if f.Type == proto.OutboundTypeError || f.Event == proto.EventRedoApplied {
			break
		}
	}
	table.Render()

	if *journal != "" {
		return printJournal(ctx, *journal, *room)
	}
	return nil
}

func printJournal(ctx context.Context, path, room string) error {
	st, err := sqlite.New(path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer st.Close()

	// The server writes asynchronously; give the last rows a moment to land.
	time.Sleep(200 * time.Millisecond)

	events, err := st.ListRoomEvents(ctx, room, 20)
	if err != nil {
		return fmt.Errorf("list journal: %w", err)
	}

	table := newTable([]string{"ID", "Kind", "Client", "User", "Stroke", "Cursor", "At"})
	for _, ev := range events {
		table.Append(journalRow(ev))
	}
	table.Render()
	return nil
}

func journalRow(ev *store.RoomEvent) []string {
	return []string{
		strconv.FormatInt(ev.ID, 10),
		string(ev.Kind),
		ev.ClientID,
		ev.UserID,
		ev.StrokeID,
		strconv.Itoa(ev.Cursor),
		ev.CreatedAt.Format(time.RFC3339),
	}
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
