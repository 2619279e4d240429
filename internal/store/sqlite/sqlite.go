package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wirecanvas-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS room_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	client_id  TEXT NOT NULL DEFAULT '',
	user_id    TEXT NOT NULL DEFAULT '',
	stroke_id  TEXT NOT NULL DEFAULT '',
	cursor     INTEGER NOT NULL DEFAULT -1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_room_events_room ON room_events(room_id, id DESC);
`

// SQLiteStore implements store.Journal for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens the journal database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function instead of
// the built-in schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record appends a room event.
func (s *SQLiteStore) Record(ctx context.Context, ev *store.RoomEvent) error {
	query := `
		INSERT INTO room_events (room_id, kind, client_id, user_id, stroke_id, cursor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		ev.RoomID,
		string(ev.Kind),
		ev.ClientID,
		ev.UserID,
		ev.StrokeID,
		ev.Cursor,
		ev.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert room event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	ev.ID = id
	return nil
}

// ListRoomEvents returns up to limit events of a room, newest first.
func (s *SQLiteStore) ListRoomEvents(ctx context.Context, roomID string, limit int) ([]*store.RoomEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, room_id, kind, client_id, user_id, stroke_id, cursor, created_at
		FROM room_events
		WHERE room_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query room events: %w", err)
	}
	defer rows.Close()

	var events []*store.RoomEvent
	for rows.Next() {
		var ev store.RoomEvent
		var kind string
		if err := rows.Scan(
			&ev.ID,
			&ev.RoomID,
			&kind,
			&ev.ClientID,
			&ev.UserID,
			&ev.StrokeID,
			&ev.Cursor,
			&ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan room event: %w", err)
		}
		ev.Kind = store.RoomEventKind(kind)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room events: %w", err)
	}

	return events, nil
}
