package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const recordTimeout = 5 * time.Second

// ErrQueueClosed is returned by Close when the queue was already closed.
var ErrQueueClosed = errors.New("journal queue closed")

// Queue decouples journal writes from the caller. Enqueue never blocks; events
// are dropped when the buffer is full.
type Queue struct {
	journal Journal
	log     *zerolog.Logger

	mu     sync.RWMutex
	closed bool
	events chan RoomEvent
	done   chan struct{}
}

// NewQueue starts a background writer for journal with the given buffer size.
func NewQueue(journal Journal, size int, logger *zerolog.Logger) *Queue {
	if size <= 0 {
		size = 1024
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	q := &Queue{
		journal: journal,
		log:     logger,
		events:  make(chan RoomEvent, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue schedules ev for writing.
func (q *Queue) Enqueue(ev RoomEvent) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	select {
	case q.events <- ev:
	default:
		q.log.Warn().Str("room_id", ev.RoomID).Str("kind", string(ev.Kind)).Msg("journal queue full, event dropped")
	}
}

// Close flushes pending events and closes the journal.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.closed = true
	close(q.events)
	q.mu.Unlock()

	<-q.done
	return q.journal.Close()
}

func (q *Queue) run() {
	defer close(q.done)
	for ev := range q.events {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := q.journal.Record(ctx, &ev); err != nil {
			q.log.Warn().Err(err).Str("room_id", ev.RoomID).Str("kind", string(ev.Kind)).Msg("failed to record journal event")
		}
		cancel()
	}
}
