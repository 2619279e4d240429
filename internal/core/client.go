package core

import (
	"sync"

	"github.com/vovakirdan/wirecanvas-server/internal/canvas"
)

// DefaultClientBuffer is the event queue length used when none is configured.
const DefaultClientBuffer = 256

// Client is one connection as seen by the core layer. A client belongs to at
// most one room at a time.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	// Owned by the hub goroutine serving this client.
	room *Room
	user canvas.User

	quit      chan struct{}
	quitOnce  sync.Once
	evicted   chan struct{}
	evictOnce sync.Once
}

// NewClient constructs a client with initialized channels. A non-positive
// buffer selects DefaultClientBuffer.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, buffer),
		quit:     make(chan struct{}),
		evicted:  make(chan struct{}),
	}
}

// Evicted is closed when the client fell too far behind to keep a consistent
// replica. The transport should drop the connection.
func (c *Client) Evicted() <-chan struct{} {
	return c.evicted
}

// deliver queues ev without blocking. It reports false when the queue is full.
func (c *Client) deliver(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) evict() {
	c.evictOnce.Do(func() { close(c.evicted) })
}

func (c *Client) stop() {
	c.quitOnce.Do(func() { close(c.quit) })
}
