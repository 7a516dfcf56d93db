package service

import (
	"io"
	"log"
	"sync"
	"time"
)

const (
	// OutboxSize bounds the events queued for one subscriber; a subscriber
	// that falls further behind is dropped
	OutboxSize = 32

	// WriteTimeout bounds a single write on connections that support deadlines
	WriteTimeout = 5 * time.Second
)

// Subscriber receives match events as JSON. *websocket.Conn satisfies it.
type Subscriber interface {
	WriteJSON(v any) error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// subscription owns the outbox of one subscriber. Only its writer goroutine
// touches the connection.
type subscription struct {
	matchID string
	conn    Subscriber
	outbox  chan any
	done    chan struct{}
}

// Hub fans match events out to subscribers. Broadcast never blocks on a
// connection: events are queued and written by one goroutine per subscriber.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscription]struct{})}
}

// Subscribe queues initial for conn and registers it for later broadcasts.
// The returned function detaches the subscriber and waits for its writer to
// stop.
func (h *Hub) Subscribe(matchID string, conn Subscriber, initial any) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrMatchNotFound
	}

	sub := &subscription{
		matchID: matchID,
		conn:    conn,
		outbox:  make(chan any, OutboxSize),
		done:    make(chan struct{}),
	}
	sub.outbox <- initial
	if h.subs[matchID] == nil {
		h.subs[matchID] = make(map[*subscription]struct{})
	}
	h.subs[matchID][sub] = struct{}{}
	go h.write(sub)

	return func() {
		h.detach(sub)
		<-sub.done
	}, nil
}

// write drains the outbox until it is closed or a write fails, then closes
// the connection
func (h *Hub) write(sub *subscription) {
	defer close(sub.done)

	deadliner, hasDeadline := sub.conn.(writeDeadliner)
	for msg := range sub.outbox {
		if hasDeadline {
			deadliner.SetWriteDeadline(time.Now().Add(WriteTimeout))
		}
		if err := sub.conn.WriteJSON(msg); err != nil {
			log.Printf("Dropping subscriber of match %s: %v", sub.matchID, err)
			h.detach(sub)
			break
		}
	}

	if c, ok := sub.conn.(io.Closer); ok {
		c.Close()
	}
}

func (h *Hub) detach(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(sub)
}

// detachLocked removes sub and closes its outbox. Removal and close happen
// together under the lock, so a closed outbox is never sent to.
func (h *Hub) detachLocked(sub *subscription) {
	subs := h.subs[sub.matchID]
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subs, sub.matchID)
	}
	close(sub.outbox)
}

// Broadcast queues v for every subscriber of the match. Subscribers whose
// outbox is full are dropped.
func (h *Hub) Broadcast(matchID string, v any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[matchID] {
		select {
		case sub.outbox <- v:
		default:
			log.Printf("Dropping slow subscriber of match %s", matchID)
			h.detachLocked(sub)
		}
	}
}

// CloseMatch detaches every subscriber of a match. Queued events are still
// written before the connections close.
func (h *Hub) CloseMatch(matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[matchID] {
		h.detachLocked(sub)
	}
}

// Count returns the number of subscribers of a match
func (h *Hub) Count(matchID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[matchID])
}

// Shutdown detaches all subscribers and refuses new ones
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, subs := range h.subs {
		for sub := range subs {
			h.detachLocked(sub)
		}
	}
}
