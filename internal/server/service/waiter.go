package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second

	// WaitChannelBuffer size for notification channels
	WaitChannelBuffer = 1
)

// WaitRegistry manages long-polling clients waiting for match changes
type WaitRegistry struct {
	mu       sync.RWMutex
	waiters  map[string][]*WaitRequest // matchID → waiting clients
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// WaitRequest is a single client waiting for a match to move past Version
type WaitRequest struct {
	Version int
	Notify  chan struct{}
	Timer   *time.Timer
	Context context.Context
	MatchID string

	done chan struct{}
	once sync.Once
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel that fires once the match changes, the wait
// times out or the registry shuts down
func (w *WaitRegistry) RegisterWait(matchID string, version int, ctx context.Context) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := &WaitRequest{
		Version: version,
		Notify:  make(chan struct{}, WaitChannelBuffer),
		Context: ctx,
		MatchID: matchID,
		done:    make(chan struct{}),
	}

	if w.closed {
		req.Notify <- struct{}{}
		return req.Notify
	}

	req.Timer = time.AfterFunc(WaitTimeout, func() {
		w.removeWaiter(matchID, req)
		w.fire(req)
	})

	w.waiters[matchID] = append(w.waiters[matchID], req)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			w.removeWaiter(matchID, req)
		case <-req.done:
		case <-w.shutdown:
			w.fire(req)
		}
	}()

	return req.Notify
}

// NotifyMatch wakes every waiter whose version differs from the current one
func (w *WaitRegistry) NotifyMatch(matchID string, version int) {
	w.mu.Lock()
	waitList := w.waiters[matchID]
	var keep []*WaitRequest
	for _, req := range waitList {
		if req.Version != version {
			w.fire(req)
			continue
		}
		keep = append(keep, req)
	}
	if len(keep) == 0 {
		delete(w.waiters, matchID)
	} else {
		w.waiters[matchID] = keep
	}
	w.mu.Unlock()
}

// RemoveMatch wakes and drops all waiters of a deleted match
func (w *WaitRegistry) RemoveMatch(matchID string) {
	w.mu.Lock()
	waitList := w.waiters[matchID]
	delete(w.waiters, matchID)
	w.mu.Unlock()

	for _, req := range waitList {
		w.fire(req)
	}
}

// Count returns the number of clients waiting on a match
func (w *WaitRegistry) Count(matchID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.waiters[matchID])
}

// Shutdown releases every waiter and waits for the watch goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.shutdown)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

// fire wakes the client and ends the watch goroutine. It never blocks; the
// buffer holds the single wake-up.
func (w *WaitRegistry) fire(req *WaitRequest) {
	req.Timer.Stop()
	select {
	case req.Notify <- struct{}{}:
	default:
	}
	req.once.Do(func() { close(req.done) })
}

func (w *WaitRegistry) removeWaiter(matchID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[matchID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[matchID] = append(waitList[:i:i], waitList[i+1:]...)
			break
		}
	}
	if len(w.waiters[matchID]) == 0 {
		delete(w.waiters, matchID)
	}

	req.Timer.Stop()
}
