package jackpot

import (
	"context"
	"sync"
)

// Broadcaster fans updates out to every listener. Slow listeners drop
// updates instead of blocking the sender.
type Broadcaster struct {
	mu        sync.RWMutex
	buffer    int
	listeners map[chan Update]struct{}
}

// NewBroadcaster creates a broadcaster whose listeners buffer up to buffer updates.
func NewBroadcaster(buffer int) *Broadcaster {
	return &Broadcaster{
		buffer:    buffer,
		listeners: make(map[chan Update]struct{}),
	}
}

// Send publishes an update to all listeners without blocking.
func (b *Broadcaster) Send(update Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.listeners {
		select {
		case ch <- update:
		default:
		}
	}
}

// Listen returns a channel plus a cancel function to stop listening. The
// channel is closed once ctx ends or cancel is called.
func (b *Broadcaster) Listen(ctx context.Context) (<-chan Update, context.CancelFunc) {
	listenerCtx, cancel := context.WithCancel(ctx)
	ch := make(chan Update, b.buffer)

	b.mu.Lock()
	b.listeners[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-listenerCtx.Done()
		b.mu.Lock()
		delete(b.listeners, ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, cancel
}

// Listeners counts active listeners.
func (b *Broadcaster) Listeners() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
