// Package controller holds the state machines the presentation layer drives:
// the paginated/search movie list, the movie detail page and the favorites list.
//
// Every controller owns its state behind a mutex, publishes a full snapshot after
// each change and allows at most one catalog fetch in flight at a time. Close
// cancels outstanding requests; results that arrive afterwards are discarded.
package controller

import (
	"context"
	"sync"
)

// Favorites is the subset of the favorites store the controllers use
type Favorites interface {
	Contains(id int) bool
	All() []int
	Toggle(ctx context.Context, id int) (bool, error)
	Remove(ctx context.Context, id int) error
	Subscribe(fn func(ids []int)) (cancel func())
}

// broadcaster fans state snapshots out to subscribers. Each subscriber channel
// holds one value and a newer snapshot replaces an unread one, so a slow reader
// never blocks the controller.
type broadcaster[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	next   int
	closed bool
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{subs: make(map[int]chan T)}
}

// subscribe returns a channel seeded with current
func (b *broadcaster[T]) subscribe(current T) (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch
	ch <- current

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		// drop the unread snapshot
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

func (b *broadcaster[T]) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// requestContext derives a context that is cancelled when either ctx or the
// controller's own context is done.
func requestContext(ctx, owner context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(owner, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
