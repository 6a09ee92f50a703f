package client

import "sync"

// broadcaster fans auth events out to subscribers. Callbacks run on the
// emitting goroutine, so they must not block.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(AuthEvent)
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]func(AuthEvent))}
}

func (b *broadcaster) subscribe(fn func(AuthEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *broadcaster) emit(event AuthEvent) {
	b.mu.Lock()
	fns := make([]func(AuthEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}
